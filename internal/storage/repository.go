// Package storage keeps the entry log in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cafeprep/internal/core"
	"cafeprep/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *slog.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations. Failures wrap core.ErrStoreConnect.
func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStoreConnect, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", core.ErrStoreConnect, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", core.ErrStoreConnect, err)
	}

	version, err := migrateEntries(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrStoreConnect, err)
	}

	logger = logger.With("component", "store", "backend", "sqlite", "path", dbPath)
	logger.Info("Entries schema ready", "schema_version", version)
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append inserts the entry and returns its row id.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	row, err := r.queries.CreateEntry(ctx, CreateEntryParams{
		Date:      e.Date,
		Item:      e.Item,
		Prepared:  e.Prepared.String(),
		Remanence: e.Remanence.String(),
		Waste:     e.Waste.String(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: create entry: %w", core.ErrStoreWrite, err)
	}

	r.logger.InfoContext(ctx, "Entry saved to SQLite",
		"id", row.ID,
		"date", row.Date,
		"item", row.Item)

	return strconv.FormatInt(row.ID, 10), nil
}

// LoadAll returns every entry in insertion order.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %w", core.ErrStoreRead, err)
	}
	out := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping malformed row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (row EntryRow) entry() (core.Entry, error) {
	e := core.Entry{Date: row.Date, Item: row.Item}
	var err error
	if e.Prepared, err = core.ParseQuantity(row.Prepared); err != nil {
		return core.Entry{}, fmt.Errorf("prepared: %w", err)
	}
	if e.Remanence, err = core.ParseQuantity(row.Remanence); err != nil {
		return core.Entry{}, fmt.Errorf("remanence: %w", err)
	}
	if e.Waste, err = core.ParseQuantity(row.Waste); err != nil {
		return core.Entry{}, fmt.Errorf("waste: %w", err)
	}
	return e, nil
}
