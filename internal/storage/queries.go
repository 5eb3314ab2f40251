package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// EntryRow mirrors the entries table. Quantities are stored as decimal text.
type EntryRow struct {
	ID        int64
	Date      string
	Item      string
	Prepared  string
	Remanence string
	Waste     string
	CreatedAt string
}

type CreateEntryParams struct {
	Date      string
	Item      string
	Prepared  string
	Remanence string
	Waste     string
}

const createEntry = `
INSERT INTO entries (date, item, prepared, remanence, waste)
VALUES (?, ?, ?, ?, ?)
RETURNING id, date, item, prepared, remanence, waste, created_at
`

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (EntryRow, error) {
	row := q.db.QueryRowContext(ctx, createEntry, arg.Date, arg.Item, arg.Prepared, arg.Remanence, arg.Waste)
	var i EntryRow
	err := row.Scan(&i.ID, &i.Date, &i.Item, &i.Prepared, &i.Remanence, &i.Waste, &i.CreatedAt)
	return i, err
}

const listEntries = `
SELECT id, date, item, prepared, remanence, waste, created_at
FROM entries
ORDER BY id
`

func (q *Queries) ListEntries(ctx context.Context) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EntryRow
	for rows.Next() {
		var i EntryRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Item, &i.Prepared, &i.Remanence, &i.Waste, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
