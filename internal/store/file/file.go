// Package file stores the entry log in a local CSV or XLSX file.
//
// The file is read fully into memory and every append rewrites the whole
// file with the new row included. The loaded log is cached and the cache is
// invalidated after every successful append and, when watching is enabled,
// whenever another process changes the file.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cafeprep/internal/cache"
	"cafeprep/internal/core"
	"cafeprep/internal/store"
)

const logKey = "entries"

var (
	_ store.Store       = (*Store)(nil)
	_ store.Invalidator = (*Store)(nil)
)

// Config configures a file store.
type Config struct {
	Path     string
	CacheTTL time.Duration // zero keeps the cache until the next invalidation
	Watch    bool          // invalidate when the file changes on disk
	Logger   *slog.Logger
}

type Store struct {
	path   string
	codec  codec
	logger *slog.Logger

	mu    sync.Mutex // serializes read-modify-write appends
	cache *cache.LRUCache[[]core.Entry]

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// New opens the store and performs an initial load. Any failure here wraps
// core.ErrStoreConnect.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: file path is empty", core.ErrStoreConnect)
	}
	c, err := codecFor(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreConnect, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", core.ErrStoreConnect, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   cfg.Path,
		codec:  c,
		logger: logger.With("component", "store", "backend", "file", "path", cfg.Path),
		cache:  cache.NewLRUCache[[]core.Entry](1, cfg.CacheTTL),
		done:   make(chan struct{}),
	}

	if _, err := s.load(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreConnect, err)
	}

	if cfg.Watch {
		if err := s.watch(); err != nil {
			return nil, fmt.Errorf("%w: watch %s: %w", core.ErrStoreConnect, cfg.Path, err)
		}
	}
	return s, nil
}

// Append rewrites the file with e added as the last row.
func (s *Store) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.codec.read(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}

	var h store.Header
	if len(rows) == 0 {
		h = store.CanonicalHeader()
		rows = append(rows, append([]string(nil), core.Columns...))
	} else if h, err = store.ParseHeader(rows[0]); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	rows = append(rows, h.Encode(e))

	if err := s.codec.write(s.path, rows); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	s.Invalidate()

	ref := fmt.Sprintf("%s:%d", filepath.Base(s.path), len(rows))
	s.logger.InfoContext(ctx, "Entry appended", "ref", ref, "date", e.Date, "item", e.Item)
	return ref, nil
}

// LoadAll returns the cached log, reading the file on a miss.
func (s *Store) LoadAll(ctx context.Context) ([]core.Entry, error) {
	if entries, ok := s.cache.Get(logKey); ok {
		return append([]core.Entry(nil), entries...), nil
	}
	s.mu.Lock()
	entries, err := s.load()
	s.mu.Unlock()
	if err != nil {
		s.logger.ErrorContext(ctx, "Load failed", "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrStoreRead, err)
	}
	return append([]core.Entry(nil), entries...), nil
}

// Invalidate drops the cached log so the next load reads the file.
func (s *Store) Invalidate() {
	s.cache.Purge()
}

func (s *Store) load() ([]core.Entry, error) {
	rows, err := s.codec.read(s.path)
	if err != nil {
		return nil, err
	}
	entries, skipped, err := store.DecodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	for _, serr := range skipped {
		s.logger.Warn("Skipping malformed row", "error", serr)
	}
	s.cache.Set(logKey, entries)
	return entries, nil
}

// watch invalidates the cache on changes made by other writers. The
// directory is watched because rewrites replace the file by rename.
func (s *Store) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return err
	}
	s.watcher = w
	target := filepath.Clean(s.path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
					s.Invalidate()
					s.logger.Debug("Cache invalidated by file change", "op", ev.Op.String())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("File watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Close stops the file watcher, if any.
func (s *Store) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	s.wg.Wait()
	return err
}
