package store

import (
	"context"

	"cafeprep/internal/core"
)

// Ports for outbound storage adapters.
type (
	// EntryAppender writes one entry durably. Failures wrap core.ErrStoreWrite.
	EntryAppender interface {
		Append(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	// EntryLoader returns every appended entry, in append order.
	// Failures wrap core.ErrStoreRead and return no entries.
	EntryLoader interface {
		LoadAll(ctx context.Context) ([]core.Entry, error)
	}

	// Store is the append-only entry log.
	Store interface {
		EntryAppender
		EntryLoader
	}

	// Invalidator is implemented by stores that cache the loaded log.
	Invalidator interface {
		Invalidate()
	}
)
