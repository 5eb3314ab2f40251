package core

import "errors"

// Failure kinds surfaced across the store, notifier and presentation boundaries.
// Adapters wrap the underlying cause with one of these so callers can use errors.Is.
var (
	// ErrStoreConnect means the backing store is unreachable or misconfigured at startup.
	ErrStoreConnect = errors.New("store connect failed")
	// ErrStoreWrite means a single append failed; the entry is treated as not saved.
	ErrStoreWrite = errors.New("store write failed")
	// ErrStoreRead means a full-log load failed.
	ErrStoreRead = errors.New("store read failed")
	// ErrNotify means the notification could not be delivered. The entry stays saved.
	ErrNotify = errors.New("notification failed")
	// ErrInvalidEntry wraps validation failures of a submitted entry.
	ErrInvalidEntry = errors.New("invalid entry")
)
