package services

import (
	"context"
	"fmt"
	"log/slog"

	"cafeprep/internal/core"
	"cafeprep/internal/log"
	"cafeprep/internal/notify"
	"cafeprep/internal/store"
)

// Outcome reports what happened after an entry was saved. The entry is
// persisted whenever Record returns a nil error, even if LoadErr or
// NotifyErr is set.
type Outcome struct {
	Entry     core.Entry
	Ref       string
	Daily     []core.ItemTotals
	LoadErr   error
	NotifyErr error
	// Notified is set when a delivering notifier accepted the message.
	Notified bool
}

// Complete reports whether every step after the append succeeded.
func (o Outcome) Complete() bool {
	return o.LoadErr == nil && o.NotifyErr == nil
}

// EntryService orchestrates entry recording across the store and the notifier
type EntryService struct {
	store    store.Store
	notifier notify.Notifier
	logger   *log.StructuredLogger
}

func NewEntryService(s store.Store, n notify.Notifier, logger *slog.Logger) *EntryService {
	if n == nil {
		n = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryService{
		store:    s,
		notifier: n,
		logger:   log.NewStructuredLogger(logger),
	}
}

// Record validates and appends e, recomputes the totals of its day and
// notifies. Only validation and append failures are returned as errors.
func (s *EntryService) Record(ctx context.Context, e core.Entry) (Outcome, error) {
	if err := e.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
	}

	ref, err := s.store.Append(ctx, e)
	if err != nil {
		s.logger.LogError(ctx, "Failed to save entry", err, log.ComponentEntry, log.OpAppend, log.NewFields().WithEntry(e))
		return Outcome{}, fmt.Errorf("save entry: %w", err)
	}
	s.logger.LogEntryRecorded(ctx, e, ref)

	out := Outcome{Entry: e, Ref: ref}

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		out.LoadErr = err
		s.logger.LogError(ctx, "Failed to reload entries after append", err, log.ComponentStore, log.OpLoad, nil)
		entries = nil
	}
	out.Daily = core.DailyTotals(entries, e.Date)

	if err := s.notifier.Notify(ctx, e, out.Daily); err != nil {
		out.NotifyErr = err
		s.logger.LogError(ctx, "Notification failed, entry kept", err, log.ComponentNotify, log.OpNotify, log.NewFields().WithEntry(e))
	} else {
		out.Notified = notify.Delivers(s.notifier)
	}

	return out, nil
}

// Summary returns the full per-(date, item) summary ordered by date, then item.
func (s *EntryService) Summary(ctx context.Context) ([]core.DateItemTotals, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	rows := core.FullSummary(entries)
	core.SortSummary(rows)
	return rows, nil
}

// Daily returns per-item totals for date along with their grand total.
func (s *EntryService) Daily(ctx context.Context, date string) ([]core.ItemTotals, core.ItemTotals, error) {
	d, err := core.NormalizeDate(date)
	if err != nil {
		return nil, core.ItemTotals{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
	}
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, core.ItemTotals{}, fmt.Errorf("load entries: %w", err)
	}
	rows := core.DailyTotals(entries, d)
	return rows, core.Totals(rows), nil
}

// Entries returns the raw log in append order.
func (s *EntryService) Entries(ctx context.Context) ([]core.Entry, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return entries, nil
}
