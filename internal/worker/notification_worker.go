package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cafeprep/internal/amqp"
	"cafeprep/internal/core"
	"cafeprep/internal/notify"
	"cafeprep/internal/store"
)

// NotificationWorker delivers queued entry notifications. The day's totals
// are recomputed from the store when the message is handled, so they include
// every entry saved up to that moment.
type NotificationWorker struct {
	loader   store.EntryLoader
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewNotificationWorker(loader store.EntryLoader, notifier notify.Notifier, logger *slog.Logger) *NotificationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationWorker{
		loader:   loader,
		notifier: notifier,
		logger:   logger.With("component", "worker"),
	}
}

// ErrBadMessage marks messages that can never be handled; retrying them is pointless.
var ErrBadMessage = errors.New("bad entry message")

// HandleEntryRecorded processes a single EntryRecorded message from AMQP
func (w *NotificationWorker) HandleEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing entry recorded message",
		"message_id", msg.ID,
		"date", msg.Date,
		"item", msg.Item)

	e, err := msg.Entry()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	// Appends happen in another process, so this process's cache never
	// sees them.
	if inv, ok := w.loader.(store.Invalidator); ok {
		inv.Invalidate()
	}

	entries, err := w.loader.LoadAll(ctx)
	if err != nil {
		// A stale total is better than no email at all.
		w.logger.WarnContext(ctx, "Failed to reload entries, sending without totals",
			"message_id", msg.ID,
			"error", err)
		entries = nil
	}

	if err := w.notifier.Notify(ctx, e, core.DailyTotals(entries, e.Date)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
