// Package notify tells the cafe owner about each recorded entry.
//
// Every notifier receives the entry that was just saved together with the
// totals of its day, computed after the save. Failures are wrapped in
// core.ErrNotify; the entry is already persisted when a notifier runs.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cafeprep/internal/core"
)

type Notifier interface {
	Notify(ctx context.Context, e core.Entry, daily []core.ItemTotals) error
}

// Message is a composed notification.
type Message struct {
	Subject string
	Body    string
}

// Compose renders the notification for an entry and its day's totals.
func Compose(e core.Entry, daily []core.ItemTotals) Message {
	var b strings.Builder
	b.WriteString("New inventory entry submitted:\n\n")
	fmt.Fprintf(&b, "item: %s\n", e.Item)
	fmt.Fprintf(&b, "date: %s\n", e.Date)
	fmt.Fprintf(&b, "prepared: %s\n", e.Prepared)
	fmt.Fprintf(&b, "remaining: %s\n", e.Remanence)
	fmt.Fprintf(&b, "waste: %s\n", e.Waste)
	fmt.Fprintf(&b, "sold: %s\n", e.Sold())
	fmt.Fprintf(&b, "\n--- DAILY TOTALS for %s ---\n", e.Date)
	for _, t := range daily {
		fmt.Fprintf(&b, "\n%s: sold %s, waste %s, remaining %s", t.Item, t.Sold, t.Waste, t.Remanence)
	}
	return Message{
		Subject: "New Inventory Entry - " + e.Date,
		Body:    b.String(),
	}
}

// LogNotifier writes the composed message to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify", "notifier", "log")}
}

func (n *LogNotifier) Notify(ctx context.Context, e core.Entry, daily []core.ItemTotals) error {
	msg := Compose(e, daily)
	n.logger.InfoContext(ctx, "Entry notification",
		"subject", msg.Subject,
		"items_today", len(daily),
		"body", msg.Body)
	return nil
}

// Delivers reports whether n sends the message to someone. Nop and
// LogNotifier accept messages without delivering them.
func Delivers(n Notifier) bool {
	switch n.(type) {
	case nil, Nop, *Nop, *LogNotifier:
		return false
	}
	return true
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, core.Entry, []core.ItemTotals) error { return nil }

// EntryPublisher hands an entry to a message broker.
type EntryPublisher interface {
	PublishEntryRecorded(ctx context.Context, e core.Entry) error
}

// QueueNotifier defers delivery to a worker. Only the entry is published; the
// worker reloads the log and recomputes the day's totals before sending.
type QueueNotifier struct {
	publisher EntryPublisher
}

func NewQueueNotifier(p EntryPublisher) *QueueNotifier {
	return &QueueNotifier{publisher: p}
}

func (n *QueueNotifier) Notify(ctx context.Context, e core.Entry, _ []core.ItemTotals) error {
	if err := n.publisher.PublishEntryRecorded(ctx, e); err != nil {
		return fmt.Errorf("%w: queue: %w", core.ErrNotify, err)
	}
	return nil
}
