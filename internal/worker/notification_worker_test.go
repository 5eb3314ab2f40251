package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cafeprep/internal/amqp"
	"cafeprep/internal/core"
	"cafeprep/internal/store/file"
	"cafeprep/internal/store/memory"
)

type captureNotifier struct {
	entry core.Entry
	daily []core.ItemTotals
	calls int
	err   error
}

func (n *captureNotifier) Notify(_ context.Context, e core.Entry, daily []core.ItemTotals) error {
	n.calls++
	n.entry, n.daily = e, daily
	return n.err
}

type failingLoader struct{}

func (failingLoader) LoadAll(context.Context) ([]core.Entry, error) {
	return nil, core.ErrStoreRead
}

func TestNotificationWorker_HandleEntryRecorded(t *testing.T) {
	saved := core.Entry{Date: "2024-01-01", Item: "Pizza", Prepared: core.Qty(4), Remanence: core.Qty(1), Waste: core.Qty(0)}
	st := memory.New(
		core.Entry{Date: "2024-01-01", Item: "Pizza", Prepared: core.Qty(2), Remanence: core.Qty(0), Waste: core.Qty(1)},
		core.Entry{Date: "2024-01-02", Item: "Pizza", Prepared: core.Qty(9), Remanence: core.Qty(0), Waste: core.Qty(0)},
		saved,
	)

	tests := []struct {
		name      string
		msg       *amqp.EntryRecordedMessage
		notifyErr error
		wantErr   error
		wantCalls int
		wantSold  string
	}{
		{
			name:      "recomputes day totals",
			msg:       amqp.NewEntryRecordedMessage(saved),
			wantCalls: 1,
			wantSold:  "4",
		},
		{
			name:    "malformed payload",
			msg:     &amqp.EntryRecordedMessage{ID: "x", Date: "2024-13-45", Item: "Pizza"},
			wantErr: ErrBadMessage,
		},
		{
			name:      "notifier failure is returned",
			msg:       amqp.NewEntryRecordedMessage(saved),
			notifyErr: core.ErrNotify,
			wantErr:   core.ErrNotify,
			wantCalls: 1,
			wantSold:  "4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &captureNotifier{err: tt.notifyErr}
			w := NewNotificationWorker(st, n, nil)

			err := w.HandleEntryRecorded(context.Background(), tt.msg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("HandleEntryRecorded() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("HandleEntryRecorded() error = %v", err)
			}
			if n.calls != tt.wantCalls {
				t.Fatalf("notify calls = %d, want %d", n.calls, tt.wantCalls)
			}
			if tt.wantCalls == 0 {
				return
			}
			if len(n.daily) != 1 || n.daily[0].Sold.String() != tt.wantSold {
				t.Errorf("daily = %+v, want Pizza sold %s", n.daily, tt.wantSold)
			}
			if n.entry.Item != "Pizza" || !n.entry.Prepared.Equal(core.Qty(4)) {
				t.Errorf("entry = %+v", n.entry)
			}
		})
	}
}

func TestNotificationWorker_LoadFailureStillNotifies(t *testing.T) {
	n := &captureNotifier{}
	w := NewNotificationWorker(failingLoader{}, n, nil)

	e := core.Entry{Date: "2024-01-01", Item: "Brownie", Prepared: core.Qty(1)}
	if err := w.HandleEntryRecorded(context.Background(), amqp.NewEntryRecordedMessage(e)); err != nil {
		t.Fatalf("HandleEntryRecorded() error = %v", err)
	}
	if n.calls != 1 || len(n.daily) != 0 {
		t.Fatalf("expected a notification with empty totals, got calls=%d daily=%v", n.calls, n.daily)
	}
}

func TestNotificationWorker_SeesAppendsFromAnotherStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")

	web, err := file.New(file.Config{Path: path, CacheTTL: 30 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	defer web.Close()
	workerStore, err := file.New(file.Config{Path: path, CacheTTL: 30 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	defer workerStore.Close()

	n := &captureNotifier{}
	w := NewNotificationWorker(workerStore, n, nil)

	for _, e := range []core.Entry{
		{Date: "2024-01-01", Item: "Pizza", Prepared: core.Qty(4), Remanence: core.Qty(1), Waste: core.Qty(0)},
		{Date: "2024-01-01", Item: "Brownie", Prepared: core.Qty(6), Remanence: core.Qty(0), Waste: core.Qty(2)},
	} {
		if _, err := web.Append(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.Item, err)
		}
		if err := w.HandleEntryRecorded(ctx, amqp.NewEntryRecordedMessage(e)); err != nil {
			t.Fatalf("handle %s: %v", e.Item, err)
		}
		var found bool
		for _, row := range n.daily {
			if row.Item == e.Item && row.Sold.Equal(e.Sold()) {
				found = true
			}
		}
		if !found {
			t.Fatalf("totals for the %s message miss it: %+v", e.Item, n.daily)
		}
	}
	if len(n.daily) != 2 {
		t.Errorf("expected both items in the last totals, got %+v", n.daily)
	}
}
