package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cafeprep/internal/core"
)

// EntryRecordedMessage announces an entry that has already been appended to
// the log. The worker reloads the log to compute the day's totals, so the
// message only carries the entry itself.
type EntryRecordedMessage struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Item      string    `json:"item"`
	Prepared  string    `json:"prepared"`
	Remanence string    `json:"remanence"`
	Waste     string    `json:"waste"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryRecordedMessage creates a message with a fresh id.
func NewEntryRecordedMessage(e core.Entry) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		ID:        uuid.NewString(),
		Date:      e.Date,
		Item:      e.Item,
		Prepared:  e.Prepared.String(),
		Remanence: e.Remanence.String(),
		Waste:     e.Waste.String(),
		Timestamp: time.Now(),
	}
}

// Entry converts the message back into a validated entry.
func (m *EntryRecordedMessage) Entry() (core.Entry, error) {
	e := core.Entry{Date: m.Date, Item: m.Item}
	var err error
	if e.Prepared, err = core.ParseQuantity(m.Prepared); err != nil {
		return core.Entry{}, fmt.Errorf("prepared: %w", err)
	}
	if e.Remanence, err = core.ParseQuantity(m.Remanence); err != nil {
		return core.Entry{}, fmt.Errorf("remanence: %w", err)
	}
	if e.Waste, err = core.ParseQuantity(m.Waste); err != nil {
		return core.Entry{}, fmt.Errorf("waste: %w", err)
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// ToJSON converts the message to JSON bytes
func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryRecordedMessageFromJSON creates a message from JSON bytes
func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
