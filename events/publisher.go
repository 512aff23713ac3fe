package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingUpdated       = "booking.updated"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingDeleted       = "booking.deleted"
	TypeRoomStatusChanged    = "room.status_changed"
)

// Message is the JSON body published for every booking or room change.
type Message struct {
	Type       string    `json:"type"`
	PropertyID uint      `json:"propertyId"`
	BookingID  uint      `json:"bookingId,omitempty"`
	RoomIDs    []uint    `json:"roomIds,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// LogPublisher writes messages to the standard logger. Used when no broker
// is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	log.Printf("📣 event %s", body)
	return nil
}

// Recorder keeps published messages in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Publish(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

func (r *Recorder) OfType(t string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
