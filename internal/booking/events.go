package booking

import (
	"context"
	"time"
)

// EventType names a booking domain event.  The value doubles as the
// message routing key.
type EventType string

const (
	EventCreated   EventType = "booking.created"
	EventUpdated   EventType = "booking.updated"
	EventCancelled EventType = "booking.cancelled"
)

// Event describes a committed change to a booking.
type Event struct {
	Type       EventType
	BookingID  uint64
	UserID     uint64
	ScheduleID uint64
	SeatIDs    []uint64
	TotalPrice int64
	OccurredAt time.Time
}

// EventPublisher delivers events after the transaction that produced
// them has committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
