// Package queue carries booking domain events over RabbitMQ: a publisher
// used by the booking service after commit and a consumer that appends
// every event to an audit log.
package queue

import (
    "time"

    "github.com/iliyamo/cinema-ticket-booking/internal/booking"
)

// BookingEventsQueue is the durable queue all booking events go to.
const BookingEventsQueue = "booking.events"

// BookingEvent is the JSON payload of a booking event message.  It holds
// enough for downstream consumers to log or notify without reading the
// primary database.
type BookingEvent struct {
    MessageID  string   `json:"message_id"`
    Type       string   `json:"type"`
    BookingID  uint64   `json:"booking_id"`
    UserID     uint64   `json:"user_id"`
    ScheduleID uint64   `json:"schedule_id"`
    SeatIDs    []uint64 `json:"seat_ids"`
    TotalPrice int64    `json:"total_price"`
    OccurredAt string   `json:"occurred_at"`
}

// fromDomain converts a booking.Event into its wire form.
func fromDomain(id string, ev booking.Event) BookingEvent {
    seats := ev.SeatIDs
    if seats == nil {
        seats = []uint64{}
    }
    at := ev.OccurredAt
    if at.IsZero() {
        at = time.Now()
    }
    return BookingEvent{
        MessageID:  id,
        Type:       string(ev.Type),
        BookingID:  ev.BookingID,
        UserID:     ev.UserID,
        ScheduleID: ev.ScheduleID,
        SeatIDs:    seats,
        TotalPrice: ev.TotalPrice,
        OccurredAt: at.UTC().Format(time.RFC3339),
    }
}
