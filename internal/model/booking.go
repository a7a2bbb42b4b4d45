package model

import "time"

// BookingStatus is the lifecycle state stored on a booking.  Only
// PENDING is assigned by the booking core; the other values exist for
// downstream confirmation flows.
type BookingStatus string

const (
    BookingPending   BookingStatus = "PENDING"
    BookingConfirmed BookingStatus = "CONFIRMED"
    BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records a user's purchase of seats (and optional services)
// for a schedule.  TotalPrice is always recomputed from the attached
// seats and service lines.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who owns the booking.
//  ScheduleID – schedule being booked.
//  TotalPrice – schedule price × seats + Σ service price × quantity.
//  Status     – see BookingStatus.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Booking struct {
    ID         uint64        `json:"id"`          // bookings.id
    UserID     uint64        `json:"user_id"`     // bookings.user_id
    ScheduleID uint64        `json:"schedule_id"` // bookings.schedule_id
    TotalPrice int64         `json:"total_price"` // bookings.total_price
    Status     BookingStatus `json:"status"`      // bookings.status
    CreatedAt  time.Time     `json:"created_at"`  // bookings.created_at
    UpdatedAt  time.Time     `json:"updated_at"`  // bookings.updated_at
}

// BookingServiceLine attaches a service to a booking with a quantity.
// UnitPrice is filled from the service catalog when lines are loaded.
type BookingServiceLine struct {
    BookingID uint64 `json:"booking_id"` // booking_services.booking_id
    ServiceID uint64 `json:"service_id"` // booking_services.service_id
    Name      string `json:"name"`       // services.name
    UnitPrice int64  `json:"unit_price"` // services.price
    Quantity  uint32 `json:"quantity"`   // booking_services.quantity
}

// BookingDetail is a booking with its attachments and joined catalog
// data, ready to be rendered.
type BookingDetail struct {
    Booking
    Schedule *ScheduleWithFilm   `json:"schedule,omitempty"`
    Seats    []Seat               `json:"seats"`
    Services []BookingServiceLine `json:"services"`
}
