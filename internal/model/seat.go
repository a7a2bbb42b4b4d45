package model

// SeatStatus is the availability state of a seat within its schedule.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "AVAILABLE"
    SeatBooked    SeatStatus = "BOOKED"
)

// Seat is a bookable unit of a schedule.  A seat belongs to exactly one
// schedule and is BOOKED exactly when one active booking holds it.
//
// Fields:
//  ID         – primary key identifier.
//  ScheduleID – schedule the seat belongs to.
//  SeatNumber – display label such as "A1".
//  Status     – AVAILABLE or BOOKED.
type Seat struct {
    ID         uint64     `json:"id"`          // seats.id
    ScheduleID uint64     `json:"schedule_id"` // seats.schedule_id
    SeatNumber string     `json:"seat_number"` // seats.seat_number
    Status     SeatStatus `json:"status"`      // seats.status
}
