package booking

import (
	"context"

	"github.com/iliyamo/cinema-ticket-booking/internal/inventory"
	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/pricing"
)

// Tx is the persistence surface of the booking lifecycle.  A Tx handed
// out by Store.InTx is bound to one database transaction; the Tx from
// Store.Reader runs each call on its own.
type Tx interface {
	inventory.SeatStore
	pricing.Catalog

	ScheduleWithFilm(ctx context.Context, id uint64) (*model.ScheduleWithFilm, error)
	SchedulesByFilm(ctx context.Context, filmID uint64) ([]model.Schedule, error)
	AllServices(ctx context.Context) ([]model.Service, error)
	SeatsByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.Seat, error)
	UserExists(ctx context.Context, id uint64) (bool, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	LockBooking(ctx context.Context, id uint64) (*model.Booking, error)
	LatestBooking(ctx context.Context, userID, scheduleID uint64) (*model.Booking, error)
	ListBookings(ctx context.Context, limit, offset int) ([]model.Booking, int64, error)
	UpdateBookingTotal(ctx context.Context, id uint64, total int64) error
	DeleteBooking(ctx context.Context, id uint64) error

	AttachSeats(ctx context.Context, bookingID uint64, seatIDs []uint64) error
	DetachSeats(ctx context.Context, bookingID uint64) error
	BookingSeatIDs(ctx context.Context, bookingID uint64) ([]uint64, error)
	AttachServices(ctx context.Context, lines []model.BookingServiceLine) error
	DetachServices(ctx context.Context, bookingID uint64) error
	ServiceLinesByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.BookingServiceLine, error)
}

// Store opens transactions.  InTx commits when fn returns nil and rolls
// back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Reader() Tx
}
