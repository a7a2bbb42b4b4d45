package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
)

// SQLStore runs the booking lifecycle on the MySQL repositories.
type SQLStore struct {
	store *repository.Store
}

// NewSQLStore wraps a repository store.
func NewSQLStore(store *repository.Store) *SQLStore { return &SQLStore{store: store} }

// InTx implements Store.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.store.InTx(ctx, func(r repository.Repos) error {
		return fn(sqlTx{r})
	})
}

// Reader implements Store.
func (s *SQLStore) Reader() Tx { return sqlTx{s.store.Repos()} }

// sqlTx adapts a set of repositories to Tx.
type sqlTx struct {
	r repository.Repos
}

func (t sqlTx) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	return t.r.Seats.ListBySchedule(ctx, scheduleID)
}

func (t sqlTx) LockByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	return t.r.Seats.LockByIDs(ctx, ids)
}

func (t sqlTx) UpdateStatus(ctx context.Context, ids []uint64, status model.SeatStatus) error {
	return t.r.Seats.UpdateStatus(ctx, ids, status)
}

func (t sqlTx) ScheduleByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	return t.r.Schedules.GetByID(ctx, id)
}

func (t sqlTx) ServicesByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	return t.r.Services.GetByIDs(ctx, ids)
}

func (t sqlTx) ScheduleWithFilm(ctx context.Context, id uint64) (*model.ScheduleWithFilm, error) {
	sch, err := t.r.Schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	film, err := t.r.Films.GetByID(ctx, sch.FilmID)
	if err != nil {
		return nil, err
	}
	return &model.ScheduleWithFilm{Schedule: *sch, Film: film}, nil
}

func (t sqlTx) UserExists(ctx context.Context, id uint64) (bool, error) {
	_, err := t.r.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (t sqlTx) SchedulesByFilm(ctx context.Context, filmID uint64) ([]model.Schedule, error) {
	return t.r.Schedules.ListByFilm(ctx, filmID)
}

func (t sqlTx) AllServices(ctx context.Context) ([]model.Service, error) {
	return t.r.Services.ListAll(ctx)
}

func (t sqlTx) SeatsByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.Seat, error) {
	return t.r.Seats.ListByBookings(ctx, bookingIDs)
}

func (t sqlTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	return t.r.Bookings.Create(ctx, b)
}

func (t sqlTx) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.r.Bookings.GetByID(ctx, id)
}

func (t sqlTx) LockBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.r.Bookings.LockByID(ctx, id)
}

func (t sqlTx) LatestBooking(ctx context.Context, userID, scheduleID uint64) (*model.Booking, error) {
	return t.r.Bookings.LatestForUserAndSchedule(ctx, userID, scheduleID)
}

func (t sqlTx) ListBookings(ctx context.Context, limit, offset int) ([]model.Booking, int64, error) {
	return t.r.Bookings.List(ctx, limit, offset)
}

func (t sqlTx) UpdateBookingTotal(ctx context.Context, id uint64, total int64) error {
	return t.r.Bookings.UpdateTotal(ctx, id, total)
}

func (t sqlTx) DeleteBooking(ctx context.Context, id uint64) error {
	return t.r.Bookings.Delete(ctx, id)
}

func (t sqlTx) AttachSeats(ctx context.Context, bookingID uint64, seatIDs []uint64) error {
	return t.r.Bookings.AttachSeats(ctx, bookingID, seatIDs)
}

func (t sqlTx) DetachSeats(ctx context.Context, bookingID uint64) error {
	return t.r.Bookings.DetachSeats(ctx, bookingID)
}

func (t sqlTx) BookingSeatIDs(ctx context.Context, bookingID uint64) ([]uint64, error) {
	return t.r.Bookings.SeatIDs(ctx, bookingID)
}

func (t sqlTx) AttachServices(ctx context.Context, lines []model.BookingServiceLine) error {
	return t.r.Bookings.AttachServices(ctx, lines)
}

func (t sqlTx) DetachServices(ctx context.Context, bookingID uint64) error {
	return t.r.Bookings.DetachServices(ctx, bookingID)
}

func (t sqlTx) ServiceLinesByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.BookingServiceLine, error) {
	return t.r.Bookings.ServiceLinesByBookings(ctx, bookingIDs)
}
