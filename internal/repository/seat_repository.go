package repository

import (
	"context"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// SeatRepo provides access to the per-schedule seat inventory.
type SeatRepo struct {
	db DBTX
}

// NewSeatRepo constructs a SeatRepo.
func NewSeatRepo(db DBTX) *SeatRepo { return &SeatRepo{db: db} }

// ListBySchedule returns every seat of a schedule ordered by label.
func (r *SeatRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]model.Seat, error) {
	const q = `SELECT id, schedule_id, seat_number, status
	           FROM seats
	           WHERE schedule_id = ?
	           ORDER BY seat_number, id`
	return r.query(ctx, q, scheduleID)
}

// LockByIDs loads the given seats with an exclusive row lock.  It must be
// called inside a transaction; rows are locked in id order so concurrent
// bookings over overlapping seats cannot deadlock each other.  Ids that
// do not exist are simply absent from the result.
func (r *SeatRepo) LockByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	in, args := inClause(ids)
	q := `SELECT id, schedule_id, seat_number, status
	      FROM seats
	      WHERE id IN (` + in + `)
	      ORDER BY id
	      FOR UPDATE`
	return r.query(ctx, q, args...)
}

// UpdateStatus sets the status of all listed seats.  Seats already in the
// target status are left untouched, which makes releases idempotent.
func (r *SeatRepo) UpdateStatus(ctx context.Context, ids []uint64, status model.SeatStatus) error {
	if len(ids) == 0 {
		return nil
	}
	in, args := inClause(ids)
	q := `UPDATE seats SET status = ? WHERE id IN (` + in + `)`
	_, err := r.db.ExecContext(ctx, q, append([]any{string(status)}, args...)...)
	return err
}

// ListByBookings returns the seats of several bookings in one query,
// keyed by booking id.
func (r *SeatRepo) ListByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.Seat, error) {
	out := make(map[uint64][]model.Seat, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	in, args := inClause(bookingIDs)
	q := `SELECT bs.booking_id, s.id, s.schedule_id, s.seat_number, s.status
	      FROM booking_seats bs
	      JOIN seats s ON s.id = bs.seat_id
	      WHERE bs.booking_id IN (` + in + `)
	      ORDER BY bs.booking_id, s.seat_number, s.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bid uint64
			s   model.Seat
		)
		if err := rows.Scan(&bid, &s.ID, &s.ScheduleID, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		out[bid] = append(out[bid], s)
	}
	return out, rows.Err()
}

func (r *SeatRepo) query(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ScheduleID, &s.SeatNumber, &s.Status); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
