package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

const bookingColumns = `id, user_id, schedule_id, total_price, status, created_at, updated_at`

// BookingRepo provides persistence for bookings and their seat and
// service attachments (booking_seats, booking_services).  Both
// attachment tables cascade on booking delete.
type BookingRepo struct {
	db DBTX
}

// NewBookingRepo constructs a BookingRepo.
func NewBookingRepo(db DBTX) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking and reloads it so the generated id and the
// database default timestamps are populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, schedule_id, total_price, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.UserID, b.ScheduleID, b.TotalPrice, string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	loaded, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = *loaded
	return nil
}

// GetByID returns a booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return r.one(ctx, q, id)
}

// LockByID is GetByID with an exclusive row lock; use inside a
// transaction before mutating the booking.
func (r *BookingRepo) LockByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return r.one(ctx, q, id)
}

// LatestForUserAndSchedule returns the most recent booking a user made
// for a schedule.
func (r *BookingRepo) LatestForUserAndSchedule(ctx context.Context, userID, scheduleID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE user_id = ? AND schedule_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT 1`
	return r.one(ctx, q, userID, scheduleID)
}

// List returns one page of bookings, newest first, and the total count.
func (r *BookingRepo) List(ctx context.Context, limit, offset int) ([]model.Booking, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           ORDER BY created_at DESC, id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateTotal persists a recomputed total price.
func (r *BookingRepo) UpdateTotal(ctx context.Context, id uint64, total int64) error {
	const q = `UPDATE bookings SET total_price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, total, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 when nothing changed; confirm the row exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a booking.  Attachments go with it via ON DELETE CASCADE.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// AttachSeats links seats to a booking in one statement.
func (r *BookingRepo) AttachSeats(ctx context.Context, bookingID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]any, 0, len(seatIDs)*2)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, sid)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// DetachSeats removes every seat link of a booking.
func (r *BookingRepo) DetachSeats(ctx context.Context, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = ?`, bookingID)
	return err
}

// SeatIDs returns the ids of the seats attached to a booking.
func (r *BookingRepo) SeatIDs(ctx context.Context, bookingID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttachServices inserts service lines for a booking.
func (r *BookingRepo) AttachServices(ctx context.Context, lines []model.BookingServiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO booking_services (booking_id, service_id, quantity) VALUES `
	args := make([]any, 0, len(lines)*3)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, l.BookingID, l.ServiceID, l.Quantity)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// DetachServices removes every service line of a booking.
func (r *BookingRepo) DetachServices(ctx context.Context, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM booking_services WHERE booking_id = ?`, bookingID)
	return err
}

// ServiceLinesByBookings returns the service lines of several bookings
// keyed by booking id.
func (r *BookingRepo) ServiceLinesByBookings(ctx context.Context, bookingIDs []uint64) (map[uint64][]model.BookingServiceLine, error) {
	out := make(map[uint64][]model.BookingServiceLine, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	in, args := inClause(bookingIDs)
	q := `SELECT bsv.booking_id, bsv.service_id, sv.name, sv.price, bsv.quantity
	      FROM booking_services bsv
	      JOIN services sv ON sv.id = bsv.service_id
	      WHERE bsv.booking_id IN (` + in + `)
	      ORDER BY bsv.booking_id, bsv.service_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l model.BookingServiceLine
		if err := rows.Scan(&l.BookingID, &l.ServiceID, &l.Name, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		out[l.BookingID] = append(out[l.BookingID], l)
	}
	return out, rows.Err()
}

func (r *BookingRepo) one(ctx context.Context, q string, args ...any) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
