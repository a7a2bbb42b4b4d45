package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

// ScheduleRepo reads showtimes.  Schedules are immutable from the
// booking core's point of view, so only lookups are provided.
type ScheduleRepo struct {
	db DBTX
}

// NewScheduleRepo constructs a ScheduleRepo.
func NewScheduleRepo(db DBTX) *ScheduleRepo { return &ScheduleRepo{db: db} }

// GetByID returns the schedule or ErrScheduleNotFound.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT id, film_id, date, price, created_at, updated_at FROM schedules WHERE id = ?`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.FilmID, &s.Date, &s.Price, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByFilm returns every schedule of a film ordered by date.
func (r *ScheduleRepo) ListByFilm(ctx context.Context, filmID uint64) ([]model.Schedule, error) {
	const q = `SELECT id, film_id, date, price, created_at, updated_at
	           FROM schedules WHERE film_id = ? ORDER BY date, id`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Schedule, 0)
	for rows.Next() {
		var s model.Schedule
		if err := rows.Scan(&s.ID, &s.FilmID, &s.Date, &s.Price, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
