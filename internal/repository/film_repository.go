package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-booking/internal/model"
)

const filmColumns = `id, title, description, genre, release_date, duration, poster, status, created_at, updated_at`

// FilmRepo reads the film catalog.
type FilmRepo struct {
	db DBTX
}

// NewFilmRepo constructs a FilmRepo.
func NewFilmRepo(db DBTX) *FilmRepo { return &FilmRepo{db: db} }

// GetByID returns a film or ErrFilmNotFound.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM films WHERE id = ?`
	f, err := scanFilm(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFilmNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(row rowScanner) (*model.Film, error) {
	var (
		f       model.Film
		desc    sql.NullString
		genre   sql.NullString
		release sql.NullTime
		poster  sql.NullString
	)
	if err := row.Scan(&f.ID, &f.Title, &desc, &genre, &release, &f.Duration, &poster, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Description = desc.String
	f.Genre = genre.String
	f.Poster = poster.String
	if release.Valid {
		t := release.Time
		f.ReleaseDate = &t
	}
	return &f, nil
}
