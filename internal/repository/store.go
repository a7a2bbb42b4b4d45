package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos bundles every repository bound to the same DBTX.
type Repos struct {
	Films     *FilmRepo
	Schedules *ScheduleRepo
	Seats     *SeatRepo
	Services  *ServiceRepo
	Bookings  *BookingRepo
	Users     *UserRepo
}

func newRepos(db DBTX) Repos {
	return Repos{
		Films:     NewFilmRepo(db),
		Schedules: NewScheduleRepo(db),
		Seats:     NewSeatRepo(db),
		Services:  NewServiceRepo(db),
		Bookings:  NewBookingRepo(db),
		Users:     NewUserRepo(db),
	}
}

// Store owns the connection pool and hands out repositories, either bound
// to the pool or to a transaction.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open pool.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

// Repos returns repositories bound to the pool (autocommit).
func (s *Store) Repos() Repos { return newRepos(s.db) }

// InTx runs fn inside a single transaction.  The transaction is committed
// when fn returns nil and rolled back otherwise, so callers can return
// early on any failure without leaving partial writes behind.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// inClause returns "?,?,?" for len(ids) and the ids as query args.
func inClause(ids []uint64) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}
	return strings.Join(ph, ","), args
}
