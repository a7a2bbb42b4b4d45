// Package repository implements MySQL data access for the booking
// backend.  Repositories are built over DBTX so the same code runs
// against the pool or inside a transaction opened by Store.InTx.
//
// The sentinel values below allow higher layers to distinguish missing
// rows from other failures without depending on database/sql.
package repository

import "errors"

var (
	ErrFilmNotFound     = errors.New("film not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ErrConflict is returned when a write cannot be applied because of a
// unique constraint, e.g. registering an email twice.
var ErrConflict = errors.New("conflict")
