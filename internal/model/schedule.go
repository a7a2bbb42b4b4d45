package model

import "time"

// Schedule is one showtime of a film.  Its Price applies to every seat
// of the schedule and is expressed in the smallest currency unit.
// Schedules are read-only from the booking core's perspective.
//
// Fields:
//  ID     – primary key identifier.
//  FilmID – film being screened.
//  Date   – showtime day (UTC, time component ignored).
//  Price  – price of a single seat.
type Schedule struct {
    ID        uint64    `json:"id"`         // schedules.id
    FilmID    uint64    `json:"film_id"`    // schedules.film_id
    Date      time.Time `json:"date"`       // schedules.date
    Price     int64     `json:"price"`      // schedules.price
    CreatedAt time.Time `json:"created_at"` // schedules.created_at
    UpdatedAt time.Time `json:"updated_at"` // schedules.updated_at
}

// ScheduleWithFilm is a schedule joined with its film.
type ScheduleWithFilm struct {
    Schedule
    Film *Film `json:"film"`
}
