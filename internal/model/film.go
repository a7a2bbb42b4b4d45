package model

import "time"

// Film is a catalog entry for a movie.  The booking core only reads
// films to enrich schedules with a title and poster.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title of the movie.
//  Description – synopsis (may be empty).
//  Genre       – free-form genre label.
//  ReleaseDate – release day, nil when unknown.
//  Duration    – running time in minutes.
//  Poster      – stored media path of the poster image (may be empty).
//  Status      – catalog status (e.g. NOW_SHOWING, COMING_SOON).
type Film struct {
    ID          uint64     `json:"id"`           // films.id
    Title       string     `json:"title"`        // films.title
    Description string     `json:"description"`  // films.description
    Genre       string     `json:"genre"`        // films.genre
    ReleaseDate *time.Time `json:"release_date"` // films.release_date (nullable)
    Duration    uint32     `json:"duration"`     // films.duration
    Poster      string     `json:"-"`            // films.poster
    PosterURL   *string    `json:"poster_url"`   // derived, never stored
    Status      string     `json:"status"`       // films.status
    CreatedAt   time.Time  `json:"created_at"`   // films.created_at
    UpdatedAt   time.Time  `json:"updated_at"`   // films.updated_at
}
