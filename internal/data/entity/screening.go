package entity

import "time"

// Screening is one showing of a movie at a theater. Immutable once created.
type Screening struct {
	BaseSimple
	MovieTitle  string    `db:"movie_title"`
	TheaterName string    `db:"theater_name"`
	StartsAt    time.Time `db:"starts_at"`
}
