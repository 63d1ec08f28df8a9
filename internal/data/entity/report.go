package entity

// RankedCount is one row of a "top N by bookings" aggregate.
type RankedCount struct {
	Name  string `db:"name"`
	Count int64  `db:"count"`
}
