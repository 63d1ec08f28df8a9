package response

type RankedResponse struct {
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}

type ReportResponse struct {
	TotalBookings int64            `json:"total_bookings"`
	TotalRevenue  int64            `json:"total_revenue"`
	Currency      string           `json:"currency"`
	PopularMovies []RankedResponse `json:"popular_movies"`
	BusyTheaters  []RankedResponse `json:"busy_theaters"`
}
