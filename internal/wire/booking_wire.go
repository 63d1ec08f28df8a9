package wire

import (
	"bookmyseat/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, holderOnly func(chi.Router)) {
	// ==================== HOLDER ROUTES ====================
	r.Group(func(r chi.Router) {
		holderOnly(r)

		// GET /api/user/bookings - Booking history of the holder
		r.Get("/api/user/bookings", bookingHandler.GetHolderBookings)
	})
}
