package wire

import (
	"bookmyseat/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireScreening(r chi.Router, handler *adaptor.Handler, holderOnly func(chi.Router)) {
	r.Route("/api/screenings/{id}", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		// GET /api/screenings/{id} - Screening details
		r.Get("/", handler.Screening.GetScreening)

		// GET /api/screenings/{id}/seats - Seat map with availability
		r.Get("/seats", handler.Screening.GetSeatMap)

		// ==================== HOLDER ROUTES ====================
		r.Group(func(r chi.Router) {
			holderOnly(r)

			// POST /api/screenings/{id}/reservations - Hold seats for the TTL
			r.Post("/reservations", handler.Reservation.ReserveSeats)

			// GET /api/screenings/{id}/reservations - Seats the holder still has
			r.Get("/reservations", handler.Reservation.GetActiveReservations)

			// DELETE /api/screenings/{id}/reservations - Give seats back early
			r.Delete("/reservations", handler.Reservation.ReleaseSeats)

			// GET /api/screenings/{id}/payment-quote - Amount to charge
			r.Get("/payment-quote", handler.Booking.GetPaymentQuote)

			// POST /api/screenings/{id}/bookings - Finalize after payment
			r.Post("/bookings", handler.Booking.FinalizeBookings)
		})
	})
}
