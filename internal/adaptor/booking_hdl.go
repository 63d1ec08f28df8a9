package adaptor

import (
	"net/http"

	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// FinalizeBookings handles POST /api/screenings/{id}/bookings (holder).
// Called once the payment collaborator has captured the charge.
func (h *BookingHandler) FinalizeBookings(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	result, err := h.service.FinalizeBookings(r.Context(), chi.URLParam(r, "id"), holder)
	if err != nil {
		// Seats committed before the failure must still reach the caller.
		if result != nil && len(result.Bookings) > 0 {
			h.log.Error("Finalize bookings stopped early",
				zap.Error(err),
				zap.Int("committed", len(result.Bookings)),
				zap.Strings("unprocessed", result.Unprocessed))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Bookings partially confirmed, retry for the rest", result, nil)
			return
		}
		handleServiceError(h.log, w, err, "finalize bookings")
		return
	}

	if len(result.Bookings) == 0 {
		utils.ResponseSuccess(w, "No seats to book", result)
		return
	}

	utils.ResponseCreated(w, "Bookings confirmed", result)
}

// GetPaymentQuote handles GET /api/screenings/{id}/payment-quote (holder)
func (h *BookingHandler) GetPaymentQuote(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	quote, err := h.service.PaymentQuote(r.Context(), chi.URLParam(r, "id"), holder)
	if err != nil {
		handleServiceError(h.log, w, err, "get payment quote")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// GetHolderBookings handles GET /api/user/bookings (holder)
func (h *BookingHandler) GetHolderBookings(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	bookings, err := h.service.HolderBookings(r.Context(), holder)
	if err != nil {
		handleServiceError(h.log, w, err, "get holder bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
