package adaptor

import (
	"net/http"

	"bookmyseat/internal/dto/request"
	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// ReserveSeats handles POST /api/screenings/{id}/reservations (holder)
func (h *ReservationHandler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	var req request.ReserveSeatsRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.ReserveSeats(r.Context(), chi.URLParam(r, "id"), holder, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "reserve seats")
		return
	}

	// Nothing granted is still a well-formed answer; the rejected list says why.
	if len(result.Granted) == 0 {
		utils.ResponseConflict(w, "No seats reserved", result)
		return
	}

	utils.ResponseCreated(w, "Seats reserved", result)
}

// GetActiveReservations handles GET /api/screenings/{id}/reservations (holder)
func (h *ReservationHandler) GetActiveReservations(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	reservations, err := h.service.ActiveReservations(r.Context(), chi.URLParam(r, "id"), holder)
	if err != nil {
		handleServiceError(h.log, w, err, "get active reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// ReleaseSeats handles DELETE /api/screenings/{id}/reservations (holder).
// An empty body releases every seat the holder has in the screening.
func (h *ReservationHandler) ReleaseSeats(w http.ResponseWriter, r *http.Request) {
	holder, ok := utils.GetHolderFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Holder identity required")
		return
	}

	var req request.ReleaseSeatsRequest
	if err := decodeBody(r, &req, true); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	released, err := h.service.ReleaseSeats(r.Context(), chi.URLParam(r, "id"), holder, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "release seats")
		return
	}

	utils.ResponseSuccess(w, "success", released)
}
