package adaptor

import (
	"net/http"

	"bookmyseat/internal/dto/request"
	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ScreeningHandler struct {
	catalog     usecase.CatalogService
	reservation usecase.ReservationService
	log         *zap.Logger
}

func NewScreeningHandler(catalog usecase.CatalogService, reservation usecase.ReservationService, log *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		catalog:     catalog,
		reservation: reservation,
		log:         log.With(zap.String("handler", "screening")),
	}
}

// GetScreening handles GET /api/screenings/{id} (public)
func (h *ScreeningHandler) GetScreening(w http.ResponseWriter, r *http.Request) {
	screening, err := h.catalog.GetScreening(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get screening")
		return
	}

	utils.ResponseSuccess(w, "success", screening)
}

// GetSeatMap handles GET /api/screenings/{id}/seats (public)
func (h *ScreeningHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	seatMap, err := h.reservation.SeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, "success", seatMap)
}

// ==================== ADMIN METHODS ====================

// RegisterScreening handles POST /api/admin/screenings (admin only)
func (h *ScreeningHandler) RegisterScreening(w http.ResponseWriter, r *http.Request) {
	var req request.CreateScreeningRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	screening, err := h.catalog.RegisterScreening(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "register screening")
		return
	}

	utils.ResponseCreated(w, "Screening registered", screening)
}
