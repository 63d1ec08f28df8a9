package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/errs"
	"bookmyseat/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Screening   *ScreeningHandler
	Reservation *ReservationHandler
	Booking     *BookingHandler
	Report      *ReportHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Screening:   NewScreeningHandler(service.Catalog, service.Reservation, log),
		Reservation: NewReservationHandler(service.Reservation, log),
		Booking:     NewBookingHandler(service.Booking, log),
		Report:      NewReportHandler(service.Report, log),
	}
}

// decodeBody decodes a JSON body into dst. An empty body is accepted when
// allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// handleServiceError maps usecase errors onto the JSON envelope
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	switch {
	case errs.Is(err, errs.ErrInvalidRequest):
		log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errs.Is(err, errs.ErrScreeningNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, "Screening not found")

	case errs.Is(err, errs.ErrForbidden):
		log.Warn(operation+" failed - no holder",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseUnauthorized(w, "Holder identity required")

	case errs.Is(err, errs.ErrConflict):
		log.Warn(operation+" failed - conflict",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseConflict(w, "Seat is no longer held by you", nil)

	case errs.Is(err, errs.ErrStorage):
		log.Error(operation+" failed - storage unavailable",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseServiceUnavailable(w, "Service temporarily unavailable, please retry")

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
