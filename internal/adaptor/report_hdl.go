package adaptor

import (
	"net/http"

	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/utils"

	"go.uber.org/zap"
)

type ReportHandler struct {
	service usecase.ReportService
	log     *zap.Logger
}

func NewReportHandler(service usecase.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log.With(zap.String("handler", "report")),
	}
}

// GetSummary handles GET /api/admin/report (admin only)
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Summary(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "get report")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}
