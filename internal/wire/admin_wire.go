package wire

import (
	"bookmyseat/internal/adaptor"
	"bookmyseat/pkg/middleware"
	"bookmyseat/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	screeningHandler *adaptor.ScreeningHandler,
	reportHandler *adaptor.ReportHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Admin(config.App.AdminKey, log))

		// POST /api/admin/screenings - Register a screening and its seats
		r.Post("/screenings", screeningHandler.RegisterScreening)

		// GET /api/admin/report - Bookings, revenue and rankings
		r.Get("/report", reportHandler.GetSummary)
	})
}
