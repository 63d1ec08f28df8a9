package wire

import (
	"net/http"

	"bookmyseat/internal/adaptor"
	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/notify"
	"bookmyseat/internal/usecase"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/middleware"
	"bookmyseat/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the router and the background sweeper
type App struct {
	Router  *chi.Mux
	Sweeper usecase.ExpirySweeper
}

// Deps are the infrastructure handles main builds. Redis may be nil.
type Deps struct {
	Repo      *repository.Repository
	Redis     *redis.Client
	SeatCache cache.SeatMapCache
	Notifier  notify.Sender
	Clock     clock.Clock
}

// Wiring builds services, handlers and routes
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.SeatCache, deps.Notifier, deps.Clock, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, deps, config, logger)

	return &App{
		Router:  router,
		Sweeper: service.Sweeper,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	holderOnly := func(r chi.Router) {
		r.Use(middleware.RequireHolder(logger))
		r.Use(middleware.RateLimit(deps.Redis, config.Redis, deps.Clock, logger))
	}

	// Apply routes
	wireScreening(r, handler, holderOnly)
	wireBooking(r, handler.Booking, holderOnly)
	wireAdmin(r, handler.Screening, handler.Report, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
