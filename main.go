// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmyseat/cmd"
	"bookmyseat/internal/cache"
	"bookmyseat/internal/data/repository"
	"bookmyseat/internal/notify"
	"bookmyseat/internal/wire"
	"bookmyseat/pkg/clock"
	"bookmyseat/pkg/database"
	"bookmyseat/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("store", config.App.StoreDriver),
		zap.Duration("reservation_ttl", config.Booking.ReservationTTL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.NewRealClock()

	// Seat store
	var repos *repository.Repository
	switch config.App.StoreDriver {
	case utils.StoreDriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		repos = repository.NewMemoryRepository(clk, logger)
	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	}

	// Redis is optional: seat-map cache and rate limiting switch off without it
	var rdb *redis.Client
	seatCache := cache.NewNoop()
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("Redis unreachable, running without cache and rate limit", zap.Error(err))
			rdb = nil
		} else {
			logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
			seatCache = cache.NewRedis(rdb, config.Redis.SeatMapTTL, logger)
		}
	}

	// Booking confirmations
	notifier := notify.NewLogSender(logger)
	if config.RabbitMQ.URL != "" {
		publisher := notify.NewRabbitPublisher(config.RabbitMQ.URL, config.RabbitMQ.Queue, logger)
		defer publisher.Close()
		notifier = publisher
		logger.Info("Publishing booking confirmations", zap.String("queue", config.RabbitMQ.Queue))
	}

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:      repos,
		Redis:     rdb,
		SeatCache: seatCache,
		Notifier:  notifier,
		Clock:     clk,
	}, config, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Sweeper.Run(gctx, config.Booking.SweepInterval)
		return nil
	})

	g.Go(func() error {
		return cmd.APIServer(gctx, app.Router, config.App.Port, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		return
	}

	logger.Info("Application stopped")
}
