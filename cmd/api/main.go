package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/homeman/marketplace-api/internal/api"
	"github.com/homeman/marketplace-api/internal/api/handler"
	"github.com/homeman/marketplace-api/internal/core/service"
	mongodb "github.com/homeman/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/homeman/marketplace-api/internal/infrastructure/db/redis"
	"github.com/homeman/marketplace-api/internal/infrastructure/queue"
	"github.com/homeman/marketplace-api/internal/infrastructure/security"
	"github.com/homeman/marketplace-api/internal/pkg/config"
	"github.com/homeman/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Homeman Marketplace API
// @version      1.0
// @description  Registration, login and the hire-request lifecycle of the Homeman service marketplace.
// @BasePath     /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "marketplace-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "marketplace-api"})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	users := mongodb.NewUserRepository(db)
	bookings := mongodb.NewBookingRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := bookings.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(users, security.NewBcryptHasher(security.DefaultCost), tokens, log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, service.NewEventService(mongodb.NewEventRepository(db), log), log)
	dispatcher.Start(workerCtx)

	bookingService := service.NewBookingService(
		bookings,
		users,
		redisdb.NewLocker(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait),
		dispatcher,
		service.BookingPolicy{DailyLimit: cfg.Booking.DailyLimit, Location: loc},
		log,
	)

	router := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Bookings: bookingService,
		Tokens:   tokens,
		Health: map[string]handler.HealthCheck{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	// In-flight requests have finished, so nothing publishes after this point.
	dispatcher.Stop()
	log.Info().Msg("server exited")

	return serveErr
}
