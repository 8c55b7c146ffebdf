package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/homeman/marketplace-api/internal/core/domain"
	"github.com/homeman/marketplace-api/internal/core/ports"
	"github.com/homeman/marketplace-api/internal/core/service"
	mongodb "github.com/homeman/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/homeman/marketplace-api/internal/infrastructure/security"
	"github.com/homeman/marketplace-api/internal/pkg/config"
	"github.com/homeman/marketplace-api/pkg/logger"
)

type adminRegistrar interface {
	RegisterAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
}

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
		Service: "seed-admin",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "seed-admin"})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	// Tokens are never issued here, so the signing key may be empty.
	auth := service.NewAuthService(users, security.NewBcryptHasher(security.DefaultCost), service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), log)

	if err := seedAdmin(ctx, auth, cfg.Admin, log); err != nil {
		log.Error().Err(err).Msg("seeding failed")
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}
}

// seedAdmin creates the admin account unless its email is already taken.
func seedAdmin(ctx context.Context, auth adminRegistrar, cfg config.AdminConfig, log zerolog.Logger) error {
	if cfg.Password == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}

	user, err := auth.RegisterAdmin(ctx, ports.RegisterInput{
		Name:     cfg.Name,
		Email:    cfg.Email,
		Password: cfg.Password,
		Location: cfg.Location,
	})
	if errors.Is(err, domain.ErrEmailExists) {
		log.Info().Str("email", cfg.Email).Msg("admin already exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin created")
	return nil
}
