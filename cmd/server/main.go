package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/authclient"
	"github.com/destinote/destinote/internal/config"
	"github.com/destinote/destinote/internal/db"
	"github.com/destinote/destinote/internal/logging"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		logging.Info().Msg("migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("seeding failed")
		}
		logging.Info().Msg("seeding completed")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		logging.Info().Msg("migrations completed")
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("seeding failed")
		}
	}

	serviceDB, err := connectServiceDB(cfg.Database, dbConn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect service database")
	}

	client := authclient.New(cfg.Auth)
	app := NewApp(Deps{
		Config:      cfg,
		DB:          dbConn,
		ServiceDB:   serviceDB,
		AuthService: client,
		Tokens:      tokenVerifier(cfg.Auth, client),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	logging.Info().Msg("server stopped gracefully")
}

// connectServiceDB opens the elevated connection when one is configured.
func connectServiceDB(cfg config.DatabaseConfig, fallback *gorm.DB) (*gorm.DB, error) {
	if cfg.ServiceURL == "" {
		return fallback, nil
	}
	cfg.URL = cfg.ServiceURL
	return db.Open(cfg)
}

// tokenVerifier verifies bearer tokens locally when the signing secret is
// known and falls back to asking the auth service.
func tokenVerifier(cfg config.AuthConfig, client *authclient.Client) auth.TokenVerifier {
	if cfg.JWTSecret != "" {
		v, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTAudience)
		if err == nil {
			return v
		}
		logging.Warn().Err(err).Msg("local token verification disabled")
	}
	if cfg.ServiceURL != "" {
		return client
	}
	return nil
}
