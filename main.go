package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"silicorex/analysis"
	"silicorex/config"
	"silicorex/database"
	"silicorex/datasets"
	"silicorex/forecast"
	"silicorex/handlers"
	"silicorex/utils"
)

func main() {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("loading configuration")
	}
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logins live in Postgres when configured, otherwise in memory.
	var logins database.LoginStore
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("connecting to database")
		}
		defer database.Close()
		store := database.NewLoginStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("preparing login table")
		}
		logins = store
	} else {
		logger.Warn("DATABASE_URL is not set, logins are kept in memory")
		logins = database.NewMemoryLoginStore()
	}
	if err := database.SeedGov(ctx, logins, cfg.GovUsername, cfg.GovPassword); err != nil {
		logger.WithError(err).Fatal("seeding government account")
	}

	data := datasets.NewCache(datasets.Paths{
		Rainfall: cfg.DataPath(cfg.RainfallCSV),
		Boilers:  cfg.DataPath(cfg.BoilersCSV),
		Roads:    cfg.DataPath(cfg.RoadsCSV),
	}, cfg.DataPath(cfg.FabSeriesCSV))
	if _, err := data.Districts(); err != nil {
		logger.WithError(err).Error("district datasets unavailable, site selection will fail until fixed")
	}

	var backend analysis.Backend
	if !cfg.HasGeminiKey() {
		logger.Warn("GEMINI_API_KEY is not configured, report generation disabled")
	} else {
		gemini, err := analysis.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.WithError(err).Fatal("creating Gemini client")
		}
		defer gemini.Close()
		backend = gemini
		logger.WithField("model", cfg.GeminiModel).
			WithField("key", utils.MaskSecret(cfg.GeminiAPIKey)).
			Info("Gemini backend ready")
	}

	h := handlers.New(logins, data, backend, forecast.NewModelLoader(cfg.ModelPath), []byte(cfg.JWTSecret))
	app := newServer(h, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	// Start server
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
