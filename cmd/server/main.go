package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/connectly/backend/internal/realtime"
	"github.com/connectly/backend/internal/router"
	"github.com/connectly/backend/pkg/config"
	"github.com/connectly/backend/pkg/firebase"
	"github.com/connectly/backend/pkg/logger"
	"github.com/connectly/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "connectly"})
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to stores")
	}
	defer db.CloseDB()

	var firebaseAuth *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase")
		}
		firebaseAuth = app.AuthClient
	} else {
		log.Info().Msg("firebase credentials not configured, firebase login disabled")
	}

	hub := realtime.NewHub(db.Redis)
	go hub.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)
	if err := router.SetupRoutes(e, db.Mongo.Database(cfg.MongoDB), hub, firebaseAuth, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
