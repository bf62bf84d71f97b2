// Package main initializes and starts the admission portal HTTP server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/kwanjau/admissions/internal/config"
	"github.com/kwanjau/admissions/internal/db"
	"github.com/kwanjau/admissions/internal/logger"
	"github.com/kwanjau/admissions/internal/repository"
	"github.com/kwanjau/admissions/internal/server/handler/http"
	"github.com/kwanjau/admissions/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx := context.Background()

	// Initialize PostgreSQL and run migrations.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Seed the admin account when configured.
	if err := db.EnsureAdmin(ctx, postgresDB, options.AdminUsername, options.AdminPassword); err != nil {
		zapLogger.Fatal("cannot seed admin account", zap.Error(err))
	}

	// Sweep expired sessions in the background.
	db.StartSessionCleaner(ctx, postgresDB, time.Hour, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	appRepo := repository.NewPostgresApplicationRepository(postgresDB)
	docRepo := repository.NewPostgresDocumentRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, sessionRepo, options.SessionTTL)
	appService := service.NewApplicationService(appRepo)
	docService := service.NewDocumentService(docRepo, appRepo)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	appHandler := &http.ApplicationHandler{ApplicationService: appService}
	docHandler := &http.DocumentHandler{DocumentService: docService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, appHandler, docHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
