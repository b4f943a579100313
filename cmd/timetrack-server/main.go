package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/auth"
	"kuenkele/timetrack/internal/config"
	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/handler"
	"kuenkele/timetrack/internal/logger"
	"kuenkele/timetrack/internal/metrics"
	"kuenkele/timetrack/internal/repository"
	"kuenkele/timetrack/internal/router"
	"kuenkele/timetrack/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting timetrack server",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	location, err := cfg.Work.Location()
	if err != nil {
		log.Fatal("Invalid work time zone", zap.String("time_zone", cfg.Work.TimeZone), zap.Error(err))
	}

	// Initialize database
	pg := cfg.Database.Postgres
	db, err := database.New(database.Options{
		Driver:      cfg.Database.Driver,
		StoragePath: cfg.Database.StoragePath,
		PostgresDSN: database.PostgresDSN(pg.Host, pg.Port, pg.User, pg.Password, pg.DB, pg.SSLMode),
	}, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	ctx := context.Background()

	recorder, err := metrics.New(ctx, metrics.Config{
		Endpoint: cfg.Metrics.Endpoint,
		Enabled:  cfg.Metrics.Enabled,
		Insecure: cfg.Metrics.Insecure,
	})
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(closeCtx); err != nil {
			log.Warn("Failed to flush metrics", zap.Error(err))
		}
	}()

	// Repositories
	projectRepo := repository.NewProjectRepository(db, log.Logger)
	activityRepo := repository.NewActivityRepository(db, log.Logger)
	worktimeRepo := repository.NewWorktimeRepository(db, log.Logger)
	userRepo := repository.NewUserRepository(db, log.Logger)
	sessionRepo := repository.NewSessionRepository(db, log.Logger)

	var verifier service.TokenVerifier
	if cfg.Auth.OIDC.Enabled {
		verifier = auth.NewOIDCVerifier(ctx, cfg.Auth.OIDC, log.Logger)
		log.Info("OIDC bearer tokens enabled", zap.String("issuer", cfg.Auth.OIDC.Issuer()))
	}

	// Services
	worktimeService := service.NewWorktimeService(activityRepo, worktimeRepo, location, log.Logger)
	projectService := service.NewProjectService(projectRepo, worktimeService, recorder, log.Logger)
	activityService := service.NewActivityService(
		activityRepo,
		worktimeRepo,
		worktimeService,
		location,
		cfg.Work.DailyWorkSeconds(),
		log.Logger,
	)
	authService := service.NewAuthService(
		userRepo,
		sessionRepo,
		verifier,
		recorder,
		service.AuthOptions{
			SessionTTL:         cfg.Auth.SessionTTL,
			EnableUserCreation: cfg.Auth.EnableUserCreation,
		},
		log.Logger,
	)

	janitor := service.NewSessionJanitor(authService, cfg.Auth.CleanupInterval, log.Logger)
	defer janitor.Stop()

	// Handlers and router
	r := router.New(router.Handlers{
		Projects:           handler.NewProjectHandler(projectService, log.Logger),
		Activities:         handler.NewActivityHandler(activityService, log.Logger),
		Users:              handler.NewUserHandler(authService, cfg.Auth.InsecureCookie, log.Logger),
		EnableUserCreation: authService.UserCreationEnabled(),
	}, cfg.HTTP.AllowedOrigins, log.Logger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("HTTP server error", zap.Error(err))
	}

	log.Info("Shutting down timetrack server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Timetrack server stopped")
}
