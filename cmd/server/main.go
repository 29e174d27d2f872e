package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ice-breakun/backend/pkg/config"
	"ice-breakun/backend/pkg/di"
	"ice-breakun/backend/pkg/grpchealth"
	"ice-breakun/backend/pkg/logger"
	"ice-breakun/backend/pkg/observability"
	"ice-breakun/backend/pkg/router"
)

func main() {
	cfg := config.Load()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "version", cfg.Server.Version, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := di.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}
	defer func() {
		if err := config.Close(db); err != nil {
			log.LogError(err, "Failed to close database")
		}
	}()

	if cfg.Observability.TracingEnabled {
		shutdownTracing, err := observability.SetupTracing(cfg.Observability.ServiceName, cfg.Server.Version, os.Stdout)
		if err != nil {
			log.LogError(err, "Failed to set up tracing")
			os.Exit(1)
		}
		defer func() {
			_ = shutdownTracing(context.Background())
		}()
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	container.Start(ctx)

	var grpcServer *grpchealth.Server
	if cfg.Health.GRPCPort != "" {
		grpcServer = grpchealth.New(container.Health, log)
		go func() {
			if err := grpcServer.ListenAndServe(cfg.Health.GRPCPort); err != nil {
				log.LogError(err, "gRPC health server stopped")
			}
		}()
	}

	// Initialize and setup router
	r := router.New(container)
	if cfg.OpenAPI.SchemaPath != "" {
		if err := r.AddOpenAPIValidation(cfg.OpenAPI.SchemaPath); err != nil {
			log.LogError(err, "OpenAPI validation disabled", "schema", cfg.OpenAPI.SchemaPath)
		}
	}
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until we receive a signal or the listener fails
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.LogError(err, "Server failed to start")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}
	r.Close()
	if err := container.Close(shutdownCtx); err != nil {
		log.LogError(err, "Failed to release dependencies")
	}

	log.Info("Server exited gracefully")
}
