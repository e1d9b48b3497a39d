package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"worldloom-backend/internal/config"
	"worldloom-backend/internal/di"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration: layered files when CONFIG_DIR points at a
	// config directory, environment variables otherwise
	cfg, loader, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := container.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown cleanup error: %v", err)
		}
	}()

	// Hot reload is development-only; the watcher is inert elsewhere
	if loader != nil {
		watcher, err := config.NewWatcher(cfg, loader, container.Logger)
		if err != nil {
			container.Logger.Warn("configuration watcher unavailable", zap.Error(err))
		} else {
			watcher.OnChange(func(updated *config.Config) {
				container.Logger.Info("configuration reloaded",
					zap.Strings("loaded_from", updated.LoadedFrom),
				)
			})
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      container.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", string(cfg.Environment)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}

func loadConfig() (*config.Config, *config.Loader, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		cfg, err := config.Load()
		return cfg, nil, err
	}

	loader := config.NewLoader(dir, config.EnvironmentFromEnv())
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
