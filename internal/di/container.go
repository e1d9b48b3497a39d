// Package di wires the application graph with google/wire. The generated
// injector lives in wire_gen.go; the provider set in providers.go.
package di

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"worldloom-backend/internal/config"
	"worldloom-backend/internal/observability"
)

// Container holds the assembled application
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router chi.Router

	tracerProvider *observability.TracerProvider
}

// Shutdown flushes telemetry and the logger
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := c.tracerProvider.Shutdown(ctx); err != nil {
		firstErr = err
		c.Logger.Error("failed to shut down tracer provider", zap.Error(err))
	}
	_ = c.Logger.Sync() // stderr sync errors are expected on some platforms
	return firstErr
}
