package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldloom-backend/internal/config"
)

func TestProvideLogger(t *testing.T) {
	cfg := config.Default(config.Production)

	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Logging.Level = "not-a-level"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideJWTValidator(t *testing.T) {
	cfg := config.Default(config.Development)

	t.Run("nil when auth disabled", func(t *testing.T) {
		cfg.Security.EnableAuth = false
		validator, err := ProvideJWTValidator(cfg)
		require.NoError(t, err)
		assert.Nil(t, validator)
	})

	t.Run("requires a secret when enabled", func(t *testing.T) {
		cfg.Security.EnableAuth = true
		cfg.Security.JWTSecret = ""
		_, err := ProvideJWTValidator(cfg)
		assert.Error(t, err)
	})

	t.Run("builds with a secret", func(t *testing.T) {
		cfg.Security.EnableAuth = true
		cfg.Security.JWTSecret = "local-secret"
		validator, err := ProvideJWTValidator(cfg)
		require.NoError(t, err)
		assert.NotNil(t, validator)
	})
}

func TestProvideDiagnosticsServiceUnconfigured(t *testing.T) {
	cfg := config.Default(config.Development)
	cfg.Supabase.URL = ""

	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)

	svc, err := ProvideDiagnosticsService(cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, svc)
}
