package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default(Development)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "worldloom-development", cfg.Database.TableName)
	assert.Equal(t, 10, cfg.Search.RecentHistorySize)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.DebounceDelay)
	assert.True(t, cfg.Security.EnableAuth)
	require.NoError(t, cfg.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("TABLE_NAME", "worldloom-test")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("EVENT_BUS_NAME", "worldloom-events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "worldloom-test", cfg.Database.TableName)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "eu-west-1", cfg.Database.Region)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "worldloom-events", cfg.Events.EventBusName)
}

func TestValidate(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		cfg := Default(Development)
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing table", func(t *testing.T) {
		cfg := Default(Development)
		cfg.Database.TableName = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires a JWT secret", func(t *testing.T) {
		cfg := Default(Production)
		assert.Error(t, cfg.Validate())

		cfg.Security.JWTSecret = "secret"
		assert.NoError(t, cfg.Validate())

		cfg.Security.JWTSecret = ""
		cfg.Security.EnableAuth = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("sample rate bounds", func(t *testing.T) {
		cfg := Default(Development)
		cfg.Tracing.SampleRate = 1.5
		assert.Error(t, cfg.Validate())
	})
}

func TestLoaderLayersFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
server:
  port: 9000
search:
  recent_history_size: 5
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "development.yaml"), []byte(`
server:
  port: 9100
`), 0o644))

	cfg, err := NewLoader(dir, Development).Load()
	require.NoError(t, err)

	// environment file overrides base; base overrides defaults
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Search.RecentHistorySize)
	// untouched defaults survive
	assert.Equal(t, "worldloom-development", cfg.Database.TableName)
	assert.Contains(t, cfg.LoadedFrom, "defaults")
	assert.Contains(t, cfg.LoadedFrom, "environment")
}

func TestLoaderRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("server: ["), 0o644))

	_, err := NewLoader(dir, Development).Load()
	assert.Error(t, err)
}

func TestLoaderMissingDirFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent"), Development).Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
