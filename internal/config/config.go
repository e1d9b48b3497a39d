// Package config loads the service configuration from defaults, layered
// YAML/JSON files and environment variables, with optional hot reload in
// development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the full service configuration
type Config struct {
	Environment Environment `yaml:"environment" json:"environment"`

	Server   Server   `yaml:"server" json:"server"`
	Database Database `yaml:"database" json:"database"`
	AWS      AWS      `yaml:"aws" json:"aws"`
	Security Security `yaml:"security" json:"security"`
	CORS     CORS     `yaml:"cors" json:"cors"`
	Events   Events   `yaml:"events" json:"events"`
	Search   Search   `yaml:"search" json:"search"`
	Supabase Supabase `yaml:"supabase" json:"supabase"`
	Logging  Logging  `yaml:"logging" json:"logging"`
	Tracing  Tracing  `yaml:"tracing" json:"tracing"`

	// LoadedFrom records which sources contributed, for startup logging
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Database holds DynamoDB settings
type Database struct {
	TableName string        `yaml:"table_name" json:"table_name"`
	Region    string        `yaml:"region" json:"region"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// AWS holds shared AWS settings
type AWS struct {
	Region string `yaml:"region" json:"region"`
}

// Security holds authentication settings
type Security struct {
	JWTSecret  string `yaml:"jwt_secret" json:"jwt_secret"`
	JWTIssuer  string `yaml:"jwt_issuer" json:"jwt_issuer"`
	EnableAuth bool   `yaml:"enable_auth" json:"enable_auth"`
}

// CORS holds cross-origin settings for the REST surface
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Events holds EventBridge settings
type Events struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	EventBusName string `yaml:"event_bus_name" json:"event_bus_name"`
}

// Search holds search behavior settings
type Search struct {
	DebounceDelay     time.Duration `yaml:"debounce_delay" json:"debounce_delay"`
	RecentHistorySize int           `yaml:"recent_history_size" json:"recent_history_size"`
}

// Supabase holds diagnostics probe settings
type Supabase struct {
	URL        string `yaml:"url" json:"url"`
	AnonKey    string `yaml:"anon_key" json:"anon_key"`
	ProbeTable string `yaml:"probe_table" json:"probe_table"`
}

// Logging holds zap settings
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Tracing holds OpenTelemetry settings
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
}

// Default returns the configuration used when no file or environment
// variable overrides a value
func Default(env Environment) *Config {
	return &Config{
		Environment: env,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			TableName: "worldloom-" + strings.ToLower(string(env)),
			Region:    "us-east-1",
			Timeout:   10 * time.Second,
		},
		AWS: AWS{Region: "us-east-1"},
		Security: Security{
			EnableAuth: true,
			JWTIssuer:  "worldloom",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		},
		Events: Events{
			Enabled:      false,
			EventBusName: "default",
		},
		Search: Search{
			DebounceDelay:     300 * time.Millisecond,
			RecentHistorySize: 10,
		},
		Supabase: Supabase{
			ProbeTable: "diagnostics",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Tracing: Tracing{
			Enabled:     false,
			ServiceName: "worldloom-backend",
			SampleRate:  0.1,
		},
	}
}

// Load builds the configuration from defaults and environment variables.
// Use the Loader for file-layered loading.
func Load() (*Config, error) {
	cfg := Default(EnvironmentFromEnv())
	cfg.applyEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads the configuration and panics on error. Only for main().
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// EnvironmentFromEnv reads the deployment environment from ENVIRONMENT,
// defaulting to development.
func EnvironmentFromEnv() Environment {
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "production", "prod":
		return Production
	case "staging":
		return Staging
	default:
		return Development
	}
}

// applyEnvironment overlays environment variables, the highest-priority
// source
func (c *Config) applyEnvironment() {
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("TABLE_NAME"); val != "" {
		c.Database.TableName = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		c.AWS.Region = val
		c.Database.Region = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Security.JWTSecret = val
	}
	if val := os.Getenv("JWT_ISSUER"); val != "" {
		c.Security.JWTIssuer = val
	}
	if val := os.Getenv("ENABLE_AUTH"); val != "" {
		c.Security.EnableAuth = parseBool(val)
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		c.CORS.AllowedOrigins = splitAndTrim(val)
	}
	if val := os.Getenv("EVENT_BUS_NAME"); val != "" {
		c.Events.Enabled = true
		c.Events.EventBusName = val
	}
	if val := os.Getenv("SUPABASE_URL"); val != "" {
		c.Supabase.URL = val
	}
	if val := os.Getenv("SUPABASE_ANON_KEY"); val != "" {
		c.Supabase.AnonKey = val
	}
	if val := os.Getenv("SUPABASE_PROBE_TABLE"); val != "" {
		c.Supabase.ProbeTable = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = val
	}
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.TableName == "" {
		return fmt.Errorf("database table name is required")
	}
	if c.Security.EnableAuth && c.Security.JWTSecret == "" && c.Environment == Production {
		return fmt.Errorf("JWT secret is required in production when auth is enabled")
	}
	if c.Search.RecentHistorySize < 0 {
		return fmt.Errorf("recent history size cannot be negative")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0 and 1")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(s)
	return val
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
