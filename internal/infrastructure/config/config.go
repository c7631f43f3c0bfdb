package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Client   ClientConfig   `mapstructure:"client"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	BasePath       string        `mapstructure:"base_path"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ClientConfig configures the dashboard client that talks to the API.
type ClientConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	TokenFile       string        `mapstructure:"token_file"`
	NotesFile       string        `mapstructure:"notes_file"`
	Timezone        string        `mapstructure:"timezone"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

const defaultJWTSecret = "change-me-crewboard-secret"

// Load loads configuration from defaults, an optional .env file and the
// environment. It does not validate; see ValidateServer.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Crewboard")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.base_path", "/api/v1")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "crewboard")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")
	v.SetDefault("database.migrations_path", "migrations")

	// JWT defaults
	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expires_in", "24h")
	v.SetDefault("jwt.issuer", "crewboard-api")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)

	// Client defaults
	v.SetDefault("client.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("client.timeout", "15s")
	v.SetDefault("client.token_file", defaultTokenFile())
	v.SetDefault("client.notes_file", defaultNotesFile())
	v.SetDefault("client.timezone", "")
	v.SetDefault("client.breaker_failures", 5)
	v.SetDefault("client.breaker_timeout", "30s")
}

func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		// App
		"app.name":        "APP_NAME",
		"app.version":     "APP_VERSION",
		"app.environment": "APP_ENVIRONMENT",
		"app.debug":       "APP_DEBUG",

		// Server
		"server.port":            "SERVER_PORT",
		"server.host":            "SERVER_HOST",
		"server.base_path":       "SERVER_BASE_PATH",
		"server.read_timeout":    "SERVER_READ_TIMEOUT",
		"server.write_timeout":   "SERVER_WRITE_TIMEOUT",
		"server.idle_timeout":    "SERVER_IDLE_TIMEOUT",
		"server.request_timeout": "SERVER_REQUEST_TIMEOUT",

		// Database
		"database.host":               "DB_HOST",
		"database.port":               "DB_PORT",
		"database.name":               "DB_NAME",
		"database.user":               "DB_USER",
		"database.password":           "DB_PASSWORD",
		"database.ssl_mode":           "DB_SSL_MODE",
		"database.max_open_conns":     "DB_MAX_OPEN_CONNS",
		"database.max_idle_conns":     "DB_MAX_IDLE_CONNS",
		"database.conn_max_lifetime":  "DB_CONN_MAX_LIFETIME",
		"database.conn_max_idle_time": "DB_CONN_MAX_IDLE_TIME",
		"database.migrations_path":    "DB_MIGRATIONS_PATH",

		// JWT
		"jwt.secret":     "JWT_SECRET",
		"jwt.expires_in": "JWT_EXPIRES_IN",
		"jwt.issuer":     "JWT_ISSUER",

		// Logger
		"logger.level":    "LOG_LEVEL",
		"logger.format":   "LOG_FORMAT",
		"logger.output":   "LOG_OUTPUT",
		"logger.filename": "LOG_FILENAME",

		// Security
		"security.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
		"security.rate_limit_requests":  "RATE_LIMIT_REQUESTS",
		"security.rate_limit_window":    "RATE_LIMIT_WINDOW",

		// Metrics
		"metrics.enabled": "ENABLE_METRICS",

		// Client
		"client.base_url":         "CREWBOARD_API_URL",
		"client.timeout":          "CREWBOARD_TIMEOUT",
		"client.token_file":       "CREWBOARD_TOKEN_FILE",
		"client.notes_file":       "CREWBOARD_NOTES_FILE",
		"client.timezone":         "CREWBOARD_TIMEZONE",
		"client.breaker_failures": "CREWBOARD_BREAKER_FAILURES",
		"client.breaker_timeout":  "CREWBOARD_BREAKER_TIMEOUT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// ValidateServer checks the settings the API server cannot run without.
func (cfg *Config) ValidateServer() error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.JWT.Secret == "" || (cfg.JWT.Secret == defaultJWTSecret && cfg.App.IsProduction()) {
		return fmt.Errorf("JWT secret must be set and should not use default value")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	return nil
}

// ValidateClient checks the settings the dashboard client needs.
func (cfg *Config) ValidateClient() error {
	if cfg.Client.BaseURL == "" {
		return fmt.Errorf("client base URL is required")
	}
	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("client timeout must be positive")
	}
	if _, err := cfg.Client.Location(); err != nil {
		return err
	}
	return nil
}

// GetDSN returns the database connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// GetAddr returns the listen address
func (cfg *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Location returns the timezone calendar days are computed in.
func (cfg *ClientConfig) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid client timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}

// TokenFileName names the file holding the stored session token.
const TokenFileName = "amire_auth_token"

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".crewboard-token"
	}
	return filepath.Join(dir, "crewboard", TokenFileName)
}

func defaultNotesFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".crewboard-notes.yaml"
	}
	return filepath.Join(dir, "crewboard", "notes.yaml")
}
