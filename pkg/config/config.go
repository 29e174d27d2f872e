package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by NewDB
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port            string
		Env             string
		Version         string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	// Database configuration
	Database struct {
		Driver     string
		Path       string
		DSN        string
		MaxConns   int
		Retries    int
		RetryDelay time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		TrustedProxies []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Change events fan-out
	Events struct {
		RedisURL string
		Channel  string
	}

	// Observability configuration
	Observability struct {
		ServiceName    string
		MetricsEnabled bool
		TracingEnabled bool
	}

	// Health and probing
	Health struct {
		CheckPeriod time.Duration
		GRPCPort    string
	}

	// OpenAPI request validation
	OpenAPI struct {
		SchemaPath string
	}

	// Vault holds secrets such as the postgres DSN; empty Address disables it
	Vault struct {
		Address     string
		Token       string
		Namespace   string
		Mount       string
		SecretsPath string
	}
}

// Load reads the .env file (if any) and the environment into a new Config
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// Server config
	cfg.Server.Port = getEnvString("PORT", "8081")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Version = getEnvString("APP_VERSION", "dev")
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	cfg.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)

	// Database config
	cfg.Database.Driver = strings.ToLower(getEnvString("DB_DRIVER", DriverSQLite))
	cfg.Database.Path = getEnvString("DB_PATH", "./data/icebreakun.db")
	cfg.Database.DSN = getEnvString("DATABASE_DSN", "")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.Retries = getEnvInt("DB_CONNECT_RETRIES", 5)
	cfg.Database.RetryDelay = getEnvDuration("DB_RETRY_DELAY", 2*time.Second)

	// Security config
	cfg.Security.RateLimit = getEnvFloat("RATE_LIMIT", 20)
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 40)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
	cfg.Security.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", nil)
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Events config
	cfg.Events.RedisURL = getEnvString("REDIS_URL", "")
	cfg.Events.Channel = getEnvString("EVENTS_CHANNEL", "icebreakun:events")

	// Observability config
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "icebreakun-api")
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)

	// Health config
	cfg.Health.CheckPeriod = getEnvDuration("HEALTH_CHECK_PERIOD", 30*time.Second)
	cfg.Health.GRPCPort = getEnvString("GRPC_HEALTH_PORT", "")

	cfg.OpenAPI.SchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")

	// Vault config
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Namespace = getEnvString("VAULT_NAMESPACE", "")
	cfg.Vault.Mount = getEnvString("VAULT_MOUNT", "secret")
	cfg.Vault.SecretsPath = getEnvString("VAULT_SECRETS_PATH", "icebreakun")

	return cfg
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
