package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the service.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Audit    AuditConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig describes the identity provider the service trusts.
type AuthConfig struct {
	Domain              string
	Issuer              string
	Audience            string
	JWKSURL             string
	PublicKeyPEMPath    string
	PublicKeyID         string
	JWKSCacheTTLSeconds int
	JWKSMaxStaleSeconds int
	ClockSkewSeconds    int
}

// AuditConfig controls where change events are published.
type AuditConfig struct {
	EventsChannel         string
	QueueSize             int
	PublishTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	domain := strings.TrimSpace(os.Getenv("AUTH0_DOMAIN"))
	issuer := os.Getenv("AUTH_ISSUER")
	jwksURL := os.Getenv("AUTH_JWKS_URL")
	if domain != "" {
		if issuer == "" {
			issuer = "https://" + domain + "/"
		}
		if jwksURL == "" {
			jwksURL = "https://" + domain + "/.well-known/jwks.json"
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "casting-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "casting.db"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Domain:              domain,
			Issuer:              issuer,
			Audience:            getEnv("AUTH_AUDIENCE", "casting"),
			JWKSURL:             jwksURL,
			PublicKeyPEMPath:    os.Getenv("AUTH_PUBLIC_KEY_PEM_PATH"),
			PublicKeyID:         getEnv("AUTH_PUBLIC_KEY_ID", "dev"),
			JWKSCacheTTLSeconds: getEnvAsInt("AUTH_JWKS_CACHE_TTL_SECONDS", 600),
			JWKSMaxStaleSeconds: getEnvAsInt("AUTH_JWKS_MAX_STALE_SECONDS", 1800),
			ClockSkewSeconds:    getEnvAsInt("AUTH_CLOCK_SKEW_SECONDS", 0),
		},
		Audit: AuditConfig{
			EventsChannel:         getEnv("AUDIT_EVENTS_CHANNEL", "casting:events"),
			QueueSize:             getEnvAsInt("AUDIT_QUEUE_SIZE", 256),
			PublishTimeoutSeconds: getEnvAsInt("AUDIT_PUBLISH_TIMEOUT_SECONDS", 2),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres storage driver")
		}
	case StorageDriverSQLite, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Auth.JWKSURL == "" && c.Auth.PublicKeyPEMPath == "" {
		return errors.New("one of AUTH0_DOMAIN, AUTH_JWKS_URL or AUTH_PUBLIC_KEY_PEM_PATH is required")
	}
	if c.Auth.Issuer == "" {
		return errors.New("AUTH_ISSUER is required when AUTH0_DOMAIN is not set")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// JWKSCacheTTL returns how long fetched keys are considered fresh.
func (a AuthConfig) JWKSCacheTTL() time.Duration {
	return secondsOr(a.JWKSCacheTTLSeconds, 10*time.Minute)
}

// JWKSMaxStale returns how long expired keys may still be served while refreshing.
func (a AuthConfig) JWKSMaxStale() time.Duration {
	return secondsOr(a.JWKSMaxStaleSeconds, 30*time.Minute)
}

// ClockSkew returns the leeway applied to time based claims.
func (a AuthConfig) ClockSkew() time.Duration {
	if a.ClockSkewSeconds <= 0 {
		return 0
	}
	return time.Duration(a.ClockSkewSeconds) * time.Second
}

// PublishTimeout bounds one forward of an audit event.
func (a AuditConfig) PublishTimeout() time.Duration {
	return secondsOr(a.PublishTimeoutSeconds, 2*time.Second)
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
