package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Events   EventsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
	PublicBaseURL  string
}

type DatabaseConfig struct {
	Driver         string // postgres or sqlite
	DSN            string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	ConnectRetries int
	AutoMigrate    bool
}

type AuthConfig struct {
	JWTSecret    string
	JWTIssuer    string
	TokenTTL     time.Duration
	OIDCIssuer   string
	OIDCClientID string
}

// RedisConfig is optional; an empty Addr disables token revocation and the redis publisher.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

type EventsConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	Publisher       string // none, kafka or redis
}

type LogConfig struct {
	Dir   string
	Level string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", ":5000"),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "postgres"),
			DSN:            getEnv("DB_DSN", os.Getenv("POSTGRES_DSN")),
			MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:    time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
			AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTIssuer:    getEnv("JWT_ISSUER", ""),
			TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),
			OIDCIssuer:   os.Getenv("OIDC_ISSUER"),
			OIDCClientID: os.Getenv("OIDC_CLIENT_ID"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "eventify-events"),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvList("KAFKA_BROKERS", nil),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "eventify"),
		},
		Events: EventsConfig{
			DefaultPageSize: getEnvInt("EVENTS_PAGE_SIZE", 9),
			MaxPageSize:     getEnvInt("EVENTS_MAX_PAGE_SIZE", 100),
			Publisher:       strings.ToLower(getEnv("EVENT_PUBLISHER", "none")),
		},
		Log: LogConfig{
			Dir:   getEnv("LOG_DIR", "logs"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DB_DSN (or POSTGRES_DSN) not set"))
		}
	case "sqlite":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DB_DSN not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Auth.JWTSecret == "" && c.Auth.OIDCIssuer == "" {
		errs = append(errs, errors.New("either JWT_SECRET or OIDC_ISSUER must be set"))
	}

	switch c.Events.Publisher {
	case "none":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("EVENT_PUBLISHER=kafka requires KAFKA_BROKERS"))
		}
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("EVENT_PUBLISHER=redis requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported EVENT_PUBLISHER %q", c.Events.Publisher))
	}

	if c.Server.RequestTimeout <= 0 || c.Server.RequestTimeout >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive and below the %s write timeout", c.Server.WriteTimeout))
	}

	if c.Events.DefaultPageSize < 1 || c.Events.DefaultPageSize > c.Events.MaxPageSize {
		errs = append(errs, errors.New("EVENTS_PAGE_SIZE must be between 1 and EVENTS_MAX_PAGE_SIZE"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
