// Package config builds process configuration from the environment so main
// stays lean. Every knob has a development default; production overrides via
// env vars.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "campus/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	BaseDomain    string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	AdminToken    string
	PostgresDSN   string
	CacheTTL      time.Duration
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// RedisConfig captures cache connection settings. An empty URL disables the
// cache entirely; reads then always hit the store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures notification publisher settings. No brokers means
// notifications are dropped (logged only).
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          envOr("CAMPUS_ADDR", ":8080"),
		BaseDomain:    os.Getenv("CAMPUS_BASE_DOMAIN"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "campus"),
		JWTAudience:   envOr("JWT_AUDIENCE", "campus"),
		AdminToken:    os.Getenv("CAMPUS_ADMIN_TOKEN"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		CacheTTL:      envDurationOr("CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envOr("KAFKA_NOTIFICATIONS_TOPIC", "campus.notifications"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platformstrings.NormalizeList(strings.Split(v, ","))
}
