package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	SeedDemoUsers bool
	BcryptCost    int

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	AuthRateLimit  int
	AuthRateWindow time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisAttempts int

	OTelEndpoint    string
	OTelServiceName string

	UsersCacheTTL time.Duration
}

// Load reads the process environment, after merging an optional .env file.
func Load() Config {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:  env,
		Port: getEnvInt("PORT", 8080),

		SeedDemoUsers: getEnvBool("SEED_DEMO_USERS", env == "dev"),
		BcryptCost:    getEnvInt("BCRYPT_COST", 0),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4200"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisAttempts: getEnvInt("REDIS_CONNECT_ATTEMPTS", 5),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "userhub"),

		UsersCacheTTL: time.Duration(getEnvInt("USERS_CACHE_TTL_SECONDS", 5)) * time.Second,
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
