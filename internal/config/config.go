package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	ErrWeakSecret    = errors.New("JWT_SECRET must be at least 16 bytes")
	ErrMissingDSN    = errors.New("DB_DSN is required")
)

const minSecretLen = 16

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string

	DB_DSN   string
	DBLogSQL bool

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	EmailTokenTTL time.Duration
	ResetCodeTTL  time.Duration

	// Per-IP budgets. AuthPerMinute covers login and account recovery routes;
	// GlobalPerMinute covers everything. Zero disables a limit.
	AuthPerMinute   int
	GlobalPerMinute int
}

// Load reads the environment (and an optional .env file). The signing secret has
// no fallback value.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("APP_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		DB_DSN:        os.Getenv("DB_DSN"),
		DBLogSQL:      getBool("DB_LOG_SQL", false),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "storefront"),
		JWTTTL:        getDuration("JWT_TTL", 7*24*time.Hour),
		EmailTokenTTL: getDuration("EMAIL_TOKEN_TTL", 24*time.Hour),
		ResetCodeTTL:  getDuration("RESET_CODE_TTL", time.Hour),

		AuthPerMinute:   getInt("AUTH_RATE_PER_MIN", 10),
		GlobalPerMinute: getInt("RATE_LIMIT_PER_MIN", 300),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if len(c.JWTSecret) < minSecretLen {
		return ErrWeakSecret
	}
	if c.DB_DSN == "" {
		return ErrMissingDSN
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
