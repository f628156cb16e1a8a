package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DSN", "postgres://x")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingDSN)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_DSN", "postgres://x")
	t.Setenv("JWT_TTL", "")
	t.Setenv("RESET_CODE_TTL", "30m")
	t.Setenv("EMAIL_TOKEN_TTL", "not-a-duration")
	t.Setenv("CORS_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("AUTH_RATE_PER_MIN", "0")
	t.Setenv("RATE_LIMIT_PER_MIN", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Minute, cfg.ResetCodeTTL)
	assert.Equal(t, 24*time.Hour, cfg.EmailTokenTTL)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.CORSOrigins)
	assert.Zero(t, cfg.AuthPerMinute)
	assert.Equal(t, 300, cfg.GlobalPerMinute)
}
