package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockout)
	assert.Equal(t, "@every 10m", cfg.ReconcileSchedule)
	assert.Equal(t, 30*time.Second, cfg.RateLimitRequest)
	assert.Equal(t, 2*time.Second, cfg.RateLimitPledge)
	assert.True(t, cfg.Log.Dev)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("RATE_LIMIT_PLEDGE", "500ms")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimitPledge)
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUEST", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid RATE_LIMIT_REQUEST")

	t.Setenv("RATE_LIMIT_REQUEST", "45s")
	t.Setenv("LOGIN_LOCKOUT", "later")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid LOGIN_LOCKOUT")
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_TTL_MINUTES", "zero")

	_, err := Load()
	assert.Error(t, err)
}
