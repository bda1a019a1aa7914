package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("REDIS_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, int64(5), cfg.LoginGuard.MaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.LoginGuard.Window)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "0.5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseHelpers_FallBack(t *testing.T) {
	assert.Equal(t, 7, parseInt("x", 7))
	assert.Equal(t, 1.5, parseFloat("", 1.5))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Empty(t, parseSlice(""))
}
