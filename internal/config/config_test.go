package config

import (
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("UNBAN_SWEEP_INTERVAL_SECONDS", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, time.Minute, cfg.Scheduler.UnbanSweepInterval())
	assert.Equal(t, "adoption.email", cfg.Notification.EmailQueue)
	assert.Equal(t, 7, cfg.Analytics.DailyWindowDays)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, cfg.App.Name, cfg.Logger.Service)
	assert.Equal(t, "json", cfg.Logger.Encoding)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("UNBAN_SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("ANALYTICS_CACHE_TTL_SECONDS", "0")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 5*time.Second, cfg.Scheduler.UnbanSweepInterval())
	assert.Zero(t, cfg.Analytics.CacheTTL())
	assert.Equal(t, 4, cfg.Notification.Workers)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	require.Error(t, err)
}

func TestNewCircuitBreaker_TripsAfterThreeFailures(t *testing.T) {
	cb := NewCircuitBreaker("WhatsApp-Relay", nil)
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, assert.AnError })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
