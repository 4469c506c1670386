package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/service"
)

func TestBuild_FallsBackToMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Config{
		Auth:         config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Notification: config.NotificationConfig{Workers: 1, QueueSize: 4},
		Scheduler:    config.SchedulerConfig{UnbanSweepIntervalSeconds: 60},
	}
	c, err := Build(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c.Postgres.PoolHandle())
	assert.Nil(t, c.Redis)

	_, err = c.Migrate(ctx)
	assert.Error(t, err)

	c.StartWorkers(ctx)
	result, err := c.Services.Auth.Register(ctx, service.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	dashboard, err := c.Services.Analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dashboard.Totals.Users)

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	c.Shutdown(shutdownCtx)
}
