//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/spec-kit/adoption-service/internal/domain"
)

func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	return client, func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
}

func TestRedisDashboardCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := NewRedisDashboardCache(client)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	dashboard := &domain.Dashboard{
		Totals:        domain.Totals{Pets: 4},
		PetsBySpecies: []domain.Bucket{{Key: "dog", Count: 4}},
		Today:         map[domain.AnalyticsEntity]int64{domain.EntityPets: 1},
	}
	require.NoError(t, c.Set(ctx, dashboard, time.Minute))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 4, got.Totals.Pets)
	assert.EqualValues(t, 1, got.Today[domain.EntityPets])

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
