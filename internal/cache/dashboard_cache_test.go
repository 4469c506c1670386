package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/domain"
)

func TestMemoryDashboardCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryDashboardCache(func() time.Time { return now })
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, &domain.Dashboard{Totals: domain.Totals{Users: 3}}, time.Minute))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 3, got.Totals.Users)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryDashboardCache_Invalidate(t *testing.T) {
	c := NewMemoryDashboardCache(nil)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &domain.Dashboard{}, time.Hour))
	require.NoError(t, c.Invalidate(ctx))
	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
