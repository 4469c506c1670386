package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/cache"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/domain"
)

func TestDashboard_CountsAndZeroFilledBuckets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.submit(t, "A1")

	d, err := h.analytics.Dashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, d.Totals.Users)
	assert.EqualValues(t, 1, d.Totals.Vendors)
	assert.EqualValues(t, 1, d.Totals.Pets)
	assert.EqualValues(t, 1, d.Totals.AdoptionRequests)
	assert.EqualValues(t, 3, d.Today[domain.EntityUsers])

	daily := d.Daily[domain.EntityUsers]
	require.Len(t, daily, 3)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), daily[0].Start)
	assert.Zero(t, daily[0].Count)
	assert.EqualValues(t, 3, daily[2].Count)

	monthly := d.Monthly[domain.EntityRequests]
	require.Len(t, monthly, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), monthly[0].Start)
	assert.EqualValues(t, 1, monthly[1].Count)

	assert.Len(t, d.RecentUsers, 2)
	assert.Len(t, d.RecentRequests, 1)
}

func TestDashboard_ServesFromCacheUntilInvalidated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewAnalyticsService(config.AnalyticsConfig{CacheTTLSeconds: 60},
		AnalyticsDependencies{
			AnalyticsRepo: h.store.Analytics(),
			Cache:         cache.NewMemoryDashboardCache(h.clock.Now),
			Clock:         h.clock.Now,
		})

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	h.addUser(t, "late")

	cached, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Totals.Users, cached.Totals.Users)

	require.NoError(t, svc.Invalidate(ctx))
	fresh, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Totals.Users+1, fresh.Totals.Users)
}
