package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/cache"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var analyticsEntities = []domain.AnalyticsEntity{domain.EntityUsers, domain.EntityPets, domain.EntityRequests}

// AnalyticsService builds the read-only admin dashboard.
type AnalyticsService struct {
	repo   repository.AnalyticsRepository
	cache  cache.DashboardCache
	cfg    config.AnalyticsConfig
	logger *zap.Logger
	clock  Clock
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	AnalyticsRepo repository.AnalyticsRepository
	Cache         cache.DashboardCache
	Logger        *zap.Logger
	Clock         Clock
}

// NewAnalyticsService constructs the service. A nil cache disables caching.
func NewAnalyticsService(cfg config.AnalyticsConfig, deps AnalyticsDependencies) *AnalyticsService {
	if cfg.DailyWindowDays <= 0 {
		cfg.DailyWindowDays = 7
	}
	if cfg.MonthlyWindow <= 0 {
		cfg.MonthlyWindow = 6
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	return &AnalyticsService{
		repo:   deps.AnalyticsRepo,
		cache:  deps.Cache,
		cfg:    cfg,
		logger: nopLogger(deps.Logger),
		clock:  deps.Clock,
	}
}

// Dashboard returns the cached dashboard when fresh, otherwise computes and
// caches it. Cache failures are logged and fall through to the store.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	ttl := s.cfg.CacheTTL()
	if s.cache != nil && ttl > 0 {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	dashboard, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && ttl > 0 {
		if err := s.cache.Set(ctx, dashboard, ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return dashboard, nil
}

// Invalidate drops the cached dashboard so the next read recomputes it.
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func (s *AnalyticsService) compute(ctx context.Context) (*domain.Dashboard, error) {
	now := s.clock.now()
	today := startOfDay(now)
	dailyFrom := today.AddDate(0, 0, -(s.cfg.DailyWindowDays - 1))
	monthlyFrom := startOfMonth(now).AddDate(0, -(s.cfg.MonthlyWindow - 1), 0)

	d := &domain.Dashboard{
		Today:       map[domain.AnalyticsEntity]int64{},
		Daily:       map[domain.AnalyticsEntity][]domain.TimeBucket{},
		Monthly:     map[domain.AnalyticsEntity][]domain.TimeBucket{},
		GeneratedAt: now,
	}

	var err error
	if d.Totals, err = s.repo.Totals(ctx); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	if d.PetsBySpecies, err = s.repo.PetsBySpecies(ctx); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	if d.PetsByStatus, err = s.repo.PetsByStatus(ctx); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	if d.RequestsByStatus, err = s.repo.RequestsByStatus(ctx); err != nil {
		return nil, storeError(err, "analytics", nil)
	}

	for _, entity := range analyticsEntities {
		count, err := s.repo.CountSince(ctx, entity, today)
		if err != nil {
			return nil, storeError(err, "analytics", nil)
		}
		d.Today[entity] = count

		daily, err := s.repo.Histogram(ctx, entity, repository.GranularityDay, dailyFrom)
		if err != nil {
			return nil, storeError(err, "analytics", nil)
		}
		d.Daily[entity] = fillBuckets(daily, dailyFrom, s.cfg.DailyWindowDays, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) })

		monthly, err := s.repo.Histogram(ctx, entity, repository.GranularityMonth, monthlyFrom)
		if err != nil {
			return nil, storeError(err, "analytics", nil)
		}
		d.Monthly[entity] = fillBuckets(monthly, monthlyFrom, s.cfg.MonthlyWindow, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) })
	}

	if d.RecentUsers, err = s.repo.RecentUsers(ctx, s.cfg.RecentLimit); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	if d.RecentPets, err = s.repo.RecentPets(ctx, s.cfg.RecentLimit); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	if d.RecentRequests, err = s.repo.RecentRequests(ctx, s.cfg.RecentLimit); err != nil {
		return nil, storeError(err, "analytics", nil)
	}
	return d, nil
}

// fillBuckets returns n consecutive buckets starting at from, using the
// counts from sparse and zero elsewhere.
func fillBuckets(sparse []domain.TimeBucket, from time.Time, n int, next func(time.Time) time.Time) []domain.TimeBucket {
	counts := make(map[time.Time]int64, len(sparse))
	for _, b := range sparse {
		counts[b.Start.UTC()] = b.Count
	}
	out := make([]domain.TimeBucket, 0, n)
	for start, i := from, 0; i < n; start, i = next(start), i+1 {
		out = append(out, domain.TimeBucket{Start: start, Count: counts[start]})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
