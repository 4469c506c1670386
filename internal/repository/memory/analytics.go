package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var _ repository.AnalyticsRepository = (*analyticsRepo)(nil)

type analyticsRepo struct {
	s *Store
}

func (r *analyticsRepo) Totals(_ context.Context) (domain.Totals, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := domain.Totals{
		Users:            int64(len(s.users)),
		Vendors:          int64(len(s.vendors)),
		Pets:             int64(len(s.pets)),
		AdoptionRequests: int64(len(s.requests)),
	}
	for _, app := range s.applications {
		if app.Status == domain.ApplicationStatusPending {
			totals.PendingApplications++
		}
	}
	return totals, nil
}

func (r *analyticsRepo) PetsBySpecies(_ context.Context) ([]domain.Bucket, error) {
	s := r.s
	s.mu.RLock()
	counts := map[string]int64{}
	for _, pet := range s.pets {
		counts[pet.Species]++
	}
	s.mu.RUnlock()

	buckets := toBuckets(counts)
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets, nil
}

func (r *analyticsRepo) PetsByStatus(_ context.Context) ([]domain.Bucket, error) {
	s := r.s
	s.mu.RLock()
	counts := map[string]int64{}
	for _, pet := range s.pets {
		counts[string(pet.Status)]++
	}
	s.mu.RUnlock()
	return toBuckets(counts), nil
}

func (r *analyticsRepo) RequestsByStatus(_ context.Context) ([]domain.Bucket, error) {
	s := r.s
	s.mu.RLock()
	counts := map[string]int64{}
	for _, req := range s.requests {
		counts[string(req.Status)]++
	}
	s.mu.RUnlock()
	return toBuckets(counts), nil
}

func (r *analyticsRepo) CountSince(_ context.Context, entity domain.AnalyticsEntity, since time.Time) (int64, error) {
	stamps, err := r.s.createdAt(entity)
	if err != nil {
		return 0, err
	}
	var count int64
	for _, ts := range stamps {
		if !ts.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *analyticsRepo) Histogram(_ context.Context, entity domain.AnalyticsEntity, unit repository.Granularity, since time.Time) ([]domain.TimeBucket, error) {
	stamps, err := r.s.createdAt(entity)
	if err != nil {
		return nil, err
	}
	counts := map[time.Time]int64{}
	for _, ts := range stamps {
		if ts.Before(since) {
			continue
		}
		ts = ts.UTC()
		var start time.Time
		switch unit {
		case repository.GranularityDay:
			start = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		case repository.GranularityMonth:
			start = time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
		default:
			return nil, fmt.Errorf("unknown granularity %q", unit)
		}
		counts[start]++
	}

	result := make([]domain.TimeBucket, 0, len(counts))
	for start, count := range counts {
		result = append(result, domain.TimeBucket{Start: start, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (r *analyticsRepo) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	return r.s.Users().List(ctx, repository.UserFilter{Limit: limit})
}

func (r *analyticsRepo) RecentPets(ctx context.Context, limit int) ([]domain.Pet, error) {
	return r.s.Pets().List(ctx, repository.PetFilter{Limit: limit})
}

func (r *analyticsRepo) RecentRequests(ctx context.Context, limit int) ([]domain.AdoptionRequest, error) {
	return r.s.Adoptions().List(ctx, repository.AdoptionFilter{Limit: limit})
}

func (s *Store) createdAt(entity domain.AnalyticsEntity) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stamps []time.Time
	switch entity {
	case domain.EntityUsers:
		for _, u := range s.users {
			stamps = append(stamps, u.CreatedAt)
		}
	case domain.EntityPets:
		for _, p := range s.pets {
			stamps = append(stamps, p.CreatedAt)
		}
	case domain.EntityRequests:
		for _, req := range s.requests {
			stamps = append(stamps, req.CreatedAt)
		}
	default:
		return nil, fmt.Errorf("unknown analytics entity %q", entity)
	}
	return stamps, nil
}

func toBuckets(counts map[string]int64) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, domain.Bucket{Key: key, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}
