package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// Granularity selects the width of a time bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// AnalyticsRepository answers the read-only aggregate queries behind the admin
// dashboard.
type AnalyticsRepository interface {
	Totals(ctx context.Context) (domain.Totals, error)
	PetsBySpecies(ctx context.Context) ([]domain.Bucket, error)
	PetsByStatus(ctx context.Context) ([]domain.Bucket, error)
	RequestsByStatus(ctx context.Context) ([]domain.Bucket, error)
	CountSince(ctx context.Context, entity domain.AnalyticsEntity, since time.Time) (int64, error)
	// Histogram returns the non-empty buckets at or after since, oldest first.
	Histogram(ctx context.Context, entity domain.AnalyticsEntity, unit Granularity, since time.Time) ([]domain.TimeBucket, error)
	RecentUsers(ctx context.Context, limit int) ([]domain.User, error)
	RecentPets(ctx context.Context, limit int) ([]domain.Pet, error)
	RecentRequests(ctx context.Context, limit int) ([]domain.AdoptionRequest, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) Totals(ctx context.Context) (domain.Totals, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM vendors),
            (SELECT COUNT(*) FROM pets),
            (SELECT COUNT(*) FROM adoption_requests),
            (SELECT COUNT(*) FROM vendor_applications WHERE status='Pending')`

	var totals domain.Totals
	err := r.pool.QueryRow(ctx, query).Scan(
		&totals.Users,
		&totals.Vendors,
		&totals.Pets,
		&totals.AdoptionRequests,
		&totals.PendingApplications,
	)
	return totals, err
}

func (r *analyticsRepository) PetsBySpecies(ctx context.Context) ([]domain.Bucket, error) {
	return r.groupBy(ctx, `SELECT species, COUNT(*) FROM pets GROUP BY species ORDER BY COUNT(*) DESC, species`)
}

func (r *analyticsRepository) PetsByStatus(ctx context.Context) ([]domain.Bucket, error) {
	return r.groupBy(ctx, `SELECT status, COUNT(*) FROM pets GROUP BY status ORDER BY status`)
}

func (r *analyticsRepository) RequestsByStatus(ctx context.Context) ([]domain.Bucket, error) {
	return r.groupBy(ctx, `SELECT status, COUNT(*) FROM adoption_requests GROUP BY status ORDER BY status`)
}

func (r *analyticsRepository) CountSince(ctx context.Context, entity domain.AnalyticsEntity, since time.Time) (int64, error) {
	table, err := entityTable(entity)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE created_at >= $1`, table), since).Scan(&count)
	return count, err
}

func (r *analyticsRepository) Histogram(ctx context.Context, entity domain.AnalyticsEntity, unit Granularity, since time.Time) ([]domain.TimeBucket, error) {
	table, err := entityTable(entity)
	if err != nil {
		return nil, err
	}
	if unit != GranularityDay && unit != GranularityMonth {
		return nil, fmt.Errorf("unknown granularity %q", unit)
	}

	query := fmt.Sprintf(`
        SELECT date_trunc('%s', created_at AT TIME ZONE 'UTC') AS bucket, COUNT(*)
        FROM %s WHERE created_at >= $1
        GROUP BY bucket ORDER BY bucket`, unit, table)

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeBucket
	for rows.Next() {
		var bucket domain.TimeBucket
		if err := rows.Scan(&bucket.Start, &bucket.Count); err != nil {
			return nil, err
		}
		bucket.Start = time.Date(bucket.Start.Year(), bucket.Start.Month(), bucket.Start.Day(), 0, 0, 0, 0, time.UTC)
		result = append(result, bucket)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *analyticsRepository) RecentPets(ctx context.Context, limit int) ([]domain.Pet, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+petColumns+` FROM pets ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPets(rows)
}

func (r *analyticsRepository) RecentRequests(ctx context.Context, limit int) ([]domain.AdoptionRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdoptions(rows)
}

func (r *analyticsRepository) groupBy(ctx context.Context, query string) ([]domain.Bucket, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Bucket{}
	for rows.Next() {
		var bucket domain.Bucket
		if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
			return nil, err
		}
		result = append(result, bucket)
	}
	return result, rows.Err()
}

func entityTable(entity domain.AnalyticsEntity) (string, error) {
	switch entity {
	case domain.EntityUsers, domain.EntityPets, domain.EntityRequests:
		return string(entity), nil
	}
	return "", fmt.Errorf("unknown analytics entity %q", entity)
}
