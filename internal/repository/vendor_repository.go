package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// VendorRepository handles persistence for approved vendors.
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	Update(ctx context.Context, vendor *domain.Vendor) error
	UpdateStatus(ctx context.Context, id string, status domain.VendorStatus) error
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Vendor, error)
	List(ctx context.Context, filter VendorFilter) ([]domain.Vendor, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// VendorFilter defines query params for vendor listing.
type VendorFilter struct {
	Status     *domain.VendorStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

type vendorRepository struct {
	pool *pgxpool.Pool
}

// NewVendorRepository instantiates the repository.
func NewVendorRepository(pool *pgxpool.Pool) VendorRepository {
	return &vendorRepository{pool: pool}
}

const vendorColumns = `id, user_id, organization_name, contact_person, email, phone, address,
        description, website, status, created_at, updated_at`

func (r *vendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	const query = `
        INSERT INTO vendors (id, user_id, organization_name, contact_person, email, phone, address, description, website, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		vendor.ID,
		vendor.UserID,
		vendor.OrganizationName,
		vendor.ContactPerson,
		vendor.Email,
		vendor.Phone,
		vendor.Address,
		vendor.Description,
		vendor.Website,
		vendor.Status,
	).Scan(&vendor.CreatedAt, &vendor.UpdatedAt)
	return translate(err)
}

func (r *vendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	const query = `
        UPDATE vendors
        SET organization_name=$1, contact_person=$2, email=$3, phone=$4, address=$5, description=$6, website=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		vendor.OrganizationName,
		vendor.ContactPerson,
		vendor.Email,
		vendor.Phone,
		vendor.Address,
		vendor.Description,
		vendor.Website,
		vendor.ID,
	).Scan(&vendor.UpdatedAt)
	return translate(err)
}

func (r *vendorRepository) UpdateStatus(ctx context.Context, id string, status domain.VendorStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE vendors SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *vendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	vendor, err := scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return vendor, nil
}

func (r *vendorRepository) GetByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	vendor, err := scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE user_id=$1`, userID))
	if err != nil {
		return nil, translate(err)
	}
	return vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, filter VendorFilter) ([]domain.Vendor, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(organization_name) LIKE $%d", len(args)))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM vendors WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		vendorColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *vendor)
	}
	return result, rows.Err()
}

func (r *vendorRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE user_id=$1`, userID)
	return err
}

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := row.Scan(
		&vendor.ID,
		&vendor.UserID,
		&vendor.OrganizationName,
		&vendor.ContactPerson,
		&vendor.Email,
		&vendor.Phone,
		&vendor.Address,
		&vendor.Description,
		&vendor.Website,
		&vendor.Status,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &vendor, nil
}
