package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// VendorApplicationRepository persists vendor onboarding applications.
type VendorApplicationRepository interface {
	Create(ctx context.Context, app *domain.VendorApplication) error
	GetByID(ctx context.Context, id string) (*domain.VendorApplication, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.VendorApplication, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	UpdateReview(ctx context.Context, app *domain.VendorApplication) error
}

type vendorApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewVendorApplicationRepository instantiates the repository.
func NewVendorApplicationRepository(pool *pgxpool.Pool) VendorApplicationRepository {
	return &vendorApplicationRepository{pool: pool}
}

const applicationColumns = `id, user_id, organization_name, contact_person, email, phone, address,
        description, website, organization_images, identity_documents, status,
        reviewed_by, reviewed_at, rejection_reason, created_at`

func (r *vendorApplicationRepository) Create(ctx context.Context, app *domain.VendorApplication) error {
	const query = `
        INSERT INTO vendor_applications
            (id, user_id, organization_name, contact_person, email, phone, address, description, website,
             organization_images, identity_documents, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		app.ID,
		app.UserID,
		app.OrganizationName,
		app.ContactPerson,
		app.Email,
		app.Phone,
		app.Address,
		app.Description,
		app.Website,
		app.OrganizationImages,
		app.IdentityDocuments,
		app.Status,
	).Scan(&app.CreatedAt)
	return translate(err)
}

func (r *vendorApplicationRepository) GetByID(ctx context.Context, id string) (*domain.VendorApplication, error) {
	app, err := scanApplication(r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM vendor_applications WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return app, nil
}

func (r *vendorApplicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.VendorApplication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+applicationColumns+` FROM vendor_applications WHERE status=$1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VendorApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

func (r *vendorApplicationRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vendor_applications WHERE user_id=$1 AND status='Pending')`, userID,
	).Scan(&exists)
	return exists, err
}

func (r *vendorApplicationRepository) UpdateReview(ctx context.Context, app *domain.VendorApplication) error {
	const query = `
        UPDATE vendor_applications
        SET status=$1, reviewed_by=$2, reviewed_at=$3, rejection_reason=$4
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query, app.Status, app.ReviewedBy, app.ReviewedAt, app.RejectionReason, app.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*domain.VendorApplication, error) {
	var app domain.VendorApplication
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.OrganizationName,
		&app.ContactPerson,
		&app.Email,
		&app.Phone,
		&app.Address,
		&app.Description,
		&app.Website,
		&app.OrganizationImages,
		&app.IdentityDocuments,
		&app.Status,
		&app.ReviewedBy,
		&app.ReviewedAt,
		&app.RejectionReason,
		&app.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
