package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// AdoptionFilter narrows request listings.
type AdoptionFilter struct {
	ApplicantID *string
	VendorID    *string
	PetID       *string
	Statuses    []domain.AdoptionStatus
	Limit       int
	Offset      int
}

// AdoptionRepository persists adoption requests and owns the approval
// transaction that couples a request with its pet's status.
type AdoptionRepository interface {
	Create(ctx context.Context, req *domain.AdoptionRequest) error
	GetByAdoptionID(ctx context.Context, adoptionID string) (*domain.AdoptionRequest, error)
	List(ctx context.Context, filter AdoptionFilter) ([]domain.AdoptionRequest, error)
	ListApproved(ctx context.Context) ([]domain.AdoptionRequest, error)

	// Approve moves a Pending request to Approved and its pet to Adopted in
	// one unit. A request already terminal is returned unchanged. When the
	// pet is already Adopted the call fails with ErrPetUnavailable.
	Approve(ctx context.Context, adoptionID string) (domain.TransitionOutcome, error)
	// Reject moves a Pending request to Rejected. Terminal requests are
	// returned unchanged.
	Reject(ctx context.Context, adoptionID string) (domain.TransitionOutcome, error)
	RejectPendingForPet(ctx context.Context, petID string) ([]domain.AdoptionRequest, error)
}

type adoptionRepository struct {
	pool *pgxpool.Pool
}

// NewAdoptionRepository returns a Postgres-backed implementation.
func NewAdoptionRepository(pool *pgxpool.Pool) AdoptionRepository {
	return &adoptionRepository{pool: pool}
}

const adoptionColumns = `id, adoption_id, applicant_id, pet_id, vendor_id, full_name, email, phone, address,
        pet_name, reason_for_adoption, status, created_at, updated_at`

func (r *adoptionRepository) Create(ctx context.Context, req *domain.AdoptionRequest) error {
	const query = `
        INSERT INTO adoption_requests
            (id, adoption_id, applicant_id, pet_id, vendor_id, full_name, email, phone, address, pet_name, reason_for_adoption, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		req.ID,
		req.AdoptionID,
		req.ApplicantID,
		req.PetID,
		req.VendorID,
		req.Snapshot.FullName,
		req.Snapshot.Email,
		req.Snapshot.Phone,
		req.Snapshot.Address,
		req.Snapshot.PetName,
		req.ReasonForAdoption,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	return translate(err)
}

func (r *adoptionRepository) GetByAdoptionID(ctx context.Context, adoptionID string) (*domain.AdoptionRequest, error) {
	req, err := scanAdoption(r.pool.QueryRow(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE adoption_id=$1`, adoptionID))
	if err != nil {
		return nil, translate(err)
	}
	return req, nil
}

func (r *adoptionRepository) List(ctx context.Context, filter AdoptionFilter) ([]domain.AdoptionRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		clauses = append(clauses, fmt.Sprintf("applicant_id=$%d", len(args)))
	}
	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		clauses = append(clauses, fmt.Sprintf("vendor_id=$%d", len(args)))
	}
	if filter.PetID != nil {
		args = append(args, *filter.PetID)
		clauses = append(clauses, fmt.Sprintf("pet_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM adoption_requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		adoptionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdoptions(rows)
}

func (r *adoptionRepository) ListApproved(ctx context.Context) ([]domain.AdoptionRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE status='Approved' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdoptions(rows)
}

func (r *adoptionRepository) Approve(ctx context.Context, adoptionID string) (domain.TransitionOutcome, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.TransitionOutcome{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	req, err := scanAdoption(tx.QueryRow(ctx,
		`SELECT `+adoptionColumns+` FROM adoption_requests WHERE adoption_id=$1 FOR UPDATE`, adoptionID))
	if err != nil {
		return domain.TransitionOutcome{}, translate(err)
	}
	if !req.CanTransition(domain.AdoptionStatusApproved) {
		return domain.TransitionOutcome{Request: req}, nil
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE pets SET status='Adopted', updated_at=NOW() WHERE id=$1 AND status <> 'Adopted'`, req.PetID)
	if err != nil {
		return domain.TransitionOutcome{}, err
	}
	if cmd.RowsAffected() == 0 {
		return domain.TransitionOutcome{}, ErrPetUnavailable
	}

	err = tx.QueryRow(ctx,
		`UPDATE adoption_requests SET status='Approved', updated_at=NOW() WHERE id=$1 RETURNING status, updated_at`, req.ID,
	).Scan(&req.Status, &req.UpdatedAt)
	if err != nil {
		if errors.Is(translate(err), ErrDuplicate) {
			return domain.TransitionOutcome{}, ErrPetUnavailable
		}
		return domain.TransitionOutcome{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TransitionOutcome{}, err
	}
	return domain.TransitionOutcome{Request: req, Changed: true}, nil
}

func (r *adoptionRepository) Reject(ctx context.Context, adoptionID string) (domain.TransitionOutcome, error) {
	req, err := scanAdoption(r.pool.QueryRow(ctx,
		`UPDATE adoption_requests SET status='Rejected', updated_at=NOW()
         WHERE adoption_id=$1 AND status='Pending'
         RETURNING `+adoptionColumns, adoptionID))
	if err == nil {
		return domain.TransitionOutcome{Request: req, Changed: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.TransitionOutcome{}, err
	}

	existing, err := r.GetByAdoptionID(ctx, adoptionID)
	if err != nil {
		return domain.TransitionOutcome{}, err
	}
	return domain.TransitionOutcome{Request: existing}, nil
}

func (r *adoptionRepository) RejectPendingForPet(ctx context.Context, petID string) ([]domain.AdoptionRequest, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE adoption_requests SET status='Rejected', updated_at=NOW()
         WHERE pet_id=$1 AND status='Pending'
         RETURNING `+adoptionColumns, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdoptions(rows)
}

func scanAdoption(row pgx.Row) (*domain.AdoptionRequest, error) {
	var req domain.AdoptionRequest
	if err := row.Scan(
		&req.ID,
		&req.AdoptionID,
		&req.ApplicantID,
		&req.PetID,
		&req.VendorID,
		&req.Snapshot.FullName,
		&req.Snapshot.Email,
		&req.Snapshot.Phone,
		&req.Snapshot.Address,
		&req.Snapshot.PetName,
		&req.ReasonForAdoption,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func scanAdoptions(rows pgx.Rows) ([]domain.AdoptionRequest, error) {
	result := []domain.AdoptionRequest{}
	for rows.Next() {
		req, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}
