package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// PetFilter defines catalog browse parameters.
type PetFilter struct {
	VendorID   *string
	Species    *string
	Status     *domain.PetStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// PetRepository persists pet listings.
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) error
	Update(ctx context.Context, pet *domain.Pet) error
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
	List(ctx context.Context, filter PetFilter) ([]domain.Pet, error)
	// Delete removes the pet together with its adoption requests and set
	// memberships.
	Delete(ctx context.Context, id string) error
}

type petRepository struct {
	pool *pgxpool.Pool
}

// NewPetRepository instantiates the repository.
func NewPetRepository(pool *pgxpool.Pool) PetRepository {
	return &petRepository{pool: pool}
}

const petColumns = `id, vendor_id, name, species, breed, age_months, gender, size, description,
        image_urls, status, created_at, updated_at`

func prefixedPetColumns(alias string) string {
	cols := strings.Split(petColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

func (r *petRepository) Create(ctx context.Context, pet *domain.Pet) error {
	const query = `
        INSERT INTO pets (id, vendor_id, name, species, breed, age_months, gender, size, description, image_urls, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		pet.ID,
		pet.VendorID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.AgeMonths,
		pet.Gender,
		pet.Size,
		pet.Description,
		nonNilStrings(pet.ImageURLs),
		pet.Status,
	).Scan(&pet.CreatedAt, &pet.UpdatedAt)
	return translate(err)
}

// Update writes the editable profile fields. Status belongs to the adoption
// lifecycle and is left alone.
func (r *petRepository) Update(ctx context.Context, pet *domain.Pet) error {
	const query = `
        UPDATE pets
        SET name=$1, species=$2, breed=$3, age_months=$4, gender=$5, size=$6, description=$7, image_urls=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING status, updated_at`

	err := r.pool.QueryRow(ctx, query,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.AgeMonths,
		pet.Gender,
		pet.Size,
		pet.Description,
		nonNilStrings(pet.ImageURLs),
		pet.ID,
	).Scan(&pet.Status, &pet.UpdatedAt)
	return translate(err)
}

func (r *petRepository) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	pet, err := scanPet(r.pool.QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return pet, nil
}

func (r *petRepository) List(ctx context.Context, filter PetFilter) ([]domain.Pet, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		clauses = append(clauses, fmt.Sprintf("vendor_id=$%d", len(args)))
	}
	if filter.Species != nil && *filter.Species != "" {
		args = append(args, strings.ToLower(*filter.Species))
		clauses = append(clauses, fmt.Sprintf("LOWER(species)=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(breed) LIKE %s OR LOWER(description) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM pets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		petColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPets(rows)
}

func (r *petRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM pets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPet(row pgx.Row) (*domain.Pet, error) {
	var pet domain.Pet
	if err := row.Scan(
		&pet.ID,
		&pet.VendorID,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&pet.AgeMonths,
		&pet.Gender,
		&pet.Size,
		&pet.Description,
		&pet.ImageURLs,
		&pet.Status,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pet, nil
}

func scanPets(rows pgx.Rows) ([]domain.Pet, error) {
	result := []domain.Pet{}
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *pet)
	}
	return result, rows.Err()
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
