package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// UserFilter captures admin listing parameters.
type UserFilter struct {
	Role       *domain.Role
	BannedOnly bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// UserRepository defines persistence access for accounts and their pet sets.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Delete(ctx context.Context, id string) error

	SetBan(ctx context.Context, id string, ban domain.BanState) error
	ClearBan(ctx context.Context, id string) error
	// ClearBanIfDue lifts the ban only while it is still due at now, so a
	// re-ban with a later schedule survives a concurrent sweep.
	ClearBanIfDue(ctx context.Context, id string, now time.Time) (bool, error)
	ListDueUnbans(ctx context.Context, now time.Time) ([]domain.User, error)

	AddAdoptedPet(ctx context.Context, userID, petID string) (bool, error)
	RemoveAdoptedPet(ctx context.Context, userID, petID string) error
	ListAdoptedPets(ctx context.Context, userID string) ([]domain.Pet, error)
	ListAdoptedPairs(ctx context.Context) ([]domain.AdoptedPair, error)

	ToggleFavorite(ctx context.Context, userID, petID string) (bool, error)
	ListFavoritePets(ctx context.Context, userID string) ([]domain.Pet, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, phone, address, avatar_url,
        is_banned, banned_by, ban_reason, banned_at, scheduled_unban_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, password_hash, role, phone, address, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.Address,
		user.AvatarURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, phone=$4, address=$5, avatar_url=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Address,
		user.AvatarURL,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.execOne(ctx, `UPDATE users SET role=$1, updated_at=NOW() WHERE id=$2`, role, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.BannedOnly {
		clauses = append(clauses, "is_banned")
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id=$1`, id)
}

func (r *userRepository) SetBan(ctx context.Context, id string, ban domain.BanState) error {
	const query = `
        UPDATE users SET is_banned=TRUE, banned_by=$1, ban_reason=$2, banned_at=$3, scheduled_unban_at=$4, updated_at=NOW()
        WHERE id=$5`
	return r.execOne(ctx, query, ban.BannedBy, ban.Reason, ban.BannedAt, ban.ScheduledUnbanAt, id)
}

func (r *userRepository) ClearBan(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET is_banned=FALSE, banned_by=NULL, ban_reason='', banned_at=NULL, scheduled_unban_at=NULL, updated_at=NOW()
        WHERE id=$1`
	return r.execOne(ctx, query, id)
}

func (r *userRepository) ClearBanIfDue(ctx context.Context, id string, now time.Time) (bool, error) {
	const query = `
        UPDATE users SET is_banned=FALSE, banned_by=NULL, ban_reason='', banned_at=NULL, scheduled_unban_at=NULL, updated_at=NOW()
        WHERE id=$1 AND is_banned AND scheduled_unban_at IS NOT NULL AND scheduled_unban_at <= $2`
	cmd, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) ListDueUnbans(ctx context.Context, now time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
        WHERE is_banned AND scheduled_unban_at IS NOT NULL AND scheduled_unban_at <= $1
        ORDER BY scheduled_unban_at`
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) AddAdoptedPet(ctx context.Context, userID, petID string) (bool, error) {
	const query = `
        INSERT INTO user_adopted_pets (user_id, pet_id) VALUES ($1, $2)
        ON CONFLICT (user_id, pet_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, userID, petID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) RemoveAdoptedPet(ctx context.Context, userID, petID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_adopted_pets WHERE user_id=$1 AND pet_id=$2`, userID, petID)
	return err
}

func (r *userRepository) ListAdoptedPets(ctx context.Context, userID string) ([]domain.Pet, error) {
	query := `SELECT ` + prefixedPetColumns("p") + `
        FROM user_adopted_pets uap JOIN pets p ON p.id = uap.pet_id
        WHERE uap.user_id=$1 ORDER BY uap.created_at`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPets(rows)
}

func (r *userRepository) ListAdoptedPairs(ctx context.Context) ([]domain.AdoptedPair, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, pet_id FROM user_adopted_pets ORDER BY user_id, pet_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pairs []domain.AdoptedPair
	for rows.Next() {
		var pair domain.AdoptedPair
		if err := rows.Scan(&pair.UserID, &pair.PetID); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

func (r *userRepository) ToggleFavorite(ctx context.Context, userID, petID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `DELETE FROM user_favorite_pets WHERE user_id=$1 AND pet_id=$2`, userID, petID)
	if err != nil {
		return false, err
	}
	favorited := false
	if cmd.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `INSERT INTO user_favorite_pets (user_id, pet_id) VALUES ($1, $2)`, userID, petID); err != nil {
			return false, translate(err)
		}
		favorited = true
	}
	return favorited, tx.Commit(ctx)
}

func (r *userRepository) ListFavoritePets(ctx context.Context, userID string) ([]domain.Pet, error) {
	query := `SELECT ` + prefixedPetColumns("p") + `
        FROM user_favorite_pets ufp JOIN pets p ON p.id = ufp.pet_id
        WHERE ufp.user_id=$1 ORDER BY ufp.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPets(rows)
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.Address,
		&user.AvatarURL,
		&user.Ban.IsBanned,
		&user.Ban.BannedBy,
		&user.Ban.Reason,
		&user.Ban.BannedAt,
		&user.Ban.ScheduledUnbanAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
