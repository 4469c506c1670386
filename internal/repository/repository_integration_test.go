//go:build integration

package repository_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/persistence"
	"github.com/spec-kit/adoption-service/internal/repository"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

func setupPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("adoption_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	applied, err := persistence.RunMigrations(ctx, pool, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.Positive(t, applied)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return pool, cleanup
}

type seeded struct {
	applicant domain.User
	vendor    domain.Vendor
	pet       domain.Pet
}

func seed(t *testing.T, pool *pgxpool.Pool) seeded {
	t.Helper()
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	vendors := repository.NewVendorRepository(pool)
	pets := repository.NewPetRepository(pool)

	owner := domain.User{ID: "owner-1", Name: "Owner", Email: "owner@example.com", PasswordHash: "x", Role: domain.RoleVendor}
	require.NoError(t, users.Create(ctx, &owner))
	applicant := domain.User{ID: "user-1", Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, users.Create(ctx, &applicant))

	vendor := domain.Vendor{ID: "vendor-1", UserID: owner.ID, Status: domain.VendorStatusActive}
	vendor.OrganizationName = "Happy Tails"
	require.NoError(t, vendors.Create(ctx, &vendor))

	pet := domain.Pet{ID: "pet-1", VendorID: vendor.ID, Name: "Rex", Species: "dog", Status: domain.PetStatusAvailable}
	require.NoError(t, pets.Create(ctx, &pet))

	return seeded{applicant: applicant, vendor: vendor, pet: pet}
}

func newRequest(s seeded, adoptionID string) *domain.AdoptionRequest {
	return &domain.AdoptionRequest{
		ID:          "req-" + adoptionID,
		AdoptionID:  adoptionID,
		ApplicantID: s.applicant.ID,
		PetID:       s.pet.ID,
		VendorID:    s.vendor.ID,
		Snapshot: domain.ApplicantSnapshot{
			FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "555", Address: "1 Main", PetName: "Rex",
		},
		ReasonForAdoption: "garden",
		Status:            domain.AdoptionStatusPending,
	}
}

func TestAdoptionRepository_ApproveIsSingleWinner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s := seed(t, pool)
	adoptions := repository.NewAdoptionRepository(pool)

	require.NoError(t, adoptions.Create(ctx, newRequest(s, "A1")))
	require.NoError(t, adoptions.Create(ctx, newRequest(s, "A2")))
	assert.ErrorIs(t, adoptions.Create(ctx, newRequest(s, "A1")), repository.ErrDuplicate)

	outcome, err := adoptions.Approve(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)

	_, err = adoptions.Approve(ctx, "A2")
	assert.ErrorIs(t, err, repository.ErrPetUnavailable)

	again, err := adoptions.Approve(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, again.Changed)

	pet, err := repository.NewPetRepository(pool).GetByID(ctx, s.pet.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PetStatusAdopted, pet.Status)

	rejected, err := adoptions.RejectPendingForPet(ctx, s.pet.ID)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "A2", rejected[0].AdoptionID)
}

func TestAdoptionRepository_RejectIsAbsorbing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s := seed(t, pool)
	adoptions := repository.NewAdoptionRepository(pool)
	require.NoError(t, adoptions.Create(ctx, newRequest(s, "A1")))

	first, err := adoptions.Reject(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := adoptions.Reject(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, second.Changed)

	approve, err := adoptions.Approve(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, approve.Changed)
	assert.Equal(t, domain.AdoptionStatusRejected, approve.Request.Status)

	_, err = adoptions.Reject(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_AdoptedSetAndCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s := seed(t, pool)
	users := repository.NewUserRepository(pool)
	adoptions := repository.NewAdoptionRepository(pool)
	require.NoError(t, adoptions.Create(ctx, newRequest(s, "A1")))

	added, err := users.AddAdoptedPet(ctx, s.applicant.ID, s.pet.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = users.AddAdoptedPet(ctx, s.applicant.ID, s.pet.ID)
	require.NoError(t, err)
	assert.False(t, added)

	pets, err := users.ListAdoptedPets(ctx, s.applicant.ID)
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "Rex", pets[0].Name)

	require.NoError(t, repository.NewPetRepository(pool).Delete(ctx, s.pet.ID))

	pets, err = users.ListAdoptedPets(ctx, s.applicant.ID)
	require.NoError(t, err)
	assert.Empty(t, pets)
	_, err = adoptions.GetByAdoptionID(ctx, "A1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ClearBanIfDue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s := seed(t, pool)
	users := repository.NewUserRepository(pool)

	now := time.Now().UTC().Truncate(time.Second)
	unbanAt := now.Add(time.Hour)
	require.NoError(t, users.SetBan(ctx, s.applicant.ID, domain.BanState{Reason: "spam", BannedAt: &now, ScheduledUnbanAt: &unbanAt}))

	cleared, err := users.ClearBanIfDue(ctx, s.applicant.ID, now)
	require.NoError(t, err)
	assert.False(t, cleared)

	due, err := users.ListDueUnbans(ctx, unbanAt)
	require.NoError(t, err)
	require.Len(t, due, 1)

	cleared, err = users.ClearBanIfDue(ctx, s.applicant.ID, unbanAt)
	require.NoError(t, err)
	assert.True(t, cleared)
}

func TestRunMigrations_IsRepeatable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool, cleanup := setupPostgres(t)
	defer cleanup()

	applied, err := persistence.RunMigrations(context.Background(), pool, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, applied)
}
