package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

type fixture struct {
	store  *Store
	user   domain.User
	vendor domain.Vendor
	pet    domain.Pet
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := NewStore()
	store.WithClock(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })

	owner := domain.User{ID: "owner", Name: "Shelter Owner", Email: "owner@example.com", Role: domain.RoleVendor}
	require.NoError(t, store.Users().Create(ctx, &owner))
	user := domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users().Create(ctx, &user))

	vendor := domain.Vendor{ID: "v1", UserID: owner.ID, Status: domain.VendorStatusActive}
	vendor.OrganizationName = "Happy Tails"
	require.NoError(t, store.Vendors().Create(ctx, &vendor))

	pet := domain.Pet{ID: "p1", VendorID: vendor.ID, Name: "Rex", Species: "dog", Status: domain.PetStatusAvailable}
	require.NoError(t, store.Pets().Create(ctx, &pet))

	return fixture{store: store, user: user, vendor: vendor, pet: pet}
}

func (f fixture) request(t *testing.T, adoptionID string) domain.AdoptionRequest {
	t.Helper()
	req := domain.AdoptionRequest{
		ID:          "id-" + adoptionID,
		AdoptionID:  adoptionID,
		ApplicantID: f.user.ID,
		PetID:       f.pet.ID,
		VendorID:    f.vendor.ID,
		Status:      domain.AdoptionStatusPending,
	}
	require.NoError(t, f.store.Adoptions().Create(context.Background(), &req))
	return req
}

func TestUsers_CreateRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	dup := domain.User{ID: "u2", Email: "ADA@example.com"}
	err := f.store.Users().Create(context.Background(), &dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestAdoptions_CreateRejectsDuplicateAdoptionID(t *testing.T) {
	f := newFixture(t)
	f.request(t, "A1")
	dup := domain.AdoptionRequest{AdoptionID: "A1", ApplicantID: f.user.ID, PetID: f.pet.ID, VendorID: f.vendor.ID}
	err := f.store.Adoptions().Create(context.Background(), &dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestAdoptions_ApproveFlipsPetAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, "A1")

	outcome, err := f.store.Adoptions().Approve(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, domain.AdoptionStatusApproved, outcome.Request.Status)

	pet, err := f.store.Pets().GetByID(ctx, f.pet.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PetStatusAdopted, pet.Status)

	again, err := f.store.Adoptions().Approve(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, domain.AdoptionStatusApproved, again.Request.Status)
}

func TestAdoptions_SecondApprovalForSamePetLoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, "A1")
	f.request(t, "A2")

	_, err := f.store.Adoptions().Approve(ctx, "A1")
	require.NoError(t, err)

	_, err = f.store.Adoptions().Approve(ctx, "A2")
	assert.ErrorIs(t, err, repository.ErrPetUnavailable)

	a2, err := f.store.Adoptions().GetByAdoptionID(ctx, "A2")
	require.NoError(t, err)
	assert.Equal(t, domain.AdoptionStatusPending, a2.Status)
}

func TestAdoptions_RejectNeverRevertsApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, "A1")
	_, err := f.store.Adoptions().Approve(ctx, "A1")
	require.NoError(t, err)

	outcome, err := f.store.Adoptions().Reject(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, domain.AdoptionStatusApproved, outcome.Request.Status)
}

func TestPets_DeleteCascadesRequestsAndMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, "A1")
	added, err := f.store.Users().AddAdoptedPet(ctx, f.user.ID, f.pet.ID)
	require.NoError(t, err)
	require.True(t, added)
	favorited, err := f.store.Users().ToggleFavorite(ctx, f.user.ID, f.pet.ID)
	require.NoError(t, err)
	require.True(t, favorited)

	require.NoError(t, f.store.Pets().Delete(ctx, f.pet.ID))

	_, err = f.store.Adoptions().GetByAdoptionID(ctx, "A1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	adopted, err := f.store.Users().ListAdoptedPets(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, adopted)
	favorites, err := f.store.Users().ListFavoritePets(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestUsers_DeleteOwnerCascadesVendorAndPets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, "A1")

	require.NoError(t, f.store.Users().Delete(ctx, f.vendor.UserID))

	_, err := f.store.Vendors().GetByID(ctx, f.vendor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Pets().GetByID(ctx, f.pet.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.Adoptions().GetByAdoptionID(ctx, "A1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsers_AddAdoptedPetIsSetSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.store.Users().AddAdoptedPet(ctx, f.user.ID, f.pet.ID)
	require.NoError(t, err)
	second, err := f.store.Users().AddAdoptedPet(ctx, f.user.ID, f.pet.ID)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	pets, err := f.store.Users().ListAdoptedPets(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, pets, 1)
}

func TestUsers_ClearBanIfDueRespectsLaterSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	require.NoError(t, f.store.Users().SetBan(ctx, f.user.ID, domain.BanState{Reason: "spam", BannedAt: &now, ScheduledUnbanAt: &later}))

	cleared, err := f.store.Users().ClearBanIfDue(ctx, f.user.ID, now)
	require.NoError(t, err)
	assert.False(t, cleared)

	due, err := f.store.Users().ListDueUnbans(ctx, later)
	require.NoError(t, err)
	require.Len(t, due, 1)

	cleared, err = f.store.Users().ClearBanIfDue(ctx, f.user.ID, later)
	require.NoError(t, err)
	assert.True(t, cleared)

	user, err := f.store.Users().GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, user.Ban.IsBanned)
}

func TestAnalytics_HistogramBucketsByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	buckets, err := f.store.Analytics().Histogram(ctx, domain.EntityUsers, repository.GranularityDay, since)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.EqualValues(t, 2, buckets[0].Count)
}
