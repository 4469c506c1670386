package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// PetInput carries the editable pet profile.
type PetInput struct {
	Name        string
	Species     string
	Breed       string
	AgeMonths   int
	Gender      string
	Size        string
	Description string
	ImageURLs   []string
}

// PetService manages the pet catalog and favorites.
type PetService struct {
	users   repository.UserRepository
	vendors repository.VendorRepository
	pets    repository.PetRepository
	logger  *zap.Logger
}

// PetDependencies bundles collaborators for the pet service.
type PetDependencies struct {
	UserRepo   repository.UserRepository
	VendorRepo repository.VendorRepository
	PetRepo    repository.PetRepository
	Logger     *zap.Logger
}

// NewPetService constructs the service.
func NewPetService(deps PetDependencies) *PetService {
	return &PetService{
		users:   deps.UserRepo,
		vendors: deps.VendorRepo,
		pets:    deps.PetRepo,
		logger:  nopLogger(deps.Logger),
	}
}

// CreatePet lists a new Available pet under the caller's vendor.
func (s *PetService) CreatePet(ctx context.Context, vendorUserID string, input PetInput) (*domain.Pet, error) {
	input, err := validatePetInput(input)
	if err != nil {
		return nil, err
	}
	vendor, err := s.vendors.GetByUserID(ctx, vendorUserID)
	if err != nil {
		return nil, storeError(err, "vendor", map[string]any{"userId": vendorUserID})
	}
	if !vendor.CanList() {
		return nil, apperrors.NewForbidden("vendor is not active")
	}

	pet := &domain.Pet{
		ID:       uuid.NewString(),
		VendorID: vendor.ID,
		Status:   domain.PetStatusAvailable,
	}
	applyPetInput(pet, input)
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, storeError(err, "pet", nil)
	}
	s.logger.Info("pet listed", zap.String("pet_id", pet.ID), zap.String("vendor_id", vendor.ID))
	return pet, nil
}

// UpdatePet edits a pet's profile. Status is owned by the adoption lifecycle
// and cannot be changed here.
func (s *PetService) UpdatePet(ctx context.Context, vendorUserID, petID string, input PetInput) (*domain.Pet, error) {
	input, err := validatePetInput(input)
	if err != nil {
		return nil, err
	}
	pet, err := s.ownedPet(ctx, Actor{UserID: vendorUserID, Role: domain.RoleVendor}, petID)
	if err != nil {
		return nil, err
	}
	applyPetInput(pet, input)
	if err := s.pets.Update(ctx, pet); err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": petID})
	}
	return pet, nil
}

// ListVendorPets lists a vendor's pets, newest first.
func (s *PetService) ListVendorPets(ctx context.Context, vendorID string, limit, offset int) ([]domain.Pet, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, storeError(err, "vendor", map[string]any{"vendorId": vendorID})
	}
	pets, err := s.pets.List(ctx, repository.PetFilter{VendorID: &vendorID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, storeError(err, "pets", nil)
	}
	return pets, nil
}

// BrowsePets searches the public catalog.
func (s *PetService) BrowsePets(ctx context.Context, filter repository.PetFilter) ([]domain.Pet, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid pet status", map[string]any{"status": *filter.Status})
	}
	pets, err := s.pets.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "pets", nil)
	}
	return pets, nil
}

// GetPet returns a pet with its owning vendor.
func (s *PetService) GetPet(ctx context.Context, petID string) (*domain.PetWithVendor, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": petID})
	}
	vendor, err := s.vendors.GetByID(ctx, pet.VendorID)
	if err != nil {
		return nil, storeError(err, "vendor", map[string]any{"vendorId": pet.VendorID})
	}
	return &domain.PetWithVendor{Pet: *pet, Vendor: *vendor}, nil
}

// DeletePet removes a pet together with its adoption requests and every
// adopted or favorite membership that references it.
func (s *PetService) DeletePet(ctx context.Context, actor Actor, petID string) error {
	if _, err := s.ownedPet(ctx, actor, petID); err != nil {
		return err
	}
	if err := s.pets.Delete(ctx, petID); err != nil {
		return storeError(err, "pet", map[string]any{"petId": petID})
	}
	s.logger.Info("pet deleted", zap.String("pet_id", petID), zap.String("actor_id", actor.UserID))
	return nil
}

// ToggleFavorite adds or removes a pet from the user's favorites and reports
// whether it is now a favorite.
func (s *PetService) ToggleFavorite(ctx context.Context, userID, petID string) (bool, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return false, storeError(err, "pet", map[string]any{"petId": petID})
	}
	favorited, err := s.users.ToggleFavorite(ctx, userID, petID)
	if err != nil {
		return false, storeError(err, "favorite", nil)
	}
	return favorited, nil
}

// ListFavorites returns the user's favorite pets.
func (s *PetService) ListFavorites(ctx context.Context, userID string) ([]domain.Pet, error) {
	pets, err := s.users.ListFavoritePets(ctx, userID)
	if err != nil {
		return nil, storeError(err, "favorites", nil)
	}
	if pets == nil {
		pets = []domain.Pet{}
	}
	return pets, nil
}

// ownedPet loads a pet the actor may modify: admins may touch any pet,
// vendors only their own.
func (s *PetService) ownedPet(ctx context.Context, actor Actor, petID string) (*domain.Pet, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": petID})
	}
	if actor.IsAdmin() {
		return pet, nil
	}
	vendor, err := s.vendors.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden("only the listing vendor may modify this pet")
		}
		return nil, storeError(err, "vendor", nil)
	}
	if vendor.ID != pet.VendorID {
		return nil, apperrors.NewForbidden("only the listing vendor may modify this pet")
	}
	return pet, nil
}

func validatePetInput(in PetInput) (PetInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.ToLower(strings.TrimSpace(in.Species))
	in.Breed = strings.TrimSpace(in.Breed)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Size = strings.TrimSpace(in.Size)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURLs = compactStrings(in.ImageURLs)
	if err := requireFields(map[string]string{"name": in.Name, "species": in.Species}, "name", "species"); err != nil {
		return in, err
	}
	if in.AgeMonths < 0 {
		return in, apperrors.NewValidationError("age cannot be negative", map[string]any{"fields": []string{"ageMonths"}})
	}
	return in, nil
}

func applyPetInput(pet *domain.Pet, in PetInput) {
	pet.Name = in.Name
	pet.Species = in.Species
	pet.Breed = in.Breed
	pet.AgeMonths = in.AgeMonths
	pet.Gender = in.Gender
	pet.Size = in.Size
	pet.Description = in.Description
	pet.ImageURLs = in.ImageURLs
}
