package memory

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var _ repository.PetRepository = (*petRepo)(nil)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(_ context.Context, pet *domain.Pet) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[pet.VendorID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.pets[pet.ID]; ok {
		return repository.ErrDuplicate
	}
	now := s.now()
	pet.CreatedAt = now
	pet.UpdatedAt = now
	pet.ImageURLs = cloneStrings(pet.ImageURLs)
	s.pets[pet.ID] = clonePet(*pet)
	return nil
}

func (r *petRepo) Update(_ context.Context, pet *domain.Pet) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.pets[pet.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = pet.Name
	stored.Species = pet.Species
	stored.Breed = pet.Breed
	stored.AgeMonths = pet.AgeMonths
	stored.Gender = pet.Gender
	stored.Size = pet.Size
	stored.Description = pet.Description
	stored.ImageURLs = cloneStrings(pet.ImageURLs)
	stored.UpdatedAt = s.now()
	s.pets[stored.ID] = stored
	pet.Status = stored.Status
	pet.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *petRepo) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	pet, ok := s.pets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := clonePet(pet)
	return &copied, nil
}

func (r *petRepo) List(_ context.Context, filter repository.PetFilter) ([]domain.Pet, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Pet{}
	for _, pet := range s.pets {
		if filter.VendorID != nil && pet.VendorID != *filter.VendorID {
			continue
		}
		if filter.Species != nil && *filter.Species != "" && !strings.EqualFold(pet.Species, *filter.Species) {
			continue
		}
		if filter.Status != nil && pet.Status != *filter.Status {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" &&
			!containsFold(pet.Name, *filter.SearchTerm) &&
			!containsFold(pet.Breed, *filter.SearchTerm) &&
			!containsFold(pet.Description, *filter.SearchTerm) {
			continue
		}
		result = append(result, clonePet(pet))
	}
	newestFirst(result, func(p domain.Pet) time.Time { return p.CreatedAt }, func(p domain.Pet) string { return p.ID })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *petRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pets[id]; !ok {
		return repository.ErrNotFound
	}
	s.deletePetLocked(id)
	return nil
}
