package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var _ repository.AdoptionRepository = (*adoptionRepo)(nil)

// adoptionRepo keys requests by adoptionId.
type adoptionRepo struct {
	s *Store
}

func (r *adoptionRepo) Create(_ context.Context, req *domain.AdoptionRequest) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[req.AdoptionID]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := s.users[req.ApplicantID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.pets[req.PetID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.vendors[req.VendorID]; !ok {
		return repository.ErrNotFound
	}
	now := s.now()
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.AdoptionID] = *req
	return nil
}

func (r *adoptionRepo) GetByAdoptionID(_ context.Context, adoptionID string) (*domain.AdoptionRequest, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[adoptionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *adoptionRepo) List(_ context.Context, filter repository.AdoptionFilter) ([]domain.AdoptionRequest, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.AdoptionRequest{}
	for _, req := range s.requests {
		if filter.ApplicantID != nil && req.ApplicantID != *filter.ApplicantID {
			continue
		}
		if filter.VendorID != nil && req.VendorID != *filter.VendorID {
			continue
		}
		if filter.PetID != nil && req.PetID != *filter.PetID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, req.Status) {
			continue
		}
		result = append(result, req)
	}
	newestFirst(result, func(a domain.AdoptionRequest) time.Time { return a.CreatedAt },
		func(a domain.AdoptionRequest) string { return a.AdoptionID })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *adoptionRepo) ListApproved(_ context.Context) ([]domain.AdoptionRequest, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.AdoptionRequest{}
	for _, req := range s.requests {
		if req.Status == domain.AdoptionStatusApproved {
			result = append(result, req)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].AdoptionID < result[j].AdoptionID
	})
	return result, nil
}

func (r *adoptionRepo) Approve(_ context.Context, adoptionID string) (domain.TransitionOutcome, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[adoptionID]
	if !ok {
		return domain.TransitionOutcome{}, repository.ErrNotFound
	}
	if !req.CanTransition(domain.AdoptionStatusApproved) {
		return domain.TransitionOutcome{Request: &req}, nil
	}
	pet, ok := s.pets[req.PetID]
	if !ok {
		return domain.TransitionOutcome{}, repository.ErrNotFound
	}
	if pet.Status == domain.PetStatusAdopted {
		return domain.TransitionOutcome{}, repository.ErrPetUnavailable
	}

	now := s.now()
	pet.Status = domain.PetStatusAdopted
	pet.UpdatedAt = now
	s.pets[pet.ID] = pet

	req.Status = domain.AdoptionStatusApproved
	req.UpdatedAt = now
	s.requests[req.AdoptionID] = req
	return domain.TransitionOutcome{Request: &req, Changed: true}, nil
}

func (r *adoptionRepo) Reject(_ context.Context, adoptionID string) (domain.TransitionOutcome, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[adoptionID]
	if !ok {
		return domain.TransitionOutcome{}, repository.ErrNotFound
	}
	if !req.CanTransition(domain.AdoptionStatusRejected) {
		return domain.TransitionOutcome{Request: &req}, nil
	}
	req.Status = domain.AdoptionStatusRejected
	req.UpdatedAt = s.now()
	s.requests[req.AdoptionID] = req
	return domain.TransitionOutcome{Request: &req, Changed: true}, nil
}

func (r *adoptionRepo) RejectPendingForPet(_ context.Context, petID string) ([]domain.AdoptionRequest, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rejected := []domain.AdoptionRequest{}
	for key, req := range s.requests {
		if req.PetID != petID || req.Status != domain.AdoptionStatusPending {
			continue
		}
		req.Status = domain.AdoptionStatusRejected
		req.UpdatedAt = now
		s.requests[key] = req
		rejected = append(rejected, req)
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].AdoptionID < rejected[j].AdoptionID })
	return rejected, nil
}

func hasStatus(statuses []domain.AdoptionStatus, status domain.AdoptionStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
