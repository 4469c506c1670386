package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var (
	_ repository.VendorRepository            = (*vendorRepo)(nil)
	_ repository.VendorApplicationRepository = (*applicationRepo)(nil)
)

type vendorRepo struct {
	s *Store
}

func (r *vendorRepo) Create(_ context.Context, vendor *domain.Vendor) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[vendor.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.vendors[vendor.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range s.vendors {
		if existing.UserID == vendor.UserID {
			return repository.ErrDuplicate
		}
	}
	now := s.now()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now
	s.vendors[vendor.ID] = *vendor
	return nil
}

func (r *vendorRepo) Update(_ context.Context, vendor *domain.Vendor) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.vendors[vendor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.VendorProfile = vendor.VendorProfile
	stored.UpdatedAt = s.now()
	s.vendors[stored.ID] = stored
	vendor.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *vendorRepo) UpdateStatus(_ context.Context, id string, status domain.VendorStatus) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = s.now()
	s.vendors[stored.ID] = stored
	return nil
}

func (r *vendorRepo) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	vendor, ok := s.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &vendor, nil
}

func (r *vendorRepo) GetByUserID(_ context.Context, userID string) (*domain.Vendor, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vendor := range s.vendors {
		if vendor.UserID == userID {
			copied := vendor
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *vendorRepo) List(_ context.Context, filter repository.VendorFilter) ([]domain.Vendor, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.Vendor{}
	for _, vendor := range s.vendors {
		if filter.Status != nil && vendor.Status != *filter.Status {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" &&
			!containsFold(vendor.OrganizationName, *filter.SearchTerm) {
			continue
		}
		result = append(result, vendor)
	}
	newestFirst(result, func(v domain.Vendor) time.Time { return v.CreatedAt }, func(v domain.Vendor) string { return v.ID })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *vendorRepo) DeleteByUserID(_ context.Context, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, vendor := range s.vendors {
		if vendor.UserID == userID {
			s.deleteVendorLocked(id)
		}
	}
	return nil
}

type applicationRepo struct {
	s *Store
}

func (r *applicationRepo) Create(_ context.Context, app *domain.VendorApplication) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[app.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.applications[app.ID]; ok {
		return repository.ErrDuplicate
	}
	app.CreatedAt = s.now()
	s.applications[app.ID] = cloneApplication(*app)
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id string) (*domain.VendorApplication, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := cloneApplication(app)
	return &copied, nil
}

func (r *applicationRepo) ListByStatus(_ context.Context, status domain.ApplicationStatus) ([]domain.VendorApplication, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.VendorApplication{}
	for _, app := range s.applications {
		if app.Status == status {
			result = append(result, cloneApplication(app))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *applicationRepo) HasPending(_ context.Context, userID string) (bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.applications {
		if app.UserID == userID && app.Status == domain.ApplicationStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *applicationRepo) UpdateReview(_ context.Context, app *domain.VendorApplication) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.applications[app.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = app.Status
	stored.ReviewedBy = cloneString(app.ReviewedBy)
	stored.ReviewedAt = cloneTime(app.ReviewedAt)
	stored.RejectionReason = cloneString(app.RejectionReason)
	s.applications[stored.ID] = stored
	return nil
}

func cloneApplication(a domain.VendorApplication) domain.VendorApplication {
	a.OrganizationImages = cloneStrings(a.OrganizationImages)
	a.IdentityDocuments = cloneStrings(a.IdentityDocuments)
	a.ReviewedBy = cloneString(a.ReviewedBy)
	a.ReviewedAt = cloneTime(a.ReviewedAt)
	a.RejectionReason = cloneString(a.RejectionReason)
	return a
}
