// Package memory provides in-process repositories for development and tests.
// All views share one Store so cascades and the approval unit behave like the
// Postgres schema.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[string]domain.User
	vendors      map[string]domain.Vendor
	applications map[string]domain.VendorApplication
	pets         map[string]domain.Pet
	requests     map[string]domain.AdoptionRequest
	adopted      map[string]map[string]time.Time
	favorites    map[string]map[string]time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        map[string]domain.User{},
		vendors:      map[string]domain.Vendor{},
		applications: map[string]domain.VendorApplication{},
		pets:         map[string]domain.Pet{},
		requests:     map[string]domain.AdoptionRequest{},
		adopted:      map[string]map[string]time.Time{},
		favorites:    map[string]map[string]time.Time{},
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Vendors returns the vendor repository view.
func (s *Store) Vendors() repository.VendorRepository { return &vendorRepo{s: s} }

// Applications returns the vendor application repository view.
func (s *Store) Applications() repository.VendorApplicationRepository {
	return &applicationRepo{s: s}
}

// Pets returns the pet repository view.
func (s *Store) Pets() repository.PetRepository { return &petRepo{s: s} }

// Adoptions returns the adoption request repository view.
func (s *Store) Adoptions() repository.AdoptionRepository { return &adoptionRepo{s: s} }

// Analytics returns the aggregate query view.
func (s *Store) Analytics() repository.AnalyticsRepository { return &analyticsRepo{s: s} }

// deleteUserLocked mirrors ON DELETE CASCADE from users.
func (s *Store) deleteUserLocked(id string) {
	delete(s.users, id)
	delete(s.adopted, id)
	delete(s.favorites, id)
	for vendorID, vendor := range s.vendors {
		if vendor.UserID == id {
			s.deleteVendorLocked(vendorID)
		}
	}
	for appID, app := range s.applications {
		if app.UserID == id {
			delete(s.applications, appID)
		}
	}
	for key, req := range s.requests {
		if req.ApplicantID == id {
			delete(s.requests, key)
		}
	}
}

func (s *Store) deleteVendorLocked(id string) {
	delete(s.vendors, id)
	for petID, pet := range s.pets {
		if pet.VendorID == id {
			s.deletePetLocked(petID)
		}
	}
	for key, req := range s.requests {
		if req.VendorID == id {
			delete(s.requests, key)
		}
	}
}

func (s *Store) deletePetLocked(id string) {
	delete(s.pets, id)
	for key, req := range s.requests {
		if req.PetID == id {
			delete(s.requests, key)
		}
	}
	for _, set := range s.adopted {
		delete(set, id)
	}
	for _, set := range s.favorites {
		delete(set, id)
	}
}

func clonePet(p domain.Pet) domain.Pet {
	p.ImageURLs = cloneStrings(p.ImageURLs)
	return p
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// newestFirst orders by creation time descending with id as the tie-breaker.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
