package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	if s.emailTakenLocked(user.Email, "") {
		return repository.ErrDuplicate
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.Phone = user.Phone
	stored.Address = user.Address
	stored.AvatarURL = user.AvatarURL
	stored.UpdatedAt = s.now()
	s.users[stored.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	return r.mutate(id, func(u *domain.User) { u.Role = role })
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := cloneUser(user)
	return &copied, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			copied := cloneUser(user)
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.User{}
	for _, user := range s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.BannedOnly && !user.Ban.IsBanned {
			continue
		}
		if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" &&
			!containsFold(user.Name, *filter.SearchTerm) && !containsFold(user.Email, *filter.SearchTerm) {
			continue
		}
		result = append(result, cloneUser(user))
	}
	newestFirst(result, func(u domain.User) time.Time { return u.CreatedAt }, func(u domain.User) string { return u.ID })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteUserLocked(id)
	return nil
}

func (r *userRepo) SetBan(_ context.Context, id string, ban domain.BanState) error {
	return r.mutate(id, func(u *domain.User) {
		u.Ban = domain.BanState{
			IsBanned:         true,
			BannedBy:         cloneString(ban.BannedBy),
			Reason:           ban.Reason,
			BannedAt:         cloneTime(ban.BannedAt),
			ScheduledUnbanAt: cloneTime(ban.ScheduledUnbanAt),
		}
	})
}

func (r *userRepo) ClearBan(_ context.Context, id string) error {
	return r.mutate(id, func(u *domain.User) { u.Ban = domain.BanState{} })
}

func (r *userRepo) ClearBanIfDue(_ context.Context, id string, now time.Time) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || !user.Ban.UnbanDue(now) {
		return false, nil
	}
	user.Ban = domain.BanState{}
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return true, nil
}

func (r *userRepo) ListDueUnbans(_ context.Context, now time.Time) ([]domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.User{}
	for _, user := range s.users {
		if user.Ban.UnbanDue(now) {
			result = append(result, cloneUser(user))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ban.ScheduledUnbanAt.Before(*result[j].Ban.ScheduledUnbanAt)
	})
	return result, nil
}

func (r *userRepo) AddAdoptedPet(_ context.Context, userID, petID string) (bool, error) {
	return r.s.addMembership(r.s.adopted, userID, petID)
}

func (r *userRepo) RemoveAdoptedPet(_ context.Context, userID, petID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.adopted[userID], petID)
	return nil
}

func (r *userRepo) ListAdoptedPets(_ context.Context, userID string) ([]domain.Pet, error) {
	return r.s.listMembership(r.s.adopted, userID, false), nil
}

func (r *userRepo) ListAdoptedPairs(_ context.Context) ([]domain.AdoptedPair, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	pairs := []domain.AdoptedPair{}
	for userID, set := range s.adopted {
		for petID := range set {
			pairs = append(pairs, domain.AdoptedPair{UserID: userID, PetID: petID})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].UserID != pairs[j].UserID {
			return pairs[i].UserID < pairs[j].UserID
		}
		return pairs[i].PetID < pairs[j].PetID
	})
	return pairs, nil
}

func (r *userRepo) ToggleFavorite(_ context.Context, userID, petID string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.favorites[userID][petID]; ok {
		delete(s.favorites[userID], petID)
		return false, nil
	}
	if err := s.checkMembershipRefsLocked(userID, petID); err != nil {
		return false, err
	}
	if s.favorites[userID] == nil {
		s.favorites[strings.Clone(userID)] = map[string]time.Time{}
	}
	s.favorites[userID][strings.Clone(petID)] = s.now()
	return true, nil
}

func (r *userRepo) ListFavoritePets(_ context.Context, userID string) ([]domain.Pet, error) {
	return r.s.listMembership(r.s.favorites, userID, true), nil
}

func (r *userRepo) mutate(id string, fn func(*domain.User)) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return nil
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for id, existing := range s.users {
		if id != exceptID && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}

// checkMembershipRefsLocked mirrors the foreign keys on the join tables.
func (s *Store) checkMembershipRefsLocked(userID, petID string) error {
	if _, ok := s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.pets[petID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) addMembership(sets map[string]map[string]time.Time, userID, petID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMembershipRefsLocked(userID, petID); err != nil {
		return false, err
	}
	if _, ok := sets[userID][petID]; ok {
		return false, nil
	}
	if sets[userID] == nil {
		sets[strings.Clone(userID)] = map[string]time.Time{}
	}
	sets[userID][strings.Clone(petID)] = s.now()
	return true, nil
}

func (s *Store) listMembership(sets map[string]map[string]time.Time, userID string, newest bool) []domain.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		pet   domain.Pet
		added time.Time
	}
	entries := []entry{}
	for petID, added := range sets[userID] {
		if pet, ok := s.pets[petID]; ok {
			entries = append(entries, entry{pet: clonePet(pet), added: added})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].added.Equal(entries[j].added) {
			if newest {
				return entries[i].added.After(entries[j].added)
			}
			return entries[i].added.Before(entries[j].added)
		}
		return entries[i].pet.ID < entries[j].pet.ID
	})

	result := make([]domain.Pet, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.pet)
	}
	return result
}

func cloneUser(u domain.User) domain.User {
	u.Ban.BannedBy = cloneString(u.Ban.BannedBy)
	u.Ban.BannedAt = cloneTime(u.Ban.BannedAt)
	u.Ban.ScheduledUnbanAt = cloneTime(u.Ban.ScheduledUnbanAt)
	return u
}
