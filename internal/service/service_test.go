package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/notify"
	"github.com/spec-kit/adoption-service/internal/repository/memory"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) byTemplate(key notify.TemplateKey) []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Notification
	for _, n := range r.sent {
		if n.TemplateKey == key {
			out = append(out, n)
		}
	}
	return out
}

type transitionCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *transitionCounter) RecordTransition(action, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[action+"/"+outcome]++
}

type harness struct {
	store     *memory.Store
	clock     *testClock
	notifier  *recordingNotifier
	counter   *transitionCounter
	adoptions *AdoptionService
	pets      *PetService
	vendors   *VendorService
	users     *UserService
	auth      *AuthService
	analytics *AnalyticsService

	owner     domain.User
	applicant domain.User
	admin     domain.User
	vendor    domain.Vendor
	pet       domain.Pet
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{now: fixedNow}
	store := memory.NewStore()
	store.WithClock(clock.Now)

	dispatcher := events.NewInMemoryDispatcher(nil)
	notifier := &recordingNotifier{}
	NewNotificationService(dispatcher, notifier, nil).RegisterHandlers()
	counter := &transitionCounter{}

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}

	h := &harness{
		store:    store,
		clock:    clock,
		notifier: notifier,
		counter:  counter,
		adoptions: NewAdoptionService(AdoptionDependencies{
			UserRepo:     store.Users(),
			PetRepo:      store.Pets(),
			VendorRepo:   store.Vendors(),
			AdoptionRepo: store.Adoptions(),
			Dispatcher:   dispatcher,
			Recorder:     counter,
			Clock:        clock.Now,
		}),
		pets: NewPetService(PetDependencies{
			UserRepo:   store.Users(),
			VendorRepo: store.Vendors(),
			PetRepo:    store.Pets(),
		}),
		vendors: NewVendorService(VendorDependencies{
			UserRepo:        store.Users(),
			VendorRepo:      store.Vendors(),
			ApplicationRepo: store.Applications(),
			Dispatcher:      dispatcher,
			Clock:           clock.Now,
		}),
		users: NewUserService(UserDependencies{
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		auth: NewAuthService(cfg, AuthDependencies{UserRepo: store.Users(), Clock: clock.Now}),
	}
	h.analytics = NewAnalyticsService(config.AnalyticsConfig{DailyWindowDays: 3, MonthlyWindow: 2, RecentLimit: 2},
		AnalyticsDependencies{AnalyticsRepo: store.Analytics(), Clock: clock.Now})

	h.owner = domain.User{ID: "owner", Name: "Sam Shelter", Email: "sam@example.com", Role: domain.RoleVendor}
	h.applicant = domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Phone: "+1 555 0100", Role: domain.RoleUser}
	h.admin = domain.User{ID: "admin", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
	for _, u := range []*domain.User{&h.owner, &h.applicant, &h.admin} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	h.vendor = domain.Vendor{ID: "v1", UserID: h.owner.ID, Status: domain.VendorStatusActive}
	h.vendor.OrganizationName = "Happy Tails"
	h.vendor.Email = "shelter@example.com"
	require.NoError(t, store.Vendors().Create(ctx, &h.vendor))

	h.pet = domain.Pet{ID: "p1", VendorID: h.vendor.ID, Name: "Rex", Species: "dog", Status: domain.PetStatusAvailable}
	require.NoError(t, store.Pets().Create(ctx, &h.pet))
	return h
}

func (h *harness) submit(t *testing.T, adoptionID string) *domain.AdoptionRequest {
	t.Helper()
	req, err := h.adoptions.SubmitRequest(context.Background(), h.input(adoptionID))
	require.NoError(t, err)
	return req
}

func (h *harness) input(adoptionID string) SubmitAdoptionInput {
	return SubmitAdoptionInput{
		AdoptionID:        adoptionID,
		PetID:             h.pet.ID,
		ApplicantID:       h.applicant.ID,
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		Phone:             "+1 555 0100",
		Address:           "1 Analytical Way",
		ReasonForAdoption: "Big garden",
	}
}

func (h *harness) addUser(t *testing.T, id string) domain.User {
	t.Helper()
	u := domain.User{ID: id, Name: id, Email: id + "@example.com", Role: domain.RoleUser}
	require.NoError(t, h.store.Users().Create(context.Background(), &u))
	return u
}
