package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/api/http/handlers"
	"github.com/spec-kit/adoption-service/internal/auth"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/observability"
	"github.com/spec-kit/adoption-service/internal/repository/memory"
	"github.com/spec-kit/adoption-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	store  *memory.Store
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users()})
	userService := service.NewUserService(service.UserDependencies{UserRepo: store.Users(), Dispatcher: dispatcher, Recorder: metrics})
	vendorService := service.NewVendorService(service.VendorDependencies{
		UserRepo: store.Users(), VendorRepo: store.Vendors(), ApplicationRepo: store.Applications(), Dispatcher: dispatcher,
	})
	petService := service.NewPetService(service.PetDependencies{UserRepo: store.Users(), VendorRepo: store.Vendors(), PetRepo: store.Pets()})
	adoptionService := service.NewAdoptionService(service.AdoptionDependencies{
		UserRepo: store.Users(), PetRepo: store.Pets(), VendorRepo: store.Vendors(), AdoptionRepo: store.Adoptions(),
		Dispatcher: dispatcher, Recorder: metrics,
	})
	analyticsService := service.NewAnalyticsService(config.AnalyticsConfig{}, service.AnalyticsDependencies{AnalyticsRepo: store.Analytics()})

	app := NewServer("test")
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil),
		Users:          handlers.NewUsersHandler(authService, userService),
		Adoption:       handlers.NewAdoptionHandler(adoptionService, vendorService),
		Pets:           handlers.NewPetsHandler(petService, vendorService),
		Vendors:        handlers.NewVendorsHandler(vendorService),
		Admin:          handlers.NewAdminHandler(userService, adoptionService, analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		Metrics:        metrics,
	})

	users := []domain.User{
		{ID: "owner", Name: "Sam", Email: "sam@example.com", Role: domain.RoleVendor},
		{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser},
		{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser},
		{ID: "admin", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin},
	}
	for i := range users {
		require.NoError(t, store.Users().Create(ctx, &users[i]))
	}
	vendor := domain.Vendor{ID: "v1", UserID: "owner", Status: domain.VendorStatusActive}
	vendor.OrganizationName = "Happy Tails"
	require.NoError(t, store.Vendors().Create(ctx, &vendor))
	pet := domain.Pet{ID: "P1", VendorID: "v1", Name: "Rex", Species: "dog", Status: domain.PetStatusAvailable}
	require.NoError(t, store.Pets().Create(ctx, &pet))

	return &testServer{app: app, store: store, tokens: authService.TokenManager()}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		user, err := s.store.Users().GetByID(context.Background(), userID)
		require.NoError(t, err)
		token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func applyBody(adoptionID, applicantID string) map[string]any {
	return map[string]any{
		"adoptionId":        adoptionID,
		"petId":             "P1",
		"applicantId":       applicantID,
		"fullName":          "Ada Lovelace",
		"email":             "ada@example.com",
		"phone":             "555-0100",
		"address":           "1 Main St",
		"reasonForAdoption": "Big garden",
	}
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestAdoptionFlow_ApplyApproveAndList(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	require.Equal(t, http.StatusCreated, status)
	created := body["adoptionRequest"].(map[string]any)
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, "A1", created["adoptionId"])

	status, body = s.do(t, http.MethodPost, "/api/adoption/approve", "owner",
		map[string]any{"adoptionId": "A1", "applicantId": "u1", "petId": "P1"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"])

	status, body = s.do(t, http.MethodGet, "/api/adoption/u1", "u1", nil)
	require.Equal(t, http.StatusOK, status)
	adopted := body["adoptedPets"].([]any)
	require.Len(t, adopted, 1)
	assert.Equal(t, "Adopted", adopted[0].(map[string]any)["status"])
}

func TestAdoptionFlow_ErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/adoption/apply", "u1", map[string]any{"adoptionId": "A1", "applicantId": "u1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/adoption/approve", "owner", map[string]any{"adoptionId": "A1", "applicantId": "u1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	bad := applyBody("A1", "u1")
	bad["petId"] = "missing"
	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", bad)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u2"))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "", applyBody("A1", "u1"))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	require.Equal(t, http.StatusCreated, status)
	status, body = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, _ = s.do(t, http.MethodPost, "/api/adoption/approve", "u1",
		map[string]any{"adoptionId": "A1", "applicantId": "u1", "petId": "P1"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/approve", "owner",
		map[string]any{"adoptionId": "nope", "applicantId": "u1", "petId": "P1"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/reject", "owner", map[string]any{"adoptionId": "A1", "petId": "ghost"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/adoption/u2", "u1", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/api/adoption/ghost", "admin", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdoptionFlow_SecondApprovalConflicts(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	require.Equal(t, http.StatusCreated, status)
	second := applyBody("A2", "u2")
	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u2", second)
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/approve", "owner", map[string]any{"adoptionId": "A1", "applicantId": "u1", "petId": "P1"})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/adoption/approve", "owner", map[string]any{"adoptionId": "A2", "applicantId": "u2", "petId": "P1"})
	assert.Equal(t, http.StatusConflict, status)

	status, body := s.do(t, http.MethodPost, "/api/adoption/reject-competing", "owner", map[string]any{"petId": "P1"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["rejected"])

	status, body = s.do(t, http.MethodPost, "/api/admin/reconcile", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	report := body["data"].(map[string]any)
	assert.Empty(t, report["added"])
	assert.Empty(t, report["removed"])
}

func TestBannedUserIsRefused(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/admin/users/u1/ban", "admin", map[string]any{"reason": "spam", "durationMinutes": 60})
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	require.Equal(t, http.StatusForbidden, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "spam", details["reason"])

	status, _ = s.do(t, http.MethodPost, "/api/admin/users/u1/unban", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	assert.Equal(t, http.StatusCreated, status)
}

func TestPathParamsSurviveLaterRequests(t *testing.T) {
	s := newTestServer(t)
	require.True(t, s.app.Config().Immutable)

	status, _ := s.do(t, http.MethodPost, "/api/admin/users/u1/ban", "admin", map[string]any{"reason": "spam", "durationMinutes": 60})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/users/me/favorites/P1", "u2", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/pets?species=cat", "", nil)
	require.Equal(t, http.StatusOK, status)

	user, err := s.store.Users().GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, user.Ban.IsBanned)
	favorites, err := s.store.Users().ListFavoritePets(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "P1", favorites[0].ID)

	status, _ = s.do(t, http.MethodPost, "/api/adoption/apply", "u1", applyBody("A1", "u1"))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/admin/analytics", "u1", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodGet, "/api/admin/analytics", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	totals := body["data"].(map[string]any)["totals"].(map[string]any)
	assert.EqualValues(t, 4, totals["users"])
}

func TestPublicRoutesAndProbes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/pets?species=dog", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = s.do(t, http.MethodGet, "/api/pets/P1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Happy Tails", body["data"].(map[string]any)["vendor"].(map[string]any)["organizationName"])

	status, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "adoption_http_requests_total")
}

func TestVendorOnboardingFlow(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/vendors/apply", "u2", map[string]any{
		"organizationName":   "Paws",
		"contactPerson":      "Bob",
		"email":              "paws@example.com",
		"phone":              "555",
		"address":            "2 Rd",
		"organizationImages": []string{"img.jpg"},
		"identityDocuments":  []string{"id.pdf"},
	})
	require.Equal(t, http.StatusCreated, status)
	appID := body["data"].(map[string]any)["id"].(string)

	status, _ = s.do(t, http.MethodPost, "/api/admin/vendor-applications/"+appID+"/approve", "admin", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPost, "/api/vendor/pets", "u2", map[string]any{"name": "Tom", "species": "cat"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Available", body["data"].(map[string]any)["status"])
}
