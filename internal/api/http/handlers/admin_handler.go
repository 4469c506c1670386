package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	"github.com/spec-kit/adoption-service/internal/service"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// AdminHandler exposes moderation, analytics and repair endpoints.
type AdminHandler struct {
	users     *service.UserService
	adoptions *service.AdoptionService
	analytics *service.AnalyticsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, adoptions *service.AdoptionService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{users: users, adoptions: adoptions, analytics: analytics}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.UserFilter{
		SearchTerm: optionalQuery(c, "q"),
		BannedOnly: c.QueryBool("banned", false),
		Limit:      limit,
		Offset:     offset,
	}
	if role := optionalQuery(c, "role"); role != nil {
		r := domain.Role(*role)
		if !r.Valid() {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": *role})
		}
		filter.Role = &r
	}
	users, err := h.users.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// GetUser handles GET /api/admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Ban handles POST /api/admin/users/:id/ban.
func (h *AdminHandler) Ban(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BanUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.BanUser(c.UserContext(), principal.ID(), c.Params("id"), req.Reason,
		time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Unban handles POST /api/admin/users/:id/unban.
func (h *AdminHandler) Unban(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.users.UnbanUser(c.UserContext(), principal.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), actorFrom(principal), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Analytics handles GET /api/admin/analytics. ?refresh=true bypasses the cache.
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	if c.QueryBool("refresh", false) {
		if err := h.analytics.Invalidate(c.UserContext()); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	dashboard, err := h.analytics.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(dashboard)})
}

// Reconcile handles POST /api/admin/reconcile.
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.adoptions.Reconcile(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReconcileResponse{
		Added:   pairResponses(report.Added),
		Removed: pairResponses(report.Removed),
	}})
}
