package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/service"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// AdoptionHandler exposes the adoption request lifecycle.
type AdoptionHandler struct {
	service *service.AdoptionService
	vendors *service.VendorService
}

// NewAdoptionHandler constructs handler.
func NewAdoptionHandler(adoptionService *service.AdoptionService, vendorService *service.VendorService) *AdoptionHandler {
	return &AdoptionHandler{service: adoptionService, vendors: vendorService}
}

// Apply handles POST /api/adoption/apply.
func (h *AdoptionHandler) Apply(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApplyAdoptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	applicantID := strings.TrimSpace(req.ApplicantID)
	if applicantID != "" && applicantID != principal.ID() && !principal.IsAdmin() {
		return apperrors.NewForbidden("applicants may only apply for themselves")
	}

	created, err := h.service.SubmitRequest(c.UserContext(), service.SubmitAdoptionInput{
		AdoptionID:        req.AdoptionID,
		PetID:             req.PetID,
		ApplicantID:       req.ApplicantID,
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		ReasonForAdoption: req.ReasonForAdoption,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"adoptionRequest": adoptionResponse(created)})
}

// Approve handles POST /api/adoption/approve.
func (h *AdoptionHandler) Approve(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApproveAdoptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.PetID) == "" {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"petId"}})
	}
	if err := h.service.AuthorizePetManager(c.UserContext(), actorFrom(principal), req.PetID); err != nil {
		return err
	}
	if _, err := h.service.ApproveRequest(c.UserContext(), req.AdoptionID, req.ApplicantID, req.PetID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Adoption request approved"})
}

// Reject handles POST /api/adoption/reject.
func (h *AdoptionHandler) Reject(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RejectAdoptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.PetID) == "" {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"petId"}})
	}
	if err := h.service.AuthorizePetManager(c.UserContext(), actorFrom(principal), req.PetID); err != nil {
		return err
	}
	if _, err := h.service.RejectRequest(c.UserContext(), req.AdoptionID, req.PetID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Adoption request rejected"})
}

// RejectCompeting handles POST /api/adoption/reject-competing.
func (h *AdoptionHandler) RejectCompeting(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RejectCompetingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.PetID) == "" {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": []string{"petId"}})
	}
	if err := h.service.AuthorizePetManager(c.UserContext(), actorFrom(principal), req.PetID); err != nil {
		return err
	}
	rejected, err := h.service.RejectCompetingRequests(c.UserContext(), req.PetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"rejected": len(rejected),
		"requests": adoptionResponses(rejected),
	}})
}

// AdoptedPets handles GET /api/adoption/:userId. Access is checked by
// auth.RequireSelfOrAdmin on the route.
func (h *AdoptionHandler) AdoptedPets(c *fiber.Ctx) error {
	pets, err := h.service.ListAdoptedPets(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"adoptedPets": petResponses(pets)})
}

// MyRequests handles GET /api/users/me/adoption-requests.
func (h *AdoptionHandler) MyRequests(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	reqs, err := h.service.ListApplicantRequests(c.UserContext(), principal.ID(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adoptionResponses(reqs)})
}

// VendorInbox handles GET /api/vendor/adoption-requests.
func (h *AdoptionHandler) VendorInbox(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	vendor, err := h.vendors.GetVendorForUser(c.UserContext(), principal.ID())
	if err != nil {
		return err
	}
	var statuses []domain.AdoptionStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.AdoptionStatus(strings.TrimSpace(part)))
		}
	}
	limit, offset := pageParams(c)
	reqs, err := h.service.ListVendorRequests(c.UserContext(), vendor.ID, statuses, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adoptionResponses(reqs)})
}
