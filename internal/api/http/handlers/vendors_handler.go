package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	"github.com/spec-kit/adoption-service/internal/service"
)

// VendorsHandler exposes shelter onboarding and vendor administration.
type VendorsHandler struct {
	vendors *service.VendorService
}

// NewVendorsHandler constructs handler.
func NewVendorsHandler(vendorService *service.VendorService) *VendorsHandler {
	return &VendorsHandler{vendors: vendorService}
}

// Apply handles POST /api/vendors/apply.
func (h *VendorsHandler) Apply(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.VendorApplicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	app, err := h.vendors.SubmitApplication(c.UserContext(), principal.ID(), service.VendorApplicationInput{
		VendorProfile: domain.VendorProfile{
			OrganizationName: req.OrganizationName,
			ContactPerson:    req.ContactPerson,
			Email:            req.Email,
			Phone:            req.Phone,
			Address:          req.Address,
			Description:      req.Description,
			Website:          req.Website,
		},
		OrganizationImages: req.OrganizationImages,
		IdentityDocuments:  req.IdentityDocuments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(app)})
}

// Mine handles GET /api/vendor/me.
func (h *VendorsHandler) Mine(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	vendor, err := h.vendors.GetVendorForUser(c.UserContext(), principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendorResponse(vendor)})
}

// Get handles GET /api/vendors/:id.
func (h *VendorsHandler) Get(c *fiber.Ctx) error {
	vendor, err := h.vendors.GetVendor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendorResponse(vendor)})
}

// ListPendingApplications handles GET /api/admin/vendor-applications.
func (h *VendorsHandler) ListPendingApplications(c *fiber.Ctx) error {
	apps, err := h.vendors.ListPendingApplications(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.VendorApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, applicationResponse(&apps[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ApproveApplication handles POST /api/admin/vendor-applications/:id/approve.
func (h *VendorsHandler) ApproveApplication(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	vendor, err := h.vendors.ApproveApplication(c.UserContext(), principal.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendorResponse(vendor)})
}

// RejectApplication handles POST /api/admin/vendor-applications/:id/reject.
func (h *VendorsHandler) RejectApplication(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RejectApplicationRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	app, err := h.vendors.RejectApplication(c.UserContext(), principal.ID(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationResponse(app)})
}

// List handles GET /api/admin/vendors.
func (h *VendorsHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.VendorFilter{SearchTerm: optionalQuery(c, "q"), Limit: limit, Offset: offset}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.VendorStatus(*status)
		filter.Status = &s
	}
	vendors, err := h.vendors.ListVendors(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.VendorResponse, 0, len(vendors))
	for i := range vendors {
		items = append(items, vendorResponse(&vendors[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus handles PATCH /api/admin/vendors/:id/status.
func (h *VendorsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.VendorStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vendor, err := h.vendors.UpdateVendorStatus(c.UserContext(), c.Params("id"), domain.VendorStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vendorResponse(vendor)})
}
