package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	"github.com/spec-kit/adoption-service/internal/service"
)

// PetsHandler exposes the catalog and favorites.
type PetsHandler struct {
	pets    *service.PetService
	vendors *service.VendorService
}

// NewPetsHandler constructs handler.
func NewPetsHandler(petService *service.PetService, vendorService *service.VendorService) *PetsHandler {
	return &PetsHandler{pets: petService, vendors: vendorService}
}

// Browse handles GET /api/pets.
func (h *PetsHandler) Browse(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.PetFilter{
		VendorID:   optionalQuery(c, "vendorId"),
		Species:    optionalQuery(c, "species"),
		SearchTerm: optionalQuery(c, "q"),
		Limit:      limit,
		Offset:     offset,
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.PetStatus(*status)
		filter.Status = &s
	}
	pets, err := h.pets.BrowsePets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponses(pets)})
}

// Get handles GET /api/pets/:id.
func (h *PetsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.pets.GetPet(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PetDetailResponse{
		PetResponse: petResponse(&detail.Pet),
		Vendor: dto.VendorSummary{
			ID:               detail.Vendor.ID,
			OrganizationName: detail.Vendor.OrganizationName,
			Email:            detail.Vendor.Email,
			Phone:            detail.Vendor.Phone,
		},
	}})
}

// Create handles POST /api/vendor/pets.
func (h *PetsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	pet, err := h.pets.CreatePet(c.UserContext(), principal.ID(), petInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": petResponse(pet)})
}

// Update handles PUT /api/vendor/pets/:id.
func (h *PetsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	pet, err := h.pets.UpdatePet(c.UserContext(), principal.ID(), c.Params("id"), petInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponse(pet)})
}

// Delete handles DELETE /api/vendor/pets/:id.
func (h *PetsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.pets.DeletePet(c.UserContext(), actorFrom(principal), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// VendorPets handles GET /api/vendor/pets.
func (h *PetsHandler) VendorPets(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	vendor, err := h.vendors.GetVendorForUser(c.UserContext(), principal.ID())
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	pets, err := h.pets.ListVendorPets(c.UserContext(), vendor.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponses(pets)})
}

// ToggleFavorite handles POST /api/users/me/favorites/:petId.
func (h *PetsHandler) ToggleFavorite(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	petID := c.Params("petId")
	favorited, err := h.pets.ToggleFavorite(c.UserContext(), principal.ID(), petID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FavoriteToggleResponse{PetID: petID, Favorited: favorited}})
}

// Favorites handles GET /api/users/me/favorites.
func (h *PetsHandler) Favorites(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	pets, err := h.pets.ListFavorites(c.UserContext(), principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": petResponses(pets)})
}

func petInput(req dto.PetRequest) service.PetInput {
	return service.PetInput{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		Gender:      req.Gender,
		Size:        req.Size,
		Description: req.Description,
		ImageURLs:   req.ImageURLs,
	}
}
