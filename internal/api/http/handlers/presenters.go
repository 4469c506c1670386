package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/api/dto"
	"github.com/spec-kit/adoption-service/internal/auth"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/service"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func actorFrom(p *auth.Principal) service.Actor {
	return service.Actor{UserID: p.ID(), Role: p.Role}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", 0), c.QueryInt("offset", 0)
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Address:   u.Address,
		AvatarURL: u.AvatarURL,
		Ban: dto.BanState{
			IsBanned:         u.Ban.IsBanned,
			BannedBy:         u.Ban.BannedBy,
			Reason:           u.Ban.Reason,
			BannedAt:         u.Ban.BannedAt,
			ScheduledUnbanAt: u.Ban.ScheduledUnbanAt,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func petResponse(p *domain.Pet) dto.PetResponse {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return dto.PetResponse{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		Gender:      p.Gender,
		Size:        p.Size,
		Description: p.Description,
		ImageURLs:   images,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func petResponses(pets []domain.Pet) []dto.PetResponse {
	items := make([]dto.PetResponse, 0, len(pets))
	for i := range pets {
		items = append(items, petResponse(&pets[i]))
	}
	return items
}

func adoptionResponse(r *domain.AdoptionRequest) dto.AdoptionRequestResponse {
	return dto.AdoptionRequestResponse{
		ID:                r.ID,
		AdoptionID:        r.AdoptionID,
		PetID:             r.PetID,
		ApplicantID:       r.ApplicantID,
		VendorID:          r.VendorID,
		FullName:          r.Snapshot.FullName,
		Email:             r.Snapshot.Email,
		Phone:             r.Snapshot.Phone,
		Address:           r.Snapshot.Address,
		PetName:           r.Snapshot.PetName,
		ReasonForAdoption: r.ReasonForAdoption,
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func adoptionResponses(reqs []domain.AdoptionRequest) []dto.AdoptionRequestResponse {
	items := make([]dto.AdoptionRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, adoptionResponse(&reqs[i]))
	}
	return items
}

func vendorResponse(v *domain.Vendor) dto.VendorResponse {
	return dto.VendorResponse{
		ID:               v.ID,
		UserID:           v.UserID,
		OrganizationName: v.OrganizationName,
		ContactPerson:    v.ContactPerson,
		Email:            v.Email,
		Phone:            v.Phone,
		Address:          v.Address,
		Description:      v.Description,
		Website:          v.Website,
		Status:           string(v.Status),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func applicationResponse(a *domain.VendorApplication) dto.VendorApplicationResponse {
	return dto.VendorApplicationResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		OrganizationName:   a.OrganizationName,
		ContactPerson:      a.ContactPerson,
		Email:              a.Email,
		Phone:              a.Phone,
		Address:            a.Address,
		Description:        a.Description,
		Website:            a.Website,
		OrganizationImages: a.OrganizationImages,
		IdentityDocuments:  a.IdentityDocuments,
		Status:             string(a.Status),
		ReviewedBy:         a.ReviewedBy,
		ReviewedAt:         a.ReviewedAt,
		RejectionReason:    a.RejectionReason,
		CreatedAt:          a.CreatedAt,
	}
}

func pairResponses(pairs []domain.AdoptedPair) []dto.AdoptedPair {
	items := make([]dto.AdoptedPair, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, dto.AdoptedPair{UserID: p.UserID, PetID: p.PetID})
	}
	return items
}

func dashboardResponse(d *domain.Dashboard) dto.DashboardResponse {
	resp := dto.DashboardResponse{
		Totals: dto.Totals{
			Users:               d.Totals.Users,
			Vendors:             d.Totals.Vendors,
			Pets:                d.Totals.Pets,
			AdoptionRequests:    d.Totals.AdoptionRequests,
			PendingApplications: d.Totals.PendingApplications,
		},
		PetsBySpecies:    countBuckets(d.PetsBySpecies),
		PetsByStatus:     countBuckets(d.PetsByStatus),
		RequestsByStatus: countBuckets(d.RequestsByStatus),
		Today:            map[string]int64{},
		Daily:            map[string][]dto.TimeBucket{},
		Monthly:          map[string][]dto.TimeBucket{},
		RecentUsers:      userResponses(d.RecentUsers),
		RecentPets:       petResponses(d.RecentPets),
		RecentRequests:   adoptionResponses(d.RecentRequests),
		GeneratedAt:      d.GeneratedAt,
	}
	for entity, count := range d.Today {
		resp.Today[string(entity)] = count
	}
	for entity, buckets := range d.Daily {
		resp.Daily[string(entity)] = timeBuckets(buckets)
	}
	for entity, buckets := range d.Monthly {
		resp.Monthly[string(entity)] = timeBuckets(buckets)
	}
	return resp
}

func countBuckets(in []domain.Bucket) []dto.CountBucket {
	out := make([]dto.CountBucket, 0, len(in))
	for _, b := range in {
		out = append(out, dto.CountBucket{Key: b.Key, Count: b.Count})
	}
	return out
}

func timeBuckets(in []domain.TimeBucket) []dto.TimeBucket {
	out := make([]dto.TimeBucket, 0, len(in))
	for _, b := range in {
		out = append(out, dto.TimeBucket{Start: b.Start, Count: b.Count})
	}
	return out
}
