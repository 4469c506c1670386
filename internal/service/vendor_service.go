package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// VendorApplicationInput is the shelter onboarding form.
type VendorApplicationInput struct {
	domain.VendorProfile
	OrganizationImages []string
	IdentityDocuments  []string
}

// VendorService handles shelter onboarding and vendor administration.
type VendorService struct {
	users        repository.UserRepository
	vendors      repository.VendorRepository
	applications repository.VendorApplicationRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	clock        Clock
}

// VendorDependencies bundles collaborators for the vendor service.
type VendorDependencies struct {
	UserRepo        repository.UserRepository
	VendorRepo      repository.VendorRepository
	ApplicationRepo repository.VendorApplicationRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Clock           Clock
}

// NewVendorService constructs the service.
func NewVendorService(deps VendorDependencies) *VendorService {
	return &VendorService{
		users:        deps.UserRepo,
		vendors:      deps.VendorRepo,
		applications: deps.ApplicationRepo,
		dispatcher:   deps.Dispatcher,
		logger:       nopLogger(deps.Logger),
		clock:        deps.Clock,
	}
}

// SubmitApplication files a Pending application for userID.
func (s *VendorService) SubmitApplication(ctx context.Context, userID string, input VendorApplicationInput) (*domain.VendorApplication, error) {
	profile := trimProfile(input.VendorProfile)
	if err := requireFields(map[string]string{
		"organizationName": profile.OrganizationName,
		"contactPerson":    profile.ContactPerson,
		"email":            profile.Email,
		"phone":            profile.Phone,
		"address":          profile.Address,
	}, "organizationName", "contactPerson", "email", "phone", "address"); err != nil {
		return nil, err
	}
	images := compactStrings(input.OrganizationImages)
	documents := compactStrings(input.IdentityDocuments)
	if len(images) == 0 || len(documents) == 0 {
		return nil, apperrors.NewValidationError("at least one organization image and one identity document are required",
			map[string]any{"organizationImages": len(images), "identityDocuments": len(documents)})
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": userID})
	}
	if _, err := s.vendors.GetByUserID(ctx, userID); err == nil {
		return nil, apperrors.NewConflict("user already operates a vendor", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "vendor", nil)
	}
	pending, err := s.applications.HasPending(ctx, userID)
	if err != nil {
		return nil, storeError(err, "vendor application", nil)
	}
	if pending {
		return nil, apperrors.NewConflict("an application is already pending review", nil)
	}

	app := &domain.VendorApplication{
		ID:                 uuid.NewString(),
		UserID:             userID,
		VendorProfile:      profile,
		OrganizationImages: images,
		IdentityDocuments:  documents,
		Status:             domain.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, storeError(err, "vendor application", nil)
	}
	return app, nil
}

// ListPendingApplications returns applications awaiting review, oldest first.
func (s *VendorService) ListPendingApplications(ctx context.Context) ([]domain.VendorApplication, error) {
	apps, err := s.applications.ListByStatus(ctx, domain.ApplicationStatusPending)
	if err != nil {
		return nil, storeError(err, "vendor applications", nil)
	}
	return apps, nil
}

// ApproveApplication promotes the applicant to vendor and creates an Active
// Vendor. Approving an approved application returns the existing vendor.
func (s *VendorService) ApproveApplication(ctx context.Context, adminID, applicationID string) (*domain.Vendor, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	switch app.Status {
	case domain.ApplicationStatusApproved:
		vendor, err := s.vendors.GetByUserID(ctx, app.UserID)
		if err != nil {
			return nil, storeError(err, "vendor", map[string]any{"userId": app.UserID})
		}
		return vendor, nil
	case domain.ApplicationStatusRejected:
		return nil, apperrors.NewConflict("application was rejected", map[string]any{"applicationId": applicationID})
	}

	user, err := s.users.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": app.UserID})
	}
	if !user.IsAdmin() {
		if err := s.users.UpdateRole(ctx, user.ID, domain.RoleVendor); err != nil {
			return nil, storeError(err, "user", nil)
		}
	}

	vendor := &domain.Vendor{
		ID:            uuid.NewString(),
		UserID:        app.UserID,
		VendorProfile: app.VendorProfile,
		Status:        domain.VendorStatusActive,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("user already operates a vendor", nil)
		}
		return nil, storeError(err, "vendor", nil)
	}

	if err := s.markReviewed(ctx, app, adminID, domain.ApplicationStatusApproved, nil); err != nil {
		return nil, err
	}
	s.logger.Info("vendor application approved", zap.String("application_id", app.ID), zap.String("vendor_id", vendor.ID))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventVendorApproved, app.ID, &adminID, s.clock.now(), events.VendorReviewedPayload{
		ApplicationID:    app.ID,
		UserID:           app.UserID,
		OrganizationName: app.OrganizationName,
		Email:            app.Email,
	}))
	return vendor, nil
}

// RejectApplication rejects a pending or approved application. Rejecting an
// approved one demotes the user and removes their vendor with its pets.
func (s *VendorService) RejectApplication(ctx context.Context, adminID, applicationID, reason string) (*domain.VendorApplication, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.CanTransition(domain.ApplicationStatusRejected) {
		return app, nil
	}

	user, err := s.users.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": app.UserID})
	}
	if user.Role == domain.RoleVendor {
		if err := s.users.UpdateRole(ctx, user.ID, domain.RoleUser); err != nil {
			return nil, storeError(err, "user", nil)
		}
	}
	if err := s.vendors.DeleteByUserID(ctx, app.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "vendor", nil)
	}

	reason = strings.TrimSpace(reason)
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	if err := s.markReviewed(ctx, app, adminID, domain.ApplicationStatusRejected, reasonPtr); err != nil {
		return nil, err
	}
	s.logger.Info("vendor application rejected", zap.String("application_id", app.ID))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventVendorRejected, app.ID, &adminID, s.clock.now(), events.VendorReviewedPayload{
		ApplicationID:    app.ID,
		UserID:           app.UserID,
		OrganizationName: app.OrganizationName,
		Email:            app.Email,
		Reason:           reason,
	}))
	return app, nil
}

// UpdateVendorStatus changes a vendor's operating status.
func (s *VendorService) UpdateVendorStatus(ctx context.Context, vendorID string, status domain.VendorStatus) (*domain.Vendor, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid vendor status", map[string]any{"status": status})
	}
	if err := s.vendors.UpdateStatus(ctx, vendorID, status); err != nil {
		return nil, storeError(err, "vendor", map[string]any{"vendorId": vendorID})
	}
	return s.GetVendor(ctx, vendorID)
}

// GetVendor fetches a vendor by id.
func (s *VendorService) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	vendor, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, storeError(err, "vendor", map[string]any{"vendorId": vendorID})
	}
	return vendor, nil
}

// GetVendorForUser fetches the vendor operated by userID.
func (s *VendorService) GetVendorForUser(ctx context.Context, userID string) (*domain.Vendor, error) {
	vendor, err := s.vendors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "vendor", map[string]any{"userId": userID})
	}
	return vendor, nil
}

// ListVendors lists vendors for the admin console.
func (s *VendorService) ListVendors(ctx context.Context, filter repository.VendorFilter) ([]domain.Vendor, error) {
	vendors, err := s.vendors.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "vendors", nil)
	}
	return vendors, nil
}

func (s *VendorService) getApplication(ctx context.Context, id string) (*domain.VendorApplication, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "vendor application", map[string]any{"applicationId": id})
	}
	return app, nil
}

func (s *VendorService) markReviewed(ctx context.Context, app *domain.VendorApplication, adminID string, status domain.ApplicationStatus, reason *string) error {
	now := s.clock.now()
	app.Status = status
	app.ReviewedBy = &adminID
	app.ReviewedAt = &now
	app.RejectionReason = reason
	if err := s.applications.UpdateReview(ctx, app); err != nil {
		return storeError(err, "vendor application", nil)
	}
	return nil
}

func trimProfile(p domain.VendorProfile) domain.VendorProfile {
	return domain.VendorProfile{
		OrganizationName: strings.TrimSpace(p.OrganizationName),
		ContactPerson:    strings.TrimSpace(p.ContactPerson),
		Email:            strings.TrimSpace(p.Email),
		Phone:            strings.TrimSpace(p.Phone),
		Address:          strings.TrimSpace(p.Address),
		Description:      strings.TrimSpace(p.Description),
		Website:          strings.TrimSpace(p.Website),
	}
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
