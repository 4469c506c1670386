package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/notify"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

func applicationInput() VendorApplicationInput {
	return VendorApplicationInput{
		VendorProfile: domain.VendorProfile{
			OrganizationName: "Paws Rescue",
			ContactPerson:    "Ada",
			Email:            "paws@example.com",
			Phone:            "555-0101",
			Address:          "2 Shelter Rd",
		},
		OrganizationImages: []string{"uploads/front.jpg"},
		IdentityDocuments:  []string{"uploads/license.pdf"},
	}
}

func TestSubmitApplication_RequiresDocuments(t *testing.T) {
	h := newHarness(t)
	in := applicationInput()
	in.IdentityDocuments = []string{" "}

	_, err := h.vendors.SubmitApplication(context.Background(), h.applicant.ID, in)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestSubmitApplication_ConflictsOnPendingOrExistingVendor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.vendors.SubmitApplication(ctx, h.applicant.ID, applicationInput())
	require.NoError(t, err)
	_, err = h.vendors.SubmitApplication(ctx, h.applicant.ID, applicationInput())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = h.vendors.SubmitApplication(ctx, h.owner.ID, applicationInput())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestApproveApplication_PromotesUserAndCreatesVendor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app, err := h.vendors.SubmitApplication(ctx, h.applicant.ID, applicationInput())
	require.NoError(t, err)

	pending, err := h.vendors.ListPendingApplications(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	vendor, err := h.vendors.ApproveApplication(ctx, h.admin.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorStatusActive, vendor.Status)
	assert.Equal(t, "Paws Rescue", vendor.OrganizationName)

	user, err := h.store.Users().GetByID(ctx, h.applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVendor, user.Role)

	again, err := h.vendors.ApproveApplication(ctx, h.admin.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, again.ID)
	assert.Len(t, h.notifier.byTemplate(notify.TemplateVendorApproved), 1)
}

func TestRejectApplication_RevokesApprovedVendor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app, err := h.vendors.SubmitApplication(ctx, h.applicant.ID, applicationInput())
	require.NoError(t, err)
	vendor, err := h.vendors.ApproveApplication(ctx, h.admin.ID, app.ID)
	require.NoError(t, err)

	rejected, err := h.vendors.RejectApplication(ctx, h.admin.ID, app.ID, "forged license")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "forged license", *rejected.RejectionReason)

	user, err := h.store.Users().GetByID(ctx, h.applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	_, err = h.vendors.GetVendor(ctx, vendor.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = h.vendors.ApproveApplication(ctx, h.admin.ID, app.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	sent := h.notifier.byTemplate(notify.TemplateVendorRejected)
	require.Len(t, sent, 1)
	assert.Equal(t, "forged license", sent[0].Data["Reason"])
}

func TestUpdateVendorStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	vendor, err := h.vendors.UpdateVendorStatus(ctx, h.vendor.ID, domain.VendorStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorStatusSuspended, vendor.Status)

	_, err = h.vendors.UpdateVendorStatus(ctx, h.vendor.ID, "Closed")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = h.vendors.UpdateVendorStatus(ctx, "ghost", domain.VendorStatusActive)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
