package domain

import "time"

// ApplicationStatus enumerates vendor application review states.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

// VendorApplication is a request to become a Vendor. It does not create the
// vendor until approved.
type VendorApplication struct {
	ID     string
	UserID string
	VendorProfile
	OrganizationImages []string
	IdentityDocuments  []string
	Status             ApplicationStatus
	ReviewedBy         *string
	ReviewedAt         *time.Time
	RejectionReason    *string
	CreatedAt          time.Time
}

// Rejection after approval is allowed: it revokes the vendor.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved: {ApplicationStatusRejected},
	ApplicationStatusRejected: {},
}

// CanTransition reports whether the application may move to next.
func (a *VendorApplication) CanTransition(next ApplicationStatus) bool {
	for _, candidate := range applicationTransitions[a.Status] {
		if candidate == next {
			return true
		}
	}
	return false
}
