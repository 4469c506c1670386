package dto

import "time"

// VendorApplicationRequest payload for POST /api/vendors/apply.
type VendorApplicationRequest struct {
	OrganizationName   string   `json:"organizationName"`
	ContactPerson      string   `json:"contactPerson"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	Address            string   `json:"address"`
	Description        string   `json:"description"`
	Website            string   `json:"website"`
	OrganizationImages []string `json:"organizationImages"`
	IdentityDocuments  []string `json:"identityDocuments"`
}

// VendorApplicationResponse is the public view of an application.
type VendorApplicationResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	OrganizationName   string     `json:"organizationName"`
	ContactPerson      string     `json:"contactPerson"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Address            string     `json:"address"`
	Description        string     `json:"description"`
	Website            string     `json:"website"`
	OrganizationImages []string   `json:"organizationImages"`
	IdentityDocuments  []string   `json:"identityDocuments"`
	Status             string     `json:"status"`
	ReviewedBy         *string    `json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time `json:"reviewedAt,omitempty"`
	RejectionReason    *string    `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// RejectApplicationRequest carries the rejection reason.
type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// VendorStatusRequest payload for PATCH /api/admin/vendors/:id/status.
type VendorStatusRequest struct {
	Status string `json:"status"`
}

// VendorSummary is the short vendor view embedded in pet details.
type VendorSummary struct {
	ID               string `json:"id"`
	OrganizationName string `json:"organizationName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
}

// VendorResponse is the public view of a vendor.
type VendorResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	OrganizationName string    `json:"organizationName"`
	ContactPerson    string    `json:"contactPerson"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	Description      string    `json:"description"`
	Website          string    `json:"website"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
