package domain

import "time"

// VendorStatus enumerates the operating state of an approved shelter.
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "Active"
	VendorStatusSuspended VendorStatus = "Suspended"
	VendorStatusBanned    VendorStatus = "Banned"
)

// Valid reports whether s is a known vendor status.
func (s VendorStatus) Valid() bool {
	switch s {
	case VendorStatusActive, VendorStatusSuspended, VendorStatusBanned:
		return true
	}
	return false
}

// VendorProfile holds the organization fields shared by applications and vendors.
type VendorProfile struct {
	OrganizationName string
	ContactPerson    string
	Email            string
	Phone            string
	Address          string
	Description      string
	Website          string
}

// Vendor is an approved organization permitted to list pets. One per user.
type Vendor struct {
	ID     string
	UserID string
	VendorProfile
	Status    VendorStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanList reports whether the vendor may publish pets.
func (v *Vendor) CanList() bool {
	return v != nil && v.Status == VendorStatusActive
}
