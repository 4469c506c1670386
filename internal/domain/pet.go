package domain

import "time"

// PetStatus enumerates catalog states for a pet.
type PetStatus string

const (
	PetStatusAvailable PetStatus = "Available"
	PetStatusPending   PetStatus = "Pending"
	PetStatusAdopted   PetStatus = "Adopted"
)

// Valid reports whether s is a known pet status.
func (s PetStatus) Valid() bool {
	switch s {
	case PetStatusAvailable, PetStatusPending, PetStatusAdopted:
		return true
	}
	return false
}

// Pet is a listing owned by exactly one vendor.
type Pet struct {
	ID          string
	VendorID    string
	Name        string
	Species     string
	Breed       string
	AgeMonths   int
	Gender      string
	Size        string
	Description string
	ImageURLs   []string
	Status      PetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PetWithVendor is a pet joined with its owning vendor.
type PetWithVendor struct {
	Pet    Pet
	Vendor Vendor
}
