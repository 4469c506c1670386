package dto

import "time"

// ApplyAdoptionRequest payload for POST /api/adoption/apply.
type ApplyAdoptionRequest struct {
	AdoptionID        string `json:"adoptionId"`
	PetID             string `json:"petId"`
	ApplicantID       string `json:"applicantId"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	ReasonForAdoption string `json:"reasonForAdoption"`
}

// ApproveAdoptionRequest payload for POST /api/adoption/approve.
type ApproveAdoptionRequest struct {
	AdoptionID  string `json:"adoptionId"`
	ApplicantID string `json:"applicantId"`
	PetID       string `json:"petId"`
}

// RejectAdoptionRequest payload for POST /api/adoption/reject.
type RejectAdoptionRequest struct {
	AdoptionID string `json:"adoptionId"`
	PetID      string `json:"petId"`
}

// RejectCompetingRequest payload for POST /api/adoption/reject-competing.
type RejectCompetingRequest struct {
	PetID string `json:"petId"`
}

// AdoptionRequestResponse is the public view of an adoption request.
type AdoptionRequestResponse struct {
	ID                string    `json:"id"`
	AdoptionID        string    `json:"adoptionId"`
	PetID             string    `json:"petId"`
	ApplicantID       string    `json:"applicantId"`
	VendorID          string    `json:"vendorId"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	PetName           string    `json:"petName"`
	ReasonForAdoption string    `json:"reasonForAdoption"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AdoptedPair is one adopted-set membership.
type AdoptedPair struct {
	UserID string `json:"userId"`
	PetID  string `json:"petId"`
}

// ReconcileResponse reports adopted-set repairs.
type ReconcileResponse struct {
	Added   []AdoptedPair `json:"added"`
	Removed []AdoptedPair `json:"removed"`
}
