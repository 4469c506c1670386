package domain

import "time"

// AdoptionStatus enumerates lifecycle states for adoption requests.
type AdoptionStatus string

const (
	AdoptionStatusPending  AdoptionStatus = "Pending"
	AdoptionStatusApproved AdoptionStatus = "Approved"
	AdoptionStatusRejected AdoptionStatus = "Rejected"
)

// ApplicantSnapshot is copied from the request body at submission time and is
// never refreshed from later profile edits.
type ApplicantSnapshot struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	PetName  string
}

// AdoptionRequest is a user's application to adopt a pet.
type AdoptionRequest struct {
	ID                string
	AdoptionID        string
	ApplicantID       string
	PetID             string
	VendorID          string
	Snapshot          ApplicantSnapshot
	ReasonForAdoption string
	Status            AdoptionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Approved and Rejected are absorbing.
var adoptionTransitions = map[AdoptionStatus][]AdoptionStatus{
	AdoptionStatusPending:  {AdoptionStatusApproved, AdoptionStatusRejected},
	AdoptionStatusApproved: {},
	AdoptionStatusRejected: {},
}

// CanTransition reports whether the request may move to next.
func (r *AdoptionRequest) CanTransition(next AdoptionStatus) bool {
	for _, candidate := range adoptionTransitions[r.Status] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request has left Pending.
func (r *AdoptionRequest) IsTerminal() bool {
	return len(adoptionTransitions[r.Status]) == 0
}

// TransitionOutcome reports what an approve or reject call did.
type TransitionOutcome struct {
	Request *AdoptionRequest
	Changed bool
}
