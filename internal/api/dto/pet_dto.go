package dto

import "time"

// PetRequest payload for creating or editing a pet.
type PetRequest struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	AgeMonths   int      `json:"ageMonths"`
	Gender      string   `json:"gender"`
	Size        string   `json:"size"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"imageUrls"`
}

// PetResponse is the public view of a pet.
type PetResponse struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendorId"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	AgeMonths   int       `json:"ageMonths"`
	Gender      string    `json:"gender"`
	Size        string    `json:"size"`
	Description string    `json:"description"`
	ImageURLs   []string  `json:"imageUrls"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PetDetailResponse is a pet with its vendor summary.
type PetDetailResponse struct {
	PetResponse
	Vendor VendorSummary `json:"vendor"`
}

// FavoriteToggleResponse reports the favorite state after a toggle.
type FavoriteToggleResponse struct {
	PetID     string `json:"petId"`
	Favorited bool   `json:"favorited"`
}
