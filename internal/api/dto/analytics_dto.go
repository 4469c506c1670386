package dto

import "time"

// CountBucket is one group of a group-by count.
type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// TimeBucket is a count for the period starting at Start.
type TimeBucket struct {
	Start time.Time `json:"start"`
	Count int64     `json:"count"`
}

// Totals counts the main collections.
type Totals struct {
	Users               int64 `json:"users"`
	Vendors             int64 `json:"vendors"`
	Pets                int64 `json:"pets"`
	AdoptionRequests    int64 `json:"adoptionRequests"`
	PendingApplications int64 `json:"pendingApplications"`
}

// DashboardResponse is the admin analytics payload.
type DashboardResponse struct {
	Totals           Totals                    `json:"totals"`
	PetsBySpecies    []CountBucket             `json:"petsBySpecies"`
	PetsByStatus     []CountBucket             `json:"petsByStatus"`
	RequestsByStatus []CountBucket             `json:"requestsByStatus"`
	Today            map[string]int64          `json:"today"`
	Daily            map[string][]TimeBucket   `json:"daily"`
	Monthly          map[string][]TimeBucket   `json:"monthly"`
	RecentUsers      []UserResponse            `json:"recentUsers"`
	RecentPets       []PetResponse             `json:"recentPets"`
	RecentRequests   []AdoptionRequestResponse `json:"recentRequests"`
	GeneratedAt      time.Time                 `json:"generatedAt"`
}
