package domain

import "time"

// AnalyticsEntity names a collection that can be counted by creation time.
type AnalyticsEntity string

const (
	EntityUsers    AnalyticsEntity = "users"
	EntityPets     AnalyticsEntity = "pets"
	EntityRequests AnalyticsEntity = "adoption_requests"
)

// Totals counts the main collections.
type Totals struct {
	Users               int64
	Vendors             int64
	Pets                int64
	AdoptionRequests    int64
	PendingApplications int64
}

// Bucket is one group of a group-by count.
type Bucket struct {
	Key   string
	Count int64
}

// TimeBucket is a count for the period starting at Start.
type TimeBucket struct {
	Start time.Time
	Count int64
}

// Dashboard is the admin analytics payload.
type Dashboard struct {
	Totals           Totals
	PetsBySpecies    []Bucket
	PetsByStatus     []Bucket
	RequestsByStatus []Bucket
	Today            map[AnalyticsEntity]int64
	Daily            map[AnalyticsEntity][]TimeBucket
	Monthly          map[AnalyticsEntity][]TimeBucket
	RecentUsers      []User
	RecentPets       []Pet
	RecentRequests   []AdoptionRequest
	GeneratedAt      time.Time
}
