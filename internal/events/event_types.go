package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAdoptionSubmitted EventType = "adoption.submitted"
	EventAdoptionApproved  EventType = "adoption.approved"
	EventAdoptionRejected  EventType = "adoption.rejected"
	EventUserBanned        EventType = "user.banned"
	EventUserUnbanned      EventType = "user.unbanned"
	EventVendorApproved    EventType = "vendor.approved"
	EventVendorRejected    EventType = "vendor.rejected"
)

// Event represents a domain event emitted by services. SubjectID is the id of
// the aggregate the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, subjectID string, actorID *string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// AdoptionPayload is carried by every adoption.* event.
type AdoptionPayload struct {
	AdoptionID     string `json:"adoption_id"`
	ApplicantID    string `json:"applicant_id"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	ApplicantPhone string `json:"applicant_phone"`
	PetID          string `json:"pet_id"`
	PetName        string `json:"pet_name"`
	VendorID       string `json:"vendor_id"`
	VendorEmail    string `json:"vendor_email"`
	VendorName     string `json:"vendor_name"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Reason           string    `json:"reason"`
	ScheduledUnbanAt time.Time `json:"scheduled_unban_at"`
}

// UserUnbannedPayload payload.
type UserUnbannedPayload struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Scheduled bool   `json:"scheduled"`
}

// VendorReviewedPayload is carried by vendor.approved and vendor.rejected.
type VendorReviewedPayload struct {
	ApplicationID    string `json:"application_id"`
	UserID           string `json:"user_id"`
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Reason           string `json:"reason,omitempty"`
}
