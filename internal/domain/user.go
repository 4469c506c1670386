package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// BanState records a time-bounded ban. ScheduledUnbanAt is the durable run-at
// for the unban sweep.
type BanState struct {
	IsBanned         bool
	BannedBy         *string
	Reason           string
	BannedAt         *time.Time
	ScheduledUnbanAt *time.Time
}

// User is an account holder: adopter, vendor owner or admin.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Address      string
	AvatarURL    string
	Ban          BanState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UnbanDue reports whether a scheduled unban has come due at now.
func (b BanState) UnbanDue(now time.Time) bool {
	return b.IsBanned && b.ScheduledUnbanAt != nil && !b.ScheduledUnbanAt.After(now)
}

// AdoptedPair is one membership of a user's adopted-pets set.
type AdoptedPair struct {
	UserID string
	PetID  string
}
