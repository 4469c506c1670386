package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int64     `json:"expiresIn"`
}

// ProfileUpdateRequest carries optional profile edits.
type ProfileUpdateRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	AvatarURL *string `json:"avatarUrl"`
}

// BanState is the public view of a ban.
type BanState struct {
	IsBanned         bool       `json:"isBanned"`
	BannedBy         *string    `json:"bannedBy,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	BannedAt         *time.Time `json:"bannedAt,omitempty"`
	ScheduledUnbanAt *time.Time `json:"scheduledUnbanAt,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	AvatarURL string    `json:"avatarUrl"`
	Ban       BanState  `json:"ban"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BanUserRequest bans a user for DurationMinutes.
type BanUserRequest struct {
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"durationMinutes"`
}
