package domain

import "time"

// Token is the metadata of an issued access token. The signed string itself
// is never stored.
type Token struct {
	ID        string
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn is the remaining lifetime at now, floored at zero.
func (t Token) ExpiresIn(now time.Time) time.Duration {
	if d := t.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
