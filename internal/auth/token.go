package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// tokenIssuer is stamped into every access token and required on parse.
const tokenIssuer = "pet-adoption-service"

// ErrInvalidToken wraps every parse failure.
var ErrInvalidToken = errors.New("invalid access token")

// TokenManager issues and verifies HS256 access tokens. The role in a token is
// informational; middleware reloads the user so role changes and bans apply
// before the token expires.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager. A non-positive TTL defaults to one hour.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// WithClock replaces the issuing and validation clock.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims is the access token payload.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID is the user id the token was issued to.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// GenerateToken signs an access token for a user.
func (tm *TokenManager) GenerateToken(subjectID string, role domain.Role) (string, domain.Token, error) {
	if subjectID == "" || !role.Valid() {
		return "", domain.Token{}, fmt.Errorf("cannot issue token for subject %q with role %q", subjectID, role)
	}
	now := tm.now().UTC().Truncate(time.Second)
	meta := domain.Token{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(tm.ttl),
	}
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        meta.ID,
			Issuer:    tokenIssuer,
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(meta.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", domain.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, meta, nil
}

// ParseToken verifies signature, issuer and expiry and returns the claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return tm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}
	return claims, nil
}
