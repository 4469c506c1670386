package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Role is read from the stored
// user, so a promotion or demotion takes effect without a new token.
type Principal struct {
	User *domain.User
	Role domain.Role
}

// ID returns the caller's user id.
func (p *Principal) ID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == domain.RoleAdmin
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	now    func() time.Time
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, now: time.Now}
}

// Handle enforces authentication for protected routes. Banned users are
// refused until their ban is lifted or has come due.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.SubjectID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	if user.Ban.IsBanned && !user.Ban.UnbanDue(m.now()) {
		return BannedError(user.Ban)
	}

	c.Locals(principalKey, &Principal{User: user, Role: user.Role})
	return c.Next()
}

// BannedError describes an active ban to the caller.
func BannedError(ban domain.BanState) error {
	details := map[string]any{"reason": ban.Reason}
	if ban.ScheduledUnbanAt != nil {
		details["scheduledUnbanAt"] = ban.ScheduledUnbanAt.UTC().Format(time.RFC3339)
	}
	return apperrors.NewDomainError(apperrors.CodeForbidden, "account is banned", fiber.StatusForbidden, details)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// WithPrincipal stores a principal on the context. Used by tests and by
// handlers mounted behind a custom authenticator.
func WithPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
