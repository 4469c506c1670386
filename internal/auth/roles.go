package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/adoption-service/internal/domain"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// RequireRole admits principals holding one of allowed. Admins always pass,
// so vendor-only routes stay reachable for moderation.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, err := requirePrincipal(c)
		if err != nil {
			return err
		}
		if _, ok := allowedSet[principal.Role]; !ok && !principal.IsAdmin() {
			return apperrors.NewDomainError(apperrors.CodeForbidden, "insufficient role", fiber.StatusForbidden,
				map[string]any{"required": allowed, "role": principal.Role})
		}
		return c.Next()
	}
}

// RequireAnyRole admits any authenticated principal.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := requirePrincipal(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin admits the user named by the route parameter param, or
// an admin.
func RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := requirePrincipal(c)
		if err != nil {
			return err
		}
		if c.Params(param) != principal.ID() && !principal.IsAdmin() {
			return apperrors.NewForbidden("access restricted to the account owner")
		}
		return c.Next()
	}
}

func requirePrincipal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
