package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/access"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// RequireAuthenticated ensures some session slot resolved to a principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !PrincipalFromContext(c).Authenticated() {
			return apperrors.NewUnauthorized("session required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is a super_admin or admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromContext(c)
		if !p.Authenticated() {
			return apperrors.NewUnauthorized("session required")
		}
		if !p.Kind.IsAdmin() {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}

// RequireCapability gates a route on a capability key via the capability gate.
func RequireCapability(key access.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromContext(c)
		if !p.Authenticated() {
			return apperrors.NewUnauthorized("session required")
		}
		if !access.CanAccess(p, string(key)) {
			return apperrors.NewForbidden("missing capability " + string(key))
		}
		return c.Next()
	}
}
