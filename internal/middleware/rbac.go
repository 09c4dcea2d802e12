package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/ecotask-api/internal/utils"
)

// RequireRole ensures that the authenticated actor holds one of the allowed roles.
// Roles compare case-insensitively against the JWT role claim.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := strings.ToLower(strings.TrimSpace(UserRole(c)))
		if _, ok := allowed[role]; !ok || role == "" {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
