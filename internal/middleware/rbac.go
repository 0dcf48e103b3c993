package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/admin-audit-api/internal/utils"
)

// RequireRole restricts a route group to the listed roles. Matching is
// case-insensitive. A request that carries no role at all is treated as
// unauthenticated rather than merely unauthorized.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = true
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		switch {
		case role == "":
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		case !allowed[role]:
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// normalizeRoleValue folds a role local into its canonical lowercase
// form. Roles are always stored as strings by the JWT middleware, so
// anything else collapses to empty.
func normalizeRoleValue(value interface{}) string {
	role, _ := value.(string)
	return strings.ToLower(strings.TrimSpace(role))
}
