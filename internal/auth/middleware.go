package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/procureflow/procureflow/internal/db/models"
)

// LocalsUserKey is the fiber.Locals key holding the authenticated user.
const LocalsUserKey = "currentUser"

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthenticated",
		"message": "Authentication required",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "forbidden",
		"message": "You do not have permission to perform this action",
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// RequireAuth resolves the bearer token to an active user and stores it
// in fiber.Locals for downstream handlers.
func RequireAuth(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return unauthenticated(c)
		}

		user, err := authService.ResolveToken(token)
		if err != nil {
			log.Debug().Err(err).Msg("token resolution failed")

			return unauthenticated(c)
		}

		c.Locals(LocalsUserKey, user)

		return c.Next()
	}
}

// RequireRole allows only the listed roles. Must run after RequireAuth.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthenticated(c)
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		log.Warn().Uint64("user_id", user.ID).Str("role", string(user.Role)).
			Str("path", c.Path()).Msg("role check failed")

		return forbidden(c)
	}
}

// RequirePermission allows only users whose role grants the permission.
// Must run after RequireAuth.
func RequirePermission(permission Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthenticated(c)
		}

		if !PermissionsFor(user.Role).Has(permission) {
			log.Warn().Uint64("user_id", user.ID).Str("role", string(user.Role)).
				Str("permission", string(permission)).Msg("permission check failed")

			return forbidden(c)
		}

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth,
// or nil when the request is unauthenticated.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsUserKey).(*models.User)

	return user
}
