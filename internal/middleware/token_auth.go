package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/filevault/internal/service"
)

// Context key for the resolved user
const UserIDKey = "userID"

// RequireToken resolves the X-Token header and stores the user id in
// request locals. Absent or unresolved tokens yield a uniform 401.
func RequireToken(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Token")
		if token == "" {
			return unauthorized(c)
		}

		userID, err := auth.Resolve(c.Context(), token)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// OptionalToken resolves the X-Token header when present but lets the
// request through either way; public file data is readable without a
// session.
func OptionalToken(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Get("X-Token"); token != "" {
			if userID, err := auth.Resolve(c.Context(), token); err == nil {
				c.Locals(UserIDKey, userID)
			}
		}
		return c.Next()
	}
}

// GetUserID returns the resolved user id, or "" for anonymous requests.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
