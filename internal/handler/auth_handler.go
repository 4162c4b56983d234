package handler

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/filevault/internal/service"
)

// AuthHandler handles session endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GetConnect handles GET /connect. Credentials come in as HTTP Basic auth.
func (h *AuthHandler) GetConnect(c *fiber.Ctx) error {
	email, password, ok := parseBasicAuth(c.Get("Authorization"))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	token, err := h.authService.Issue(c.Context(), email, password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}

// GetDisconnect handles GET /disconnect
func (h *AuthHandler) GetDisconnect(c *fiber.Ctx) error {
	token := c.Get("X-Token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.authService.Revoke(c.Context(), token); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	return email, password, ok
}
