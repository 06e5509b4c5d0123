package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

const identityKey = "identity"

// IdentityMiddleware extracts the caller identity from the X-User-Email
// header and the Authorization bearer token. Both come from the
// identity provider in front of this service and are trusted as-is.
// Requests without an email proceed anonymously.
func IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := strings.TrimSpace(c.Get("X-User-Email"))
		if email == "" {
			return c.Next()
		}

		token := c.Get(fiber.HeaderAuthorization)
		token = strings.TrimPrefix(token, "Bearer ")

		c.Locals(identityKey, &domain.Identity{Email: email, Token: token})
		return c.Next()
	}
}

// viewer returns the caller identity, or nil for anonymous requests.
func viewer(c *fiber.Ctx) *domain.Identity {
	id, _ := c.Locals(identityKey).(*domain.Identity)
	return id
}

// requireViewer returns the identity or writes a 401.
func requireViewer(c *fiber.Ctx) (*domain.Identity, error) {
	id := viewer(c)
	if id == nil {
		return nil, errUnauthorized(c, "X-User-Email header is required")
	}
	return id, nil
}
