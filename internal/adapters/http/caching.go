package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler. Personal map
// data is never shared-cacheable.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/markers/nearby"):
			ttl = "private, max-age=60" // location queries go stale fast

		case path == "/v1/map" || strings.HasPrefix(path, "/v1/map/"):
			// Searching a map has a visit side effect; caching would
			// silently drop repeat visits.
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/visits"):
			ttl = "no-store" // audit log, always fresh

		case strings.HasPrefix(path, "/v1/markers/"):
			ttl = "private, max-age=60" // single marker

		case strings.HasPrefix(path, "/v1/"):
			ttl = "private, max-age=30" // default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
