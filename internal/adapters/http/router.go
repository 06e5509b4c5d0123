package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/mikelzubi/mimapa/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Caller identity from the upstream identity provider
	app.Use(IdentityMiddleware())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Legacy Spanish-named endpoints still answered during migration
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Path:        "/v1/marcadores",
			SunsetDate:  time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/markers",
		},
	}))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	// Map browsing
	v1.Get("/map", timeout.NewWithContext(OwnMapHandler(deps), 15*time.Second))
	v1.Get("/map/:owner", timeout.NewWithContext(SearchMapHandler(deps), 15*time.Second))

	// Markers
	v1.Post("/markers", timeout.NewWithContext(CreateMarkerHandler(deps), 15*time.Second))
	v1.Get("/markers", timeout.NewWithContext(ListMarkersHandler(deps), 15*time.Second))
	v1.Get("/markers/nearby", timeout.NewWithContext(NearbyMarkersHandler(deps), 15*time.Second))
	v1.Get("/markers/:id", timeout.NewWithContext(GetMarkerHandler(deps), 15*time.Second))
	v1.Put("/markers/:id", timeout.NewWithContext(UpdateMarkerHandler(deps), 15*time.Second))
	v1.Delete("/markers/:id", timeout.NewWithContext(DeleteMarkerHandler(deps), 15*time.Second))

	// Legacy alias, kept until the deprecation sunset
	v1.Get("/marcadores", timeout.NewWithContext(ListMarkersHandler(deps), 15*time.Second))

	// Active-marker slot
	v1.Delete("/active-marker", ClearActiveMarkerHandler(deps))

	// Visit audit log
	v1.Get("/visits", timeout.NewWithContext(ListVisitsHandler(deps), 15*time.Second))

	// Media uploads
	v1.Post("/media", timeout.NewWithContext(UploadMediaHandler(deps), 30*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket (live visit feed), only when the event feed is up
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
