package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	profiles *services.ProfileService,
	healthHandler *handlers.HealthHandler,
	contentHandler *handlers.ContentHandler,
	reviewHandler *handlers.ReviewHandler,
	notificationHandler *handlers.NotificationHandler,
	profileHandler *handlers.ProfileHandler,
	adminHandler *handlers.AdminHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Content: reads are public, unpublished drafts only for their author and reviewers
	api.Get("/content/:slug", middleware.OptionalJWT(cfg), contentHandler.Get)

	// JWT is applied per route so public routes stay unaffected
	auth := middleware.JWTProtected(cfg)

	// Writes are limited per user rather than per IP
	writes := limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, err := middleware.ActorID(c); err == nil {
				return id.String()
			}
			return c.IP()
		},
	})
	api.Post("/content", auth, writes, contentHandler.Create)
	api.Put("/content/:id", auth, writes, contentHandler.Edit)
	api.Post("/content/:id/submit", auth, contentHandler.Submit)
	api.Post("/content/:id/watch", auth, contentHandler.Watch)
	api.Delete("/content/:id/watch", auth, contentHandler.Unwatch)

	api.Get("/profile", auth, profileHandler.Me)
	api.Get("/contributions", auth, profileHandler.Contributions)

	api.Get("/notifications", auth, notificationHandler.List)
	api.Get("/notifications/unread-count", auth, notificationHandler.UnreadCount)
	api.Put("/notifications/read-all", auth, notificationHandler.MarkAllRead)
	api.Put("/notifications/:id/read", auth, notificationHandler.MarkRead)
	api.Delete("/notifications/:id", auth, notificationHandler.Delete)

	// Review queue (reviewer+)
	review := api.Group("/review", auth, middleware.RoleRequired(profiles, models.RoleReviewer))
	review.Get("/queue", reviewHandler.Queue)
	review.Post("/:id/approve", reviewHandler.Approve)
	review.Post("/:id/reject", reviewHandler.Reject)

	// Moderation (editor+) and user administration (admin)
	admin := api.Group("/admin", auth)
	editors := middleware.RoleRequired(profiles, models.RoleEditor)
	admin.Post("/content/:id/feature", editors, adminHandler.Feature)
	admin.Post("/content/:id/unfeature", editors, adminHandler.Unfeature)
	admin.Post("/content/:id/protection", editors, adminHandler.SetProtection)

	admins := middleware.RoleRequired(profiles, models.RoleAdmin)
	admin.Post("/users/:id/recompute", admins, adminHandler.Recompute)
	admin.Put("/users/:id/role", admins, adminHandler.SetRole)
}
