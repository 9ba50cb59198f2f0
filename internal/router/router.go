package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumora-api/internal/config"
	"github.com/noah-isme/lumora-api/internal/handler"
	"github.com/noah-isme/lumora-api/internal/middleware"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RoleHandler        *handler.RoleHandler
	AdminHandler       *handler.AdminHandler
	AuditHandler       *handler.AuditHandler
	MessageHandler     *handler.MessageHandler
	AdGateHandler      *handler.AdGateHandler
	PresenceHandler    *handler.PresenceHandler
	SpaceHandler       *handler.SpaceHandler
	CommunityHandler   *handler.CommunityHandler
	LeaderboardHandler *handler.LeaderboardHandler
	CourseHandler      *handler.CourseHandler
	AssistantHandler   *handler.AssistantHandler
	SeedHandler        *handler.SeedHandler
	JWTMiddleware      fiber.Handler
	RoleGuard          middleware.RoleGuard
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	authenticated := []fiber.Handler{jwtMiddleware, middleware.RequireUser()}

	if deps.RoleHandler != nil {
		deps.RoleHandler.Register(api.Group("/me", authenticated...))
	}

	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages", authenticated...))
	}

	if deps.AdGateHandler != nil {
		deps.AdGateHandler.Register(api.Group("/ad-gate", authenticated...))
	}

	if deps.PresenceHandler != nil {
		deps.PresenceHandler.Register(api.Group("/presence", authenticated...))
	}

	spaces := api.Group("/spaces", authenticated...)
	if deps.SpaceHandler != nil {
		deps.SpaceHandler.Register(spaces)
	}

	if deps.CommunityHandler != nil {
		deps.CommunityHandler.Register(spaces, api.Group("/posts", authenticated...))
	}

	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(api.Group("/leaderboard", authenticated...))
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", authenticated...))
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", append(authenticated,
			middleware.RateLimit("assistant", cfg.AssistantRateLimit, time.Minute))...)
		deps.AssistantHandler.Register(assistant)
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	// Admin surface. Head-admin actions are re-checked by the action executor.
	if deps.RoleGuard != nil && (deps.AdminHandler != nil || deps.AuditHandler != nil) {
		admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(deps.RoleGuard, models.RoleAdmin))
		if deps.AdminHandler != nil {
			deps.AdminHandler.Register(admin)
		}
		if deps.AuditHandler != nil {
			deps.AuditHandler.Register(admin)
		}
	}
}
