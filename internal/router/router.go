package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/ecotask-api/internal/config"
	"github.com/noah-isme/ecotask-api/internal/handler"
	"github.com/noah-isme/ecotask-api/internal/middleware"
	"github.com/noah-isme/ecotask-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler   *handler.EvaluationHandler
	VerificationHandler *handler.VerificationHandler
	TaskHandler         *handler.TaskHandler
	SubmissionHandler   *handler.SubmissionHandler
	HealthChecks        map[string]handler.HealthCheckFunc
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	jwtMiddleware := middleware.JWTProtected(cfg.JWTSecret)
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	// AI function endpoints
	if deps.EvaluationHandler != nil {
		api.Post("/evaluate-task",
			jwtMiddleware,
			middleware.RateLimit("evaluate-task", cfg.RateLimitMax, window),
			deps.EvaluationHandler.Evaluate,
		)
	}
	if deps.VerificationHandler != nil {
		api.Post("/verify-photo",
			middleware.JWTProtectedWith(cfg.JWTSecret, handler.DenyVerification),
			middleware.RateLimitWith("verify-photo", cfg.RateLimitMax, window, handler.ThrottleVerification),
			deps.VerificationHandler.Verify,
		)
	}

	// Task catalogue
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks", jwtMiddleware))
	}

	// Submissions and their evaluation history
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware))
	}
}
