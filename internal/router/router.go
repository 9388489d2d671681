package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/learnhub-api/internal/config"
	"github.com/noah-isme/learnhub-api/internal/handler"
	"github.com/noah-isme/learnhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	CourseHandler        *handler.CourseHandler
	AssignmentHandler    *handler.AssignmentHandler
	SubmissionHandler    *handler.SubmissionHandler
	GradeHandler         *handler.GradeHandler
	EnrollmentHandler    *handler.EnrollmentHandler
	StudentHandler       *handler.StudentHandler
	LectureHandler       *handler.LectureHandler
	AdminActivityHandler *handler.AdminActivityHandler
	HealthProbes         map[string]handler.Probe
	JWTMiddleware        fiber.Handler
	// ExposeMetrics mounts the Prometheus scrape endpoint at /metrics.
	ExposeMetrics bool
}

// Register wires the HTTP routes into the fiber application.
// Public routes are mounted before the JWT group so they never reach the token check.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.ExposeMetrics {
		app.Get("/metrics", observability.MetricsHandler())
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.RegisterPublic(api)
	}
	if deps.LectureHandler != nil {
		deps.LectureHandler.RegisterPublic(api)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	protected := api.Group("", jwtMiddleware)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(protected)
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(protected)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(protected)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(protected)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(protected)
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(protected)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(protected)
	}
	if deps.LectureHandler != nil {
		deps.LectureHandler.Register(protected)
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(protected)
	}
}
