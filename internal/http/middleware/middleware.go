package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"html2pdf/internal/config"
	"html2pdf/internal/http/handlers"
	"html2pdf/internal/infra/logging"
)

// Register attaches the global middleware chain to app.
func Register(app *fiber.App, cfg config.Config) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logging.Error("Handler panicked", "path", c.Path(), "panic", fmt.Sprint(e))
		},
	}))

	app.Use(helmet.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/ops/health",
		ReadinessEndpoint: "/ops/ready",
	}))

	app.Use(func(c *fiber.Ctx) error {
		logging.Info("Incoming request",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", handlers.RequestID(c),
			"ip", handlers.ClientIP(c),
		)
		return c.Next()
	})
}
