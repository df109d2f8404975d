package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"html2pdf/internal/config"
	"html2pdf/internal/converter"
	"html2pdf/internal/http/handlers"
	"html2pdf/internal/http/middleware"
	"html2pdf/internal/infra/chrome"
	"html2pdf/internal/infra/logging"
	"html2pdf/internal/infra/stats"
)

// Deps are the collaborators the HTTP surface needs. Converter defaults to a
// Chrome launcher built from Config; Audit may be nil.
type Deps struct {
	Config    config.Config
	Converter *converter.Converter
	Audit     handlers.AuditRecorder
}

// New builds the Fiber app with middleware, routes and JSON error handling.
func New(d Deps) *fiber.App {
	cfg := d.Config
	conv := d.Converter
	if conv == nil {
		conv = converter.New(chrome.NewLauncher(cfg), stats.NewMemory(), cfg.RenderTimeout())
	}

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		BodyLimit:             cfg.BodyLimit(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, cfg)

	svc := handlers.NewPDFService(conv, d.Audit)

	v1 := app.Group("/v1")
	v1.Post("/convert-html-to-pdf", svc.HandleConversion)
	v1.Get("/engine/stats", svc.HandleEngineStats(cfg))
	v1.Get("/monitor", monitor.New())

	app.Get("/api-docs", handlers.HandleAPIDocs(cfg))

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logging.Error("Request failed", "path", c.Path(), "status", code, "message", msg)
	} else {
		logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
