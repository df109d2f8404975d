package handlers

import (
	"github.com/gofiber/fiber/v2"

	"html2pdf/internal/config"
	"html2pdf/internal/infra/logging"
	"html2pdf/internal/infra/stats"
)

// HandleEngineStats reports rendering context lifecycle counters.
func (svc *PDFService) HandleEngineStats(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Converter.Stats().Snapshot(c.UserContext())
		if err != nil {
			logging.Warn("Engine stats unavailable", "error", err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "engine stats unavailable")
		}

		counters := fiber.Map{}
		for _, ev := range stats.Events {
			counters[string(ev)] = snap[ev]
		}
		return c.JSON(fiber.Map{
			"counters":         counters,
			"in_flight":        stats.InFlight(snap),
			"timeout_secs":     cfg.Render.TimeoutSecs,
			"settle_window_ms": cfg.Render.SettleWindow.Milliseconds(),
			"browser_flags":    cfg.Render.BrowserFlags,
		})
	}
}
