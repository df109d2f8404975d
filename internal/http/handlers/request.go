package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then the socket peer.
// The result is a copy and stays valid after the handler returns.
func ClientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return utils.CopyString(first)
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return utils.CopyString(ip)
	}
	return utils.CopyString(c.IP())
}

// RequestID returns the id assigned by the requestid middleware, if any.
// Like ClientIP it never aliases fasthttp's pooled buffers.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return utils.CopyString(id)
	}
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		return utils.CopyString(id)
	}
	return utils.CopyString(c.Get(fiber.HeaderXRequestID))
}
