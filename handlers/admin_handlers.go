package handlers

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"silicorex/middleware"
)

// HandleClearCache drops the memoized datasets and forecasting model so the
// next request reloads them from disk.
// POST /api/v1/admin/cache/clear
func (h *Handler) HandleClearCache(c *fiber.Ctx) error {
	h.Data.Clear()
	h.mu.Lock()
	h.pipeline = nil
	h.mu.Unlock()
	if h.Models != nil {
		h.Models.Clear()
	}
	s, _ := middleware.SessionFrom(c)
	log.WithField("username", s.Username).Info("caches cleared")
	return c.JSON(fiber.Map{"status": "success", "message": "Caches cleared"})
}

// HandleHealth reports liveness and whether generation is configured.
// GET /health
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"generationReady": h.Backend != nil,
	})
}

// HandleVersion prints the build information.
// GET /version
func HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("no build information available")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
	return c.SendString("<pre>\n" + info.String() + "</pre>\n")
}
