package routes

import (
	"github.com/gofiber/fiber/v2"

	"silicorex/handlers"
	"silicorex/middleware"
	"silicorex/models"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", h.HandleHealth)
	app.Get("/version", handlers.HandleVersion)

	api := app.Group("/api/v1")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/register", h.HandleRegister)
	auth.Post("/login", h.HandleLogin)

	jwt := middleware.JWTMiddleware(h.JWTSecret)
	api.Get("/me", jwt, middleware.CheckUserType(models.UserTypeGov, models.UserTypeUser), h.HandleMe)

	// --- Site Selection Routes ---
	site := api.Group("/site", jwt, middleware.GovRequired)
	site.Get("/districts", h.HandleDistricts)
	site.Post("/analyze", h.HandleAnalyze)
	site.Post("/report", h.HandleReport)
	site.Post("/render", h.HandleRender)

	// --- Forecast Routes ---
	fc := api.Group("/forecast", jwt, middleware.GovRequired)
	fc.Get("/", h.HandleForecast)
	fc.Get("/export.xlsx", h.HandleForecastXLSX)
	fc.Get("/chart.png", h.HandleForecastChart)

	// --- Admin Routes ---
	admin := api.Group("/admin", jwt, middleware.GovRequired)
	admin.Post("/cache/clear", h.HandleClearCache)
}
