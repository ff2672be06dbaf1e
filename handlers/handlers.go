package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"silicorex/analysis"
	"silicorex/database"
	"silicorex/datasets"
	"silicorex/forecast"
	"silicorex/translations"
)

var log = logrus.WithField("component", "handlers")

// DefaultTokenTTL is how long an access token stays valid.
const DefaultTokenTTL = 72 * time.Hour

// Handler holds the dependencies shared by every route.
type Handler struct {
	Logins    database.LoginStore
	Data      *datasets.Cache
	Backend   analysis.Backend
	Models    *forecast.ModelLoader
	JWTSecret []byte
	TokenTTL  time.Duration

	mu       sync.Mutex
	pipeline *analysis.Pipeline
}

// New returns a Handler. backend may be nil when no generation credential is
// configured; report routes then answer with a configuration error.
func New(logins database.LoginStore, data *datasets.Cache, backend analysis.Backend, models *forecast.ModelLoader, jwtSecret []byte) *Handler {
	return &Handler{
		Logins:    logins,
		Data:      data,
		Backend:   backend,
		Models:    models,
		JWTSecret: jwtSecret,
		TokenTTL:  DefaultTokenTTL,
	}
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}

// statusFor maps a domain error to its HTTP status and localized message.
func statusFor(err error, locale, district string) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrConfiguration):
		return fiber.StatusServiceUnavailable, translations.Get("config_error", locale)
	case errors.Is(err, datasets.ErrDataUnavailable):
		return fiber.StatusServiceUnavailable, translations.Get("data_load_error", locale)
	case errors.Is(err, analysis.ErrUnresolvable):
		return fiber.StatusNotFound, translations.Format("unknown_district", locale, district)
	case errors.Is(err, forecast.ErrModelUnavailable):
		return fiber.StatusServiceUnavailable, translations.Get("model_unavailable", locale)
	case errors.Is(err, analysis.ErrBackend):
		return fiber.StatusBadGateway, translations.Get("backend_error", locale)
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return fiber.StatusUnprocessableEntity, err.Error()
	}
	return fiber.StatusInternalServerError, translations.Get("error_message", locale)
}

func domainError(c *fiber.Ctx, err error, locale, district string) error {
	status, message := statusFor(err, locale, district)
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return errorResponse(c, status, message)
}
