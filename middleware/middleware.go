package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"silicorex/utils"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// CheckUserType is a middleware that verifies the session has one of the
// specified user types.
func CheckUserType(userTypes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := SessionFrom(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "User type not found in token"})
		}
		normalized, valid := utils.ValidateAndNormalizeUserType(s.UserType)
		if !valid {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Unknown user type"})
		}

		for _, t := range userTypes {
			if normalized == t {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Insufficient permissions"})
	}
}

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Locals("requestID", id)

		start := time.Now()
		err := c.Next()

		entry := logger.WithFields(logrus.Fields{
			"component":  "http",
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("request failed")
		} else {
			entry.Debug("request served")
		}
		return err
	}
}
