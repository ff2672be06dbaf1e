package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"silicorex/handlers"
	"silicorex/middleware"
	"silicorex/routes"
)

// newServer builds the Fiber app with every route registered.
func newServer(h *handlers.Handler, logger *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "SiliCoreX",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))

	routes.SetupRoutes(app, h)
	return app
}

// errorHandler renders unhandled errors in the same envelope as handlers do.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
}
