package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"silicorex/models"
	"silicorex/translations"
)

const sessionKey = "session"

// JWTMiddleware validates the JWT token provided in the Authorization header
// and stores the request Session in the context locals.
func JWTMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
		}

		claims := &models.JwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT"})
		}

		// The language picked at login sticks unless the request asks for another.
		locale := claims.Locale
		if lang := c.Query("lang"); lang != "" {
			locale = lang
		}
		c.Locals(sessionKey, models.Session{
			Username: claims.Username,
			UserType: claims.UserType,
			Locale:   translations.NormalizeLocale(locale),
		})
		return c.Next()
	}
}

// SessionFrom returns the Session stored by JWTMiddleware.
func SessionFrom(c *fiber.Ctx) (models.Session, bool) {
	s, ok := c.Locals(sessionKey).(models.Session)
	return s, ok
}

// WithSession stores s for the rest of the request.
func WithSession(c *fiber.Ctx, s models.Session) {
	c.Locals(sessionKey, s)
}

// GovRequired is a middleware function that checks if the session belongs to
// the government account.
func GovRequired(c *fiber.Ctx) error {
	s, ok := SessionFrom(c)
	if !ok || !s.IsGov() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Government access required"})
	}
	return c.Next()
}
