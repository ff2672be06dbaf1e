package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silicorex/models"
)

var testSecret = []byte("test-secret")

// makeAppWithSession inserts a session before the middleware under test.
func makeAppWithSession(userType string, check fiber.Handler) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		WithSession(c, models.Session{Username: "someone", UserType: userType, Locale: "en"})
		return c.Next()
	})

	app.Use(check)

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(200).SendString("ok")
	})

	return app
}

func signToken(t *testing.T, claims models.JwtClaims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestGovRequired_AllowsGov(t *testing.T) {
	app := makeAppWithSession(models.UserTypeGov, GovRequired)
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestGovRequired_DeniesUser(t *testing.T) {
	app := makeAppWithSession(models.UserTypeUser, GovRequired)
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestCheckUserType(t *testing.T) {
	app := makeAppWithSession("User", CheckUserType(models.UserTypeGov, models.UserTypeUser))
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	app = makeAppWithSession("merchant", CheckUserType(models.UserTypeGov))
	resp, err = app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddleware(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		s, _ := SessionFrom(c)
		return c.JSON(s)
	})
	return app
}

func TestJWTMiddlewareBuildsSession(t *testing.T) {
	token := signToken(t, models.JwtClaims{
		Username: "gov",
		UserType: models.UserTypeGov,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest("GET", "/me?lang=kn", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newJWTApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var s models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, models.Session{Username: "gov", UserType: "gov", Locale: "kn"}, s)
}

func TestJWTMiddlewareKeepsLoginLocale(t *testing.T) {
	token := signToken(t, models.JwtClaims{
		Username: "gov",
		UserType: models.UserTypeGov,
		Locale:   "kn",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	cases := map[string]string{
		"/me":         "kn",
		"/me?lang=en": "en",
		"/me?lang=xx": "en",
	}
	for path, want := range cases {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := newJWTApp().Test(req)
		require.NoError(t, err, path)
		require.Equal(t, 200, resp.StatusCode, path)

		var s models.Session
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.Equal(t, want, s.Locale, path)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	expired := signToken(t, models.JwtClaims{
		Username: "gov",
		UserType: models.UserTypeGov,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)
	forged := signToken(t, models.JwtClaims{Username: "gov", UserType: models.UserTypeGov}, []byte("other"))

	cases := map[string]string{
		"missing": "",
		"scheme":  "Token abc",
		"expired": "Bearer " + expired,
		"forged":  "Bearer " + forged,
	}
	for name, header := range cases {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := newJWTApp().Test(req)
		require.NoError(t, err, name)
		assert.Equal(t, 401, resp.StatusCode, name)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(logrus.New()))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))
}
