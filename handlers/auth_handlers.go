package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"silicorex/database"
	"silicorex/middleware"
	"silicorex/models"
	"silicorex/translations"
	"silicorex/utils"
)

// HandleRegister creates a regular user login.
// POST /api/v1/auth/register
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	username := utils.NormalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Missing required fields (username, password)")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("hashing password")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not process password")
	}

	login := &models.Login{
		Username:     username,
		UserType:     models.UserTypeUser,
		PasswordHash: string(hashedPassword),
	}
	if err := h.Logins.Create(c.UserContext(), login); err != nil {
		if errors.Is(err, database.ErrLoginExists) {
			return errorResponse(c, fiber.StatusConflict, "Username already taken")
		}
		log.WithError(err).WithField("username", username).Error("creating login")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not create login")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": login})
}

// HandleLogin authenticates a login and returns a JWT token.
// POST /api/v1/auth/login
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	userType, ok := utils.ValidateAndNormalizeUserType(req.UserType)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "userType must be gov or user")
	}
	username := utils.NormalizeUsername(req.Username)

	login, err := h.Logins.Find(c.UserContext(), username)
	if err != nil {
		if errors.Is(err, database.ErrLoginNotFound) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		log.WithError(err).WithField("username", username).Error("database error during login")
		return errorResponse(c, fiber.StatusInternalServerError, "Database error")
	}
	if login.UserType != userType {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials or user type")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte(req.Password)); err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	lang := req.Lang
	if q := c.Query("lang"); q != "" {
		lang = q
	}
	session := models.Session{
		Username: login.Username,
		UserType: login.UserType,
		Locale:   translations.NormalizeLocale(lang),
	}
	token, err := h.createJWT(session)
	if err != nil {
		log.WithError(err).WithField("username", username).Error("creating JWT")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not sign token")
	}

	if err := h.Logins.TouchLogin(c.UserContext(), login.Username, time.Now().UTC()); err != nil {
		log.WithError(err).WithField("username", username).Warn("recording login time")
	}

	return c.JSON(models.LoginResponse{AccessToken: token, Session: session})
}

// HandleMe echoes the current session and where to land.
// GET /api/v1/me
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Not logged in")
	}
	return c.JSON(fiber.Map{"status": "success", "data": s, "dashboard": s.Dashboard()})
}

// --- Helper Functions ---

func (h *Handler) createJWT(s models.Session) (string, error) {
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := models.JwtClaims{
		Username: s.Username,
		UserType: s.UserType,
		Locale:   s.Locale,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}
