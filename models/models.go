package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// --- Auth Models ---

// JwtClaims carries the session identity inside the access token.
type JwtClaims struct {
	Username string `json:"username"`
	UserType string `json:"userType"`
	Locale   string `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	Lang     string `json:"lang"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful sign-in.
type LoginResponse struct {
	AccessToken string  `json:"accessToken"`
	Session     Session `json:"session"`
}

// --- Session ---

// Session is the request-scoped identity and display language. It is built
// once from the access token and passed explicitly to handlers.
type Session struct {
	Username string `json:"username"`
	UserType string `json:"userType"`
	Locale   string `json:"locale"`
}

// IsGov reports whether the session belongs to the government account.
func (s Session) IsGov() bool {
	return s.UserType == UserTypeGov
}

// Dashboard names the landing view for the session's user type.
func (s Session) Dashboard() string {
	if s.IsGov() {
		return "government"
	}
	return "user"
}
