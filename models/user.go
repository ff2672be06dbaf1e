package models

import "time"

// User types.
const (
	UserTypeGov  = "gov"
	UserTypeUser = "user"
)

// Login is a stored portal account.
type Login struct {
	Username     string     `json:"username"`
	UserType     string     `json:"userType"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}
