package utils

import (
	"strings"

	"silicorex/models"
)

var ValidUserTypes = map[string]bool{
	models.UserTypeGov:  true,
	models.UserTypeUser: true,
}

// ValidateAndNormalizeUserType validates and normalizes a user type string.
// Returns the normalized type (lowercase) and a boolean indicating if it's valid.
func ValidateAndNormalizeUserType(userType string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(userType))
	return normalized, ValidUserTypes[normalized]
}
