package auth

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Credential policy. Usernames are stored lowercase and compared
// case-insensitively, so every lookup normalizes first.
const (
	MinPasswordLength = 10
	MaxPasswordLength = 128
	MinUsernameLength = 3
	MaxUsernameLength = 48
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// NormalizeUsername lowercases and trims a username for lookup or storage.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks the normalized form of a username against the
// account policy: 3-48 chars, lowercase letters, digits, `.`, `_`, `-`.
func ValidateUsername(username string) error {
	return validation.Validate(NormalizeUsername(username),
		validation.Required,
		validation.Length(MinUsernameLength, MaxUsernameLength),
		validation.Match(usernamePattern),
	)
}

// ValidatePassword enforces length bounds only; any charset is allowed.
func ValidatePassword(password string) error {
	return validation.Validate(password,
		validation.Required,
		validation.Length(MinPasswordLength, MaxPasswordLength),
	)
}
