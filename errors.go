package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced in structured errors. They are stable identifiers for
// logs and tests; the HTTP layer never echoes them to the client.
const (
	TextCodeInvalidCreds      = "auth_invalid_credentials"
	TextCodeInactiveAccount   = "auth_inactive_account"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeBadSignature      = "auth_bad_signature"
	TextCodeInsufficientRole  = "auth_insufficient_role"
	TextCodeTooManyAttempts   = "auth_too_many_attempts"
	TextCodeConfigMissing     = "auth_config_missing"
	TextCodeSessionNotFound   = "auth_session_not_found"
	TextCodeCaptchaFailed     = "auth_captcha_failed"
	TextCodeEmptyPassword     = "auth_empty_password"
	TextCodeIdentityNotFound  = "auth_identity_not_found"
	metadataKeyRetryAfterSecs = "retry_after_seconds"
)

// ErrIdentityNotFound is returned by lookups for unknown accounts. It is an
// internal outcome; callers collapse it into ErrMismatchedHashAndPassword
// before anything reaches a client.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the uniform credential failure.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrInactiveAccount is returned when a deactivated account presents valid
// credentials. Externally indistinguishable from a credential failure.
var ErrInactiveAccount = errors.New("account is not active", errors.CategoryAuth).
	WithTextCode(TextCodeInactiveAccount).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every structural token defect: wrong part count,
// undecodable body, missing required fields.
var ErrTokenMalformed = errors.New("session token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned once a token's expiresAt has passed.
var ErrTokenExpired = errors.New("session token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrBadSignature is returned when the recomputed HMAC does not match the
// presented one. Internal only; the HTTP layer reports it as a generic 401.
var ErrBadSignature = errors.New("session token signature mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeBadSignature).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when a valid session lacks the role a
// handler requires.
var ErrInsufficientRole = errors.New("insufficient role for this operation", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrTooManyLoginAttempts is the static form of the rate-limit failure; the
// gateway builds per-attempt copies carrying a retry-after hint.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrConfigurationMissing indicates an absent signing secret or pepper. This
// is the one loud failure: the deployment cannot enforce security at all.
var ErrConfigurationMissing = errors.New("auth configuration missing signing secret or pepper", errors.CategoryInternal).
	WithTextCode(TextCodeConfigMissing).
	WithCode(errors.CodeInternal)

// ErrUnableToFindSession is returned when a request carries no token at all.
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrCaptchaFailed is returned when the CAPTCHA collaborator rejects a login.
var ErrCaptchaFailed = errors.New("captcha verification failed", errors.CategoryAuth).
	WithTextCode(TextCodeCaptchaFailed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before any derivation work.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// rateLimitedError builds a fresh rate-limit error so the retry-after hint
// never mutates the shared ErrTooManyLoginAttempts value.
func rateLimitedError(retryAfterSeconds int) *errors.Error {
	return errors.New("too many login attempts", errors.CategoryRateLimit).
		WithTextCode(TextCodeTooManyAttempts).
		WithMetadata(map[string]any{
			metadataKeyRetryAfterSecs: retryAfterSeconds,
		})
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for structurally invalid tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed")
}

// IsRateLimitedError reports whether err is a rate-limit rejection.
func IsRateLimitedError(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryRateLimit
	}
	return false
}

// RetryAfterSeconds extracts the retry-after hint from a rate-limit error,
// defaulting to zero when no hint was attached.
func RetryAfterSeconds(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return 0
	}
	if v, ok := richErr.Metadata[metadataKeyRetryAfterSecs].(int); ok {
		return v
	}
	return 0
}
