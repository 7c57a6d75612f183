package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated account
type Identity interface {
	ID() int64
	Username() string
	DisplayName() string
	Role() UserRole
	GroupNumber() *int
	Active() bool
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, attempt LoginAttempt) (string, time.Time, error)
	SessionFromToken(token string) (*SessionToken, error)
	IdentityFromSession(ctx context.Context, session *SessionToken) (Identity, error)
}

// LoginAttempt carries the credentials plus the caller metadata the rate
// limiter and audit log key on.
type LoginAttempt struct {
	Username      string
	Password      string
	SourceAddress string
	UserAgent     string
}

// LoginPayload is the request-shaped view of a login
type LoginPayload interface {
	GetUsername() string
	GetPassword() string
	GetCaptchaToken() string
}

// Config holds auth options
type Config interface {
	GetSigningSecret() string
	GetPasswordPepper() string
	GetTokenTTL() time.Duration
	GetCookieName() string
	GetTrustProxyHeader() bool
	GetLoginLimit() int
	GetLoginWindow() time.Duration
	GetLoginBlock() time.Duration
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, username, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id int64) (Identity, error)
	FindIdentityByUsername(ctx context.Context, username string) (Identity, error)
}

// CaptchaVerifier is the boundary to the third-party CAPTCHA service.
// Implementations must treat an empty deployment secret as "disabled".
type CaptchaVerifier interface {
	VerifyCaptcha(ctx context.Context, token, remoteIP string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
