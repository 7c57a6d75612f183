package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the fixed identifier of the session cookie.
const DefaultCookieName = "report_session"

// CookieManager builds and parses the cookie transport of a session token.
// The Secure flag is set when the connection is confirmed HTTPS, either
// direct TLS or a trusted forwarded-protocol header.
type CookieManager struct {
	name       string
	trustProxy bool
	clock      Clock
}

// CookieManagerOption customizes a CookieManager.
type CookieManagerOption func(*CookieManager)

// WithCookieClock injects a clock for Expires computation in tests.
func WithCookieClock(clock Clock) CookieManagerOption {
	return func(m *CookieManager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewCookieManager creates a manager for the named session cookie. When
// trustProxy is set, an `X-Forwarded-Proto: https` header from the fronting
// proxy counts as a confirmed TLS connection.
func NewCookieManager(name string, trustProxy bool, opts ...CookieManagerOption) *CookieManager {
	if name == "" {
		name = DefaultCookieName
	}

	m := &CookieManager{
		name:       name,
		trustProxy: trustProxy,
		clock:      systemClock{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Name returns the session cookie name.
func (m *CookieManager) Name() string {
	return m.name
}

// Write sets the session cookie on a fiber response.
func (m *CookieManager) Write(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(m.clock.Now()).Seconds()),
		HTTPOnly: true,
		Secure:   m.isSecure(c),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Clear expires the session cookie on a fiber response.
func (m *CookieManager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Expires:  m.clock.Now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.isSecure(c),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Extract pulls the raw token off a request, preferring an Authorization
// bearer header and falling back to the named cookie.
func (m *CookieManager) Extract(c *fiber.Ctx) string {
	if token := bearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
		return token
	}
	return ParseCookieHeader(c.Get(fiber.HeaderCookie), m.name)
}

// HeaderValue renders the Set-Cookie value carrying a token, for callers
// that write headers directly instead of going through fiber.
func (m *CookieManager) HeaderValue(token string, expires time.Time, secure bool) string {
	maxAge := int(expires.Sub(m.clock.Now()).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	attrs := fmt.Sprintf("%s=%s; Path=/; HttpOnly; SameSite=Strict; Max-Age=%d; Expires=%s",
		m.name,
		url.QueryEscape(token),
		maxAge,
		expires.UTC().Format(http.TimeFormat),
	)
	if secure {
		attrs += "; Secure"
	}
	return attrs
}

// ClearHeaderValue renders the Set-Cookie value that removes the session.
func (m *CookieManager) ClearHeaderValue() string {
	return fmt.Sprintf("%s=; Path=/; HttpOnly; SameSite=Strict; Max-Age=0", m.name)
}

// AppendSetCookie adds a Set-Cookie value without clobbering unrelated
// cookies already set on the response.
func AppendSetCookie(h http.Header, value string) {
	h.Add(fiber.HeaderSetCookie, value)
}

// ParseCookieHeader extracts the named cookie from a raw Cookie header.
// Percent-decoding failures pass the raw value through rather than dropping
// the session.
func ParseCookieHeader(header, name string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found || key != name {
			continue
		}

		if decoded, err := url.QueryUnescape(value); err == nil {
			return decoded
		}
		return value
	}
	return ""
}

func (m *CookieManager) isSecure(c *fiber.Ctx) bool {
	if c.Secure() {
		return true
	}
	return m.trustProxy && strings.EqualFold(c.Get(fiber.HeaderXForwardedProto), "https")
}

func bearerToken(header string) string {
	const scheme = "Bearer"
	if len(header) > len(scheme)+1 && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
