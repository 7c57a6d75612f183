package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Locals keys populated by ProtectedRoute.
const (
	LocalsKeyIdentity = "auth_identity"
	LocalsKeySession  = "auth_session"
)

// RouteAuthenticator is the fiber-facing surface of the auth core: it sets
// and clears the session cookie, guards routes, and maps the internal error
// taxonomy onto the minimal external status codes.
type RouteAuthenticator struct {
	auth    *Auther
	cfg     Config
	cookies *CookieManager
	Logger  Logger
}

// NewHTTPAuthenticator builds the route authenticator. It is loud about a
// missing signing secret since every session it guards would be forgeable.
func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	if cfg.GetSigningSecret() == "" {
		return nil, ErrConfigurationMissing
	}

	return &RouteAuthenticator{
		auth:    auther,
		cfg:     cfg,
		cookies: NewCookieManager(cfg.GetCookieName(), cfg.GetTrustProxyHeader()),
		Logger:  defLogger{},
	}, nil
}

// Cookies exposes the cookie manager, mainly for handlers and tests.
func (a *RouteAuthenticator) Cookies() *CookieManager {
	return a.cookies
}

// Login verifies the attempt and, on success, writes the session cookie.
// The token and expiry are returned so the handler can echo them in the
// response body for bearer-style clients.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, attempt LoginAttempt) (string, int64, error) {
	token, expires, err := a.auth.Login(c.UserContext(), attempt)
	if err != nil {
		return "", 0, err
	}

	a.cookies.Write(c, token, expires)
	return token, expires.UnixMilli(), nil
}

// Logout clears the session cookie. Tokens stay valid until expiry by
// design; there is no revocation list.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookies.Clear(c)
}

// ProtectedRoute guards a route: token extraction, verification, freshness
// re-check, and optionally the elevated-role requirement. The verified
// identity and session are stored in Locals and the request context.
func (a *RouteAuthenticator) ProtectedRoute(requireElevated bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := a.cookies.Extract(c)

		identity, err := a.auth.Authorize(c.UserContext(), raw, requireElevated)
		if err != nil {
			return a.WriteError(c, err)
		}

		session, err := a.auth.SessionFromToken(raw)
		if err != nil {
			return a.WriteError(c, err)
		}

		c.Locals(LocalsKeyIdentity, identity)
		c.Locals(LocalsKeySession, session)

		ctx := WithIdentityContext(c.UserContext(), identity)
		c.SetUserContext(WithSessionContext(ctx, session))

		return c.Next()
	}
}

// WriteError maps the tagged internal error onto the minimal external
// surface: 401 for every authentication failure, 403 for role failures,
// 429 with a Retry-After hint for rate limiting, 500 otherwise. The tagged
// detail is logged, never echoed.
func (a *RouteAuthenticator) WriteError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected auth error")
	}

	a.Logger.Info(
		"auth request rejected",
		"category", richErr.Category,
		"text_code", richErr.TextCode,
		"path", c.Path(),
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryRateLimit:
		if retryAfter := RetryAfterSeconds(richErr); retryAfter > 0 {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		}
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many attempts",
		})
	case errors.CategoryAuthz:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden",
		})
	case errors.CategoryAuth, errors.CategoryNotFound:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
}

// LocalIdentity returns the identity stored by ProtectedRoute.
func LocalIdentity(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(LocalsKeyIdentity).(Identity)
	return identity, ok
}

// LocalSession returns the session payload stored by ProtectedRoute.
func LocalSession(c *fiber.Ctx) (*SessionToken, bool) {
	session, ok := c.Locals(LocalsKeySession).(*SessionToken)
	return session, ok
}
