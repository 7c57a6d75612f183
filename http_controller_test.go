package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auth "github.com/arnlid/go-reportauth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	app      *fiber.App
	provider *MockIdentityProvider
	sink     *recordingSink
	auther   *auth.Auther
}

func newControllerFixture(t *testing.T, opts ...auth.AuthControllerOption) *controllerFixture {
	t.Helper()

	provider := new(MockIdentityProvider)
	sink := &recordingSink{}
	cfg := testConfig()

	auther := auth.NewAuthenticator(provider, cfg).WithActivitySink(sink)
	routeAuth, err := auth.NewHTTPAuthenticator(auther, cfg)
	require.NoError(t, err)

	app := fiber.New()
	opts = append([]auth.AuthControllerOption{auth.WithControllerAuther(routeAuth)}, opts...)
	auth.RegisterAuthRoutes(app, opts...)

	app.Get("/admin/report",
		routeAuth.ProtectedRoute(true),
		func(c *fiber.Ctx) error {
			identity, _ := auth.LocalIdentity(c)
			return c.JSON(fiber.Map{"user": identity.Username()})
		},
	)

	return &controllerFixture{app: app, provider: provider, sink: sink, auther: auther}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestLoginPostSuccess(t *testing.T) {
	fx := newControllerFixture(t)

	fx.provider.On("VerifyIdentity", mock.Anything, "gadmin", "correct-password").
		Return(activeGroupAdmin(), nil)

	res := postJSON(t, fx.app, "/login", auth.LoginRequest{
		Username: "gadmin",
		Password: "correct-password",
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeBody(t, res)
	assert.NotEmpty(t, body["token"])
	assert.NotZero(t, body["expires_at"])

	setCookie := res.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, setCookie, "report_session=")
	assert.Contains(t, setCookie, "HttpOnly")
}

func TestLoginPostUniformFailures(t *testing.T) {
	fx := newControllerFixture(t)

	fx.provider.On("VerifyIdentity", mock.Anything, "gadmin", "wrong-password").
		Return(nil, auth.ErrMismatchedHashAndPassword)
	fx.provider.On("VerifyIdentity", mock.Anything, "ghost", mock.Anything).
		Return(nil, auth.ErrMismatchedHashAndPassword)
	fx.provider.On("VerifyIdentity", mock.Anything, "inactive", mock.Anything).
		Return(nil, auth.ErrInactiveAccount)

	tests := []struct {
		name    string
		payload auth.LoginRequest
	}{
		{name: "wrong password", payload: auth.LoginRequest{Username: "gadmin", Password: "wrong-password"}},
		{name: "unknown account", payload: auth.LoginRequest{Username: "ghost", Password: "whatever-pass"}},
		{name: "inactive account", payload: auth.LoginRequest{Username: "inactive", Password: "whatever-pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := postJSON(t, fx.app, "/login", tt.payload)
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

			// Same body for every failure; no reason leaks to the client.
			body := decodeBody(t, res)
			assert.Equal(t, map[string]any{"error": "unauthorized"}, body)
		})
	}
}

func TestLoginPostValidation(t *testing.T) {
	fx := newControllerFixture(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{not json")))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		res, err := fx.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		res := postJSON(t, fx.app, "/login", auth.LoginRequest{})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeBody(t, res)
		assert.Contains(t, body, "validation")
	})
}

func TestLoginPostRateLimited(t *testing.T) {
	fx := newControllerFixture(t)

	fx.provider.On("VerifyIdentity", mock.Anything, "gadmin", "wrong-password").
		Return(nil, auth.ErrMismatchedHashAndPassword)

	payload := auth.LoginRequest{Username: "gadmin", Password: "wrong-password"}

	for i := 0; i < 5; i++ {
		res := postJSON(t, fx.app, "/login", payload)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}

	res := postJSON(t, fx.app, "/login", payload)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(fiber.HeaderRetryAfter))
}

func TestLoginPostCaptchaRejected(t *testing.T) {
	captcha := new(MockCaptchaVerifier)
	captcha.On("VerifyCaptcha", mock.Anything, "bad-token", mock.Anything).
		Return(auth.ErrCaptchaFailed)

	fx := newControllerFixture(t, auth.WithControllerCaptcha(captcha))

	res := postJSON(t, fx.app, "/login", auth.LoginRequest{
		Username:     "gadmin",
		Password:     "correct-password",
		CaptchaToken: "bad-token",
	})

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	// Credentials are never checked when the captcha fails.
	fx.provider.AssertNotCalled(t, "VerifyIdentity", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutPost(t *testing.T) {
	fx := newControllerFixture(t)

	res := postJSON(t, fx.app, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	setCookie := res.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, setCookie, "report_session=")
	assert.Contains(t, setCookie, "expires=")
}

func TestSessionGet(t *testing.T) {
	fx := newControllerFixture(t)

	identity := activeGroupAdmin()
	fx.provider.On("FindIdentityByID", mock.Anything, identity.ID()).Return(identity, nil)

	token, _, err := fx.auther.TokenCodec().Issue(identity)
	require.NoError(t, err)

	t.Run("with bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		res, terr := fx.app.Test(req, -1)
		require.NoError(t, terr)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody(t, res)
		assert.Equal(t, "gadmin", body["username"])
		assert.Equal(t, "group_admin", body["role"])
	})

	t.Run("with cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.Header.Set(fiber.HeaderCookie, "report_session="+token)

		res, terr := fx.app.Test(req, -1)
		require.NoError(t, terr)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		res, terr := fx.app.Test(req, -1)
		require.NoError(t, terr)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestProtectedRouteRoles(t *testing.T) {
	fx := newControllerFixture(t)

	admin := activeAdmin()
	gadmin := activeGroupAdmin()
	fx.provider.On("FindIdentityByID", mock.Anything, admin.ID()).Return(admin, nil)
	fx.provider.On("FindIdentityByID", mock.Anything, gadmin.ID()).Return(gadmin, nil)

	adminToken, _, err := fx.auther.TokenCodec().Issue(admin)
	require.NoError(t, err)
	gadminToken, _, err := fx.auther.TokenCodec().Issue(gadmin)
	require.NoError(t, err)

	get := func(token string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/admin/report", nil)
		if token != "" {
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
		res, terr := fx.app.Test(req, -1)
		require.NoError(t, terr)
		return res
	}

	t.Run("admin allowed", func(t *testing.T) {
		res := get(adminToken)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "boss", decodeBody(t, res)["user"])
	})

	t.Run("group admin forbidden", func(t *testing.T) {
		res := get(gadminToken)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		res := get("")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("tampered token unauthorized", func(t *testing.T) {
		res := get(adminToken + "x")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestProtectedRouteExpiredToken(t *testing.T) {
	fx := newControllerFixture(t)

	clock := newFakeClock(time.Now().Add(-24 * time.Hour))
	codec := auth.NewTokenCodec([]byte("test-signing-secret"), time.Hour, auth.WithTokenClock(clock))

	identity := activeGroupAdmin()
	token, _, err := codec.Issue(identity)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	res, err := fx.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
