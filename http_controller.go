package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// AuthControllerRoutes holds the paths the controller mounts.
type AuthControllerRoutes struct {
	Login   string
	Logout  string
	Session string
}

// AuthController exposes the JSON login surface: sign in, sign out, and a
// session echo endpoint for clients that want to render the current user.
type AuthController struct {
	Debug   bool
	Logger  Logger
	Routes  *AuthControllerRoutes
	Auther  *RouteAuthenticator
	Captcha CaptchaVerifier
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerCaptcha(verifier CaptchaVerifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if verifier != nil {
			c.Captcha = verifier
		}
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:  defLogger{},
		Captcha: NoopCaptchaVerifier{},
		Routes: &AuthControllerRoutes{
			Login:   "/login",
			Logout:  "/logout",
			Session: "/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the controller on a fiber router. The session
// endpoint sits behind the route guard; login and logout are public.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)
	app.Get(controller.Routes.Session,
		controller.Auther.ProtectedRoute(false),
		controller.SessionGet,
	)

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Username     string `form:"username" json:"username"`
	Password     string `form:"password" json:"password"`
	CaptchaToken string `form:"captcha_token" json:"captcha_token"`
}

// GetUsername returns the username
func (r LoginRequest) GetUsername() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetCaptchaToken returns the captcha response token
func (r LoginRequest) GetCaptchaToken() string {
	return r.CaptchaToken
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(1, MaxUsernameLength),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(1, MaxPasswordLength),
		),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "invalid request",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if err := a.Captcha.VerifyCaptcha(c.UserContext(), payload.GetCaptchaToken(), c.IP()); err != nil {
		a.Logger.Info("login captcha rejected", "username", NormalizeUsername(payload.GetUsername()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	attempt := LoginAttempt{
		Username:      payload.GetUsername(),
		Password:      payload.GetPassword(),
		SourceAddress: c.IP(),
		UserAgent:     c.Get(fiber.HeaderUserAgent),
	}

	token, expiresAt, err := a.Auther.Login(c, attempt)
	if err != nil {
		return a.Auther.WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// SessionGet echoes the verified session payload for the current request.
func (a *AuthController) SessionGet(c *fiber.Ctx) error {
	session, ok := LocalSession(c)
	if !ok {
		return a.Auther.WriteError(c, ErrUnableToFindSession)
	}
	return c.JSON(session)
}

// FormatValidationErrorToMap flattens ozzo field errors into a plain map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if fieldErrs, ok := err.(validation.Errors); ok {
		for field, ferr := range fieldErrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
