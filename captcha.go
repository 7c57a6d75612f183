package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// NoopCaptchaVerifier accepts every token; used in tests and deployments
// that front the login form some other way.
type NoopCaptchaVerifier struct{}

func (NoopCaptchaVerifier) VerifyCaptcha(context.Context, string, string) error {
	return nil
}

// HTTPCaptchaVerifier calls a third-party siteverify endpoint. The service
// itself is an external collaborator; this type only owns the boundary:
// form-post the token, read back {"success": bool}.
type HTTPCaptchaVerifier struct {
	endpoint string
	secret   string
	client   *http.Client
	logger   Logger
}

// NewHTTPCaptchaVerifier creates a verifier for the given endpoint and
// deployment secret. An empty secret disables verification.
func NewHTTPCaptchaVerifier(endpoint, secret string) *HTTPCaptchaVerifier {
	return &HTTPCaptchaVerifier{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   defLogger{},
	}
}

func (v *HTTPCaptchaVerifier) WithLogger(logger Logger) *HTTPCaptchaVerifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

func (v *HTTPCaptchaVerifier) WithHTTPClient(client *http.Client) *HTTPCaptchaVerifier {
	if client != nil {
		v.client = client
	}
	return v
}

// VerifyCaptcha checks the client-supplied token against the remote service.
func (v *HTTPCaptchaVerifier) VerifyCaptcha(ctx context.Context, token, remoteIP string) error {
	if v.secret == "" {
		return nil
	}

	if token == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build captcha request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("captcha verification request failed", "error", err)
		return ErrCaptchaFailed
	}
	defer res.Body.Close()

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || !body.Success {
		return ErrCaptchaFailed
	}

	return nil
}
