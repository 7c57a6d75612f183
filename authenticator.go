package auth

import (
	"context"
	"fmt"
	"time"
)

// Auther orchestrates credential verification, token issuance, and request
// authorization. Per request the flow is Unauthenticated -> TokenPresented
// -> TokenValid -> IdentityFresh -> Authorized, with any failure collapsing
// to a uniform rejection; the tagged reason survives only in the audit log.
type Auther struct {
	provider     IdentityProvider
	codec        *TokenCodec
	limiter      *RateLimiter
	logger       Logger
	activitySink ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther wired from config.
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	limit := opts.GetLoginLimit()
	window := opts.GetLoginWindow()
	if limit == 0 {
		limit = DefaultLoginLimit
	}
	if window == 0 {
		window = DefaultLoginWindow
	}

	return &Auther{
		provider: provider,
		codec:    NewTokenCodec([]byte(opts.GetSigningSecret()), opts.GetTokenTTL()),
		limiter: NewRateLimiter(limit, window,
			WithBlockDuration(opts.GetLoginBlock()),
		),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenCodec overrides the codec, mainly so tests can inject a clock.
func (s *Auther) WithTokenCodec(codec *TokenCodec) *Auther {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// WithRateLimiter overrides the login limiter.
func (s *Auther) WithRateLimiter(limiter *RateLimiter) *Auther {
	if limiter != nil {
		s.limiter = limiter
	}
	return s
}

// TokenCodec returns the codec used by this authenticator.
func (s *Auther) TokenCodec() *TokenCodec {
	return s.codec
}

// Login verifies credentials and issues a signed session token. Admission
// is rate limited per source address + username before any hashing work.
func (s *Auther) Login(ctx context.Context, attempt LoginAttempt) (string, time.Time, error) {
	username := NormalizeUsername(attempt.Username)

	if username == "" || attempt.Password == "" {
		s.emitFailure(ctx, nil, attempt, "empty credentials")
		return "", time.Time{}, ErrMismatchedHashAndPassword
	}

	key := LoginRateKey(attempt.SourceAddress, username)
	if decision := s.limiter.Attempt(key); !decision.Allowed {
		retryAfter := int(decision.RetryAfter.Seconds())
		s.emitFailure(ctx, nil, attempt, fmt.Sprintf("rate limited, retry in %ds", retryAfter))
		return "", time.Time{}, rateLimitedError(retryAfter)
	}

	identity, err := s.provider.VerifyIdentity(ctx, username, attempt.Password)
	if err != nil {
		s.logger.Debug("Login verify identity failed", "username", username, "error", err)
		s.emitFailure(ctx, nil, attempt, err.Error())
		return "", time.Time{}, err
	}

	token, expires, err := s.codec.Issue(identity)
	if err != nil {
		s.logger.Error("Login token issuance failed", "error", err)
		s.emitFailure(ctx, identity, attempt, err.Error())
		return "", time.Time{}, err
	}

	s.limiter.Reset(key)
	s.emitAuthEvent(ctx, ActivityEvent{
		EventType:     ActivityEventLoginSuccess,
		UserID:        identityID(identity),
		Username:      username,
		SourceAddress: attempt.SourceAddress,
		UserAgent:     attempt.UserAgent,
	})

	return token, expires, nil
}

// SessionFromToken verifies a raw token string and returns its payload.
func (s *Auther) SessionFromToken(raw string) (*SessionToken, error) {
	session, err := s.codec.Verify(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed", "error", err)
		return nil, err
	}
	return session, nil
}

// IdentityFromSession re-reads the account behind a session from storage.
// This is the freshness re-check: a token is a bearer of identity, not of
// current authority, so deactivation or a role change after issuance must
// win over whatever the token claims.
func (s *Auther) IdentityFromSession(ctx context.Context, session *SessionToken) (Identity, error) {
	identity, err := s.provider.FindIdentityByID(ctx, session.GetUserID())
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrInactiveAccount
		}
		s.logger.Error("IdentityFromSession lookup failed", "error", err)
		return nil, err
	}

	if !identity.Active() {
		return nil, ErrInactiveAccount
	}

	return identity, nil
}

// Authorize runs the full chain for an authenticated request: token
// verification, freshness re-check, and, when required, the elevated-role
// predicate over the freshly fetched role.
func (s *Auther) Authorize(ctx context.Context, rawToken string, requireElevated bool) (Identity, error) {
	if rawToken == "" {
		return nil, ErrUnableToFindSession
	}

	session, err := s.SessionFromToken(rawToken)
	if err != nil {
		return nil, err
	}

	identity, err := s.IdentityFromSession(ctx, session)
	if err != nil {
		return nil, err
	}

	if requireElevated && !IsElevated(identity) {
		return nil, ErrInsufficientRole
	}

	return identity, nil
}

// IsElevated is a pure predicate on the freshly fetched role.
func IsElevated(identity Identity) bool {
	return identity != nil && identity.Role().IsElevated()
}

func (s *Auther) emitFailure(ctx context.Context, identity Identity, attempt LoginAttempt, detail string) {
	s.emitAuthEvent(ctx, ActivityEvent{
		EventType:     ActivityEventLoginFailure,
		UserID:        identityID(identity),
		Username:      NormalizeUsername(attempt.Username),
		SourceAddress: attempt.SourceAddress,
		UserAgent:     attempt.UserAgent,
		Detail:        detail,
	})
}

// emitAuthEvent records best effort: a failed audit write is logged and
// never blocks or fails the authentication decision.
func (s *Auther) emitAuthEvent(ctx context.Context, event ActivityEvent) {
	sink := normalizeActivitySink(s.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func identityID(identity Identity) *int64 {
	if identity == nil {
		return nil
	}
	id := identity.ID()
	return &id
}
