package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// DefaultTokenTTL is the fixed session lifetime.
const DefaultTokenTTL = 12 * time.Hour

// TokenCodec encodes and HMAC-signs session payloads. Wire format:
//
//	base64url(JSON payload) "." base64url(HMAC-SHA256 signature)
//
// A single static secret is assumed per deployment; rotation would need a
// key-id field in the token plus a key registry, which this design leaves
// as an open question.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
	logger Logger
}

// TokenCodecOption customizes a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithTokenClock injects a clock, used by tests to simulate expiry.
func WithTokenClock(clock Clock) TokenCodecOption {
	return func(tc *TokenCodec) {
		if clock != nil {
			tc.clock = clock
		}
	}
}

// WithTokenLogger sets the codec logger.
func WithTokenLogger(logger Logger) TokenCodecOption {
	return func(tc *TokenCodec) {
		if logger != nil {
			tc.logger = logger
		}
	}
}

// NewTokenCodec creates a codec for the given signing secret. A non-positive
// ttl falls back to DefaultTokenTTL.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...TokenCodecOption) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	tc := &TokenCodec{
		secret: secret,
		ttl:    ttl,
		clock:  systemClock{},
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(tc)
	}

	return tc
}

// Issue serializes and signs a session payload for the given identity,
// returning the token string and its expiry.
func (tc *TokenCodec) Issue(identity Identity) (string, time.Time, error) {
	if len(tc.secret) == 0 {
		return "", time.Time{}, ErrConfigurationMissing
	}

	now := tc.clock.Now()
	expires := now.Add(tc.ttl)

	payload := &SessionToken{
		UserID:      identity.ID(),
		Username:    identity.Username(),
		FullName:    identity.DisplayName(),
		Role:        identity.Role(),
		GroupNumber: identity.GroupNumber(),
		IssuedAt:    now.UnixMilli(),
		ExpiresAt:   expires.UnixMilli(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, ErrTokenMalformed
	}

	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + tc.sign(encoded), expires, nil
}

// Verify parses and validates a token string. Failures stay tagged
// internally (malformed vs signature vs expired) for the audit log; callers
// collapse them into one uniform outcome before anything reaches a client.
func (tc *TokenCodec) Verify(raw string) (*SessionToken, error) {
	if len(tc.secret) == 0 {
		return nil, ErrConfigurationMissing
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrTokenMalformed
	}

	expected := tc.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return nil, ErrBadSignature
	}

	body, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenMalformed
	}

	payload := &SessionToken{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, ErrTokenMalformed
	}

	if !payload.isComplete() {
		return nil, ErrTokenMalformed
	}

	if tc.clock.Now().UnixMilli() > payload.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return payload, nil
}

// TTL returns the configured session lifetime.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

func (tc *TokenCodec) sign(encodedBody string) string {
	mac := hmac.New(sha256.New, tc.secret)
	mac.Write([]byte(encodedBody))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
