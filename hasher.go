package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// Stored hashes are `pbkdf2$<iterations>$<base64url salt>$<base64url key>`.
// The iteration bounds defend against corrupted or hostile stored records:
// a parsed count outside this range makes the record unverifiable instead of
// pinning a request on an absurd derivation.
const (
	hashScheme        = "pbkdf2"
	hashIterations    = 310_000
	hashKeyLength     = 32
	hashSaltLength    = 16
	minHashIterations = 10_000
	maxHashIterations = 5_000_000
)

// PasswordHasher derives and verifies salted, peppered PBKDF2 password
// hashes. The pepper is a deployment secret distinct from the per-record
// salt; a database dump alone is not enough to mount an offline attack.
type PasswordHasher struct {
	pepper []byte
}

// NewPasswordHasher returns a hasher bound to the deployment pepper.
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{pepper: []byte(pepper)}
}

// Hash generates a password hash with a fresh random salt
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if len(h.pepper) == 0 {
		return "", ErrConfigurationMissing
	}

	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate salt")
	}

	key := h.derive(password, salt, hashIterations)

	return fmt.Sprintf("%s$%d$%s$%s",
		hashScheme,
		hashIterations,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(key),
	), nil
}

// Verify checks the given cleartext password against a stored hash record.
// Malformed records are unverifiable, never an error: any parse failure
// returns false so authentication fails closed without throwing.
func (h *PasswordHasher) Verify(password, stored string) bool {
	if password == "" || len(h.pepper) == 0 {
		return false
	}

	iterations, salt, key, ok := parseHashRecord(stored)
	if !ok {
		return false
	}

	derived := h.derive(password, salt, iterations)
	return hmac.Equal(derived, key)
}

// RandomPasswordHash returns the hash of an unguessable throwaway password,
// used when provisioning accounts that must set their own on first login.
func (h *PasswordHasher) RandomPasswordHash() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate random password")
	}
	return h.Hash(base64.RawURLEncoding.EncodeToString(buf))
}

func (h *PasswordHasher) derive(password string, salt []byte, iterations int) []byte {
	peppered := make([]byte, 0, len(password)+len(h.pepper))
	peppered = append(peppered, password...)
	peppered = append(peppered, h.pepper...)
	return pbkdf2.Key(peppered, salt, iterations, hashKeyLength, sha256.New)
}

func parseHashRecord(stored string) (iterations int, salt, key []byte, ok bool) {
	fields := strings.Split(stored, "$")
	if len(fields) != 4 || fields[0] != hashScheme {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(fields[1])
	if err != nil || iterations < minHashIterations || iterations > maxHashIterations {
		return 0, nil, nil, false
	}

	salt, err = base64.RawURLEncoding.DecodeString(fields[2])
	if err != nil || len(salt) < hashSaltLength {
		return 0, nil, nil, false
	}

	key, err = base64.RawURLEncoding.DecodeString(fields[3])
	if err != nil || len(key) != hashKeyLength {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}
