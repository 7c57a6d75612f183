package auth

import (
	"fmt"
	"time"
)

// SessionToken is the payload embedded in a signed session token. Tokens are
// immutable once issued; role or group changes require re-authentication or
// a freshness re-check against storage.
type SessionToken struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	FullName    string   `json:"fullName"`
	Role        UserRole `json:"role"`
	GroupNumber *int     `json:"groupNumber"`
	IssuedAt    int64    `json:"issuedAt"`
	ExpiresAt   int64    `json:"expiresAt"`
}

// GetUserID returns the account id the session was issued for
func (s *SessionToken) GetUserID() int64 {
	return s.UserID
}

// GetUsername returns the normalized username embedded at issuance
func (s *SessionToken) GetUsername() string {
	return s.Username
}

// GetRole returns the role claim embedded at issuance. Privileged handlers
// must not trust this without a freshness re-check.
func (s *SessionToken) GetRole() UserRole {
	return s.Role
}

// GetGroupNumber returns the group claim, nil for elevated accounts
func (s *SessionToken) GetGroupNumber() *int {
	return s.GroupNumber
}

// IssuedTime returns the issuance instant
func (s *SessionToken) IssuedTime() time.Time {
	return time.UnixMilli(s.IssuedAt)
}

// ExpiresTime returns the expiry instant
func (s *SessionToken) ExpiresTime() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// IsElevated reports whether the embedded role claim is the elevated admin
// role. Pure claim check; see IdentityFromSession for the authoritative one.
func (s *SessionToken) IsElevated() bool {
	return s.Role.IsElevated()
}

// isComplete reports whether the decoded payload carries every required
// field. GroupNumber is legitimately nil for elevated accounts.
func (s *SessionToken) isComplete() bool {
	return s.UserID > 0 &&
		s.Username != "" &&
		s.Role != "" &&
		s.IssuedAt > 0 &&
		s.ExpiresAt > 0
}

func (s SessionToken) String() string {
	group := "-"
	if s.GroupNumber != nil {
		group = fmt.Sprintf("%d", *s.GroupNumber)
	}
	return fmt.Sprintf(
		"user=%d username=%s role=%s group=%s iat=%s exp=%s",
		s.UserID,
		s.Username,
		s.Role,
		group,
		s.IssuedTime().Format(time.RFC1123),
		s.ExpiresTime().Format(time.RFC1123),
	)
}
