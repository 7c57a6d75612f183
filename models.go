package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record. Username uniqueness is case-insensitive;
// rows are stored lowercase and every lookup normalizes first.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	FullName       string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	GroupNumber    *int       `bun:"group_number" json:"group_number,omitempty"`
	IsActive       bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AuthActivity is one append-only audit row for a login outcome.
type AuthActivity struct {
	bun.BaseModel `bun:"table:auth_activity,alias:act"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventKind     string     `bun:"event_kind,notnull" json:"event_kind,omitempty"`
	UserID        *int64     `bun:"user_id" json:"user_id,omitempty"`
	Username      string     `bun:"username" json:"username,omitempty"`
	SourceAddress string     `bun:"source_address" json:"source_address,omitempty"`
	UserAgent     string     `bun:"user_agent" json:"user_agent,omitempty"`
	Detail        string     `bun:"detail" json:"detail,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
