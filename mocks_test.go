package auth_test

import (
	"context"
	"sync"
	"time"

	auth "github.com/arnlid/go-reportauth"
	"github.com/stretchr/testify/mock"
)

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, username, password string) (auth.Identity, error) {
	args := m.Called(ctx, username, password)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id int64) (auth.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByUsername(ctx context.Context, username string) (auth.Identity, error) {
	args := m.Called(ctx, username)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}

// MockCaptchaVerifier implements auth.CaptchaVerifier
type MockCaptchaVerifier struct {
	mock.Mock
}

func (m *MockCaptchaVerifier) VerifyCaptcha(ctx context.Context, token, remoteIP string) error {
	args := m.Called(ctx, token, remoteIP)
	return args.Error(0)
}

// recordingSink keeps every event for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// fakeClock implements auth.Clock with manual advancement.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testIdentity is a plain value implementing auth.Identity.
type testIdentity struct {
	id          int64
	username    string
	displayName string
	role        auth.UserRole
	groupNumber *int
	active      bool
}

func (t testIdentity) ID() int64           { return t.id }
func (t testIdentity) Username() string    { return t.username }
func (t testIdentity) DisplayName() string { return t.displayName }
func (t testIdentity) Role() auth.UserRole { return t.role }
func (t testIdentity) GroupNumber() *int   { return t.groupNumber }
func (t testIdentity) Active() bool        { return t.active }

func groupNum(n int) *int { return &n }

func activeGroupAdmin() testIdentity {
	return testIdentity{
		id:          42,
		username:    "gadmin",
		displayName: "Group Admin",
		role:        auth.RoleGroupAdmin,
		groupNumber: groupNum(7),
		active:      true,
	}
}

func activeAdmin() testIdentity {
	return testIdentity{
		id:          1,
		username:    "boss",
		displayName: "The Boss",
		role:        auth.RoleAdmin,
		active:      true,
	}
}
