package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider is the IdentityProvider backed by the Users repository and
// the password hasher.
type UserProvider struct {
	store  Users
	hasher *PasswordHasher
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store Users, hasher *PasswordHasher) *UserProvider {
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, check the password, and return the
// identity view. Unknown usernames and wrong passwords yield the same
// ErrMismatchedHashAndPassword; only the audit detail differs upstream.
func (u *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMismatchedHashAndPassword
	}

	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		// bump the persistent counter; best effort, the attempt already failed
		if err := u.store.TrackAttemptedLogin(ctx, user); err != nil {
			u.logger.Warn("failed to track login attempt", "error", err)
		}
		return nil, ErrMismatchedHashAndPassword
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Warn("failed to track successful login", "error", err)
	}

	return IdentityFromUser(user), nil
}

// FindIdentityByID re-reads the account row, used for the freshness re-check
// before privileged operations.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id int64) (Identity, error) {
	user, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return IdentityFromUser(user), nil
}

// FindIdentityByUsername looks an account up by its normalized username.
func (u *UserProvider) FindIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return IdentityFromUser(user), nil
}
