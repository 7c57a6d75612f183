package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ProvisionUserMessage creates an account. Group admins need a group
// number; elevated admins never carry one.
type ProvisionUserMessage struct {
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Password    string   `json:"password"`
	Role        UserRole `json:"role"`
	GroupNumber *int     `json:"group_number"`
}

func (e ProvisionUserMessage) Type() string { return "user.provision" }

type ProvisionUserHandler struct {
	repo   RepositoryManager
	hasher *PasswordHasher
}

func NewProvisionUserHandler(repo RepositoryManager, hasher *PasswordHasher) *ProvisionUserHandler {
	return &ProvisionUserHandler{repo: repo, hasher: hasher}
}

func (h *ProvisionUserHandler) Execute(ctx context.Context, event ProvisionUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user provisioning",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ProvisionUserHandler) execute(ctx context.Context, event ProvisionUserMessage) error {
	if err := h.validate(event); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := h.hasher.Hash(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user := &User{
			Username:     NormalizeUsername(event.Username),
			FullName:     event.FullName,
			PasswordHash: hash,
			Role:         event.Role,
			GroupNumber:  event.GroupNumber,
			IsActive:     true,
		}

		if _, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user provisioning transaction failed")
	}

	return nil
}

func (h *ProvisionUserHandler) validate(event ProvisionUserMessage) error {
	if err := ValidateUsername(NormalizeUsername(event.Username)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid username")
	}

	if err := ValidatePassword(event.Password); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password")
	}

	if !event.Role.IsValid() {
		return goerrors.New("unknown role", goerrors.CategoryValidation)
	}

	if event.Role == RoleGroupAdmin && event.GroupNumber == nil {
		return goerrors.New("group admin requires a group number", goerrors.CategoryValidation)
	}

	if event.Role.IsElevated() && event.GroupNumber != nil {
		return goerrors.New("elevated admin cannot be scoped to a group", goerrors.CategoryValidation)
	}

	return nil
}
