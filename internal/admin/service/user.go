package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)

// CreateUserInput is an admin-created account. Unlike registration there is
// no invitation; the caller already holds the manage_users permission.
type CreateUserInput struct {
	Name     string `validate:"required,min=1,max=255"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=128"`
	Role     string `validate:"required"`
}

// UpdateUserInput leaves the password untouched when the field is empty.
type UpdateUserInput struct {
	Name     string `validate:"required,min=1,max=255"`
	Email    string `validate:"required,email,max=255"`
	Role     string `validate:"required"`
	Password string `validate:"omitempty,min=8,max=128"`
}

type UserService struct {
	Store store.Store
}

// List returns a page of accounts filtered and ordered by the caller's
// parameters. Unknown sort columns fall back to id in the store layer.
func (s *UserService) List(ctx context.Context, p store.ListParams) (store.Page[domain.Account], error) {
	return s.Store.Accounts().ListAccounts(ctx, p)
}

func (s *UserService) Get(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUserNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Account{}, err
	}

	role := domain.Role(in.Role)
	if !role.Valid() {
		log.Warn("attempted to create user with invalid role", slog.String("role", in.Role))
		return domain.Account{}, ErrInvalidRole
	}

	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailAlreadyRegistered
		}
		log.Error("failed to create account", slog.Any("error", err))
		return domain.Account{}, err
	}

	log.Info("user created",
		slog.String("account_id", account.ID),
		slog.String("role", string(account.Role)),
	)
	return account, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Account{}, err
	}

	role := domain.Role(in.Role)
	if !role.Valid() {
		return domain.Account{}, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	err := s.Store.Accounts().UpdateAccount(ctx, id, in.Name, email, role)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.Account{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Account{}, ErrEmailAlreadyRegistered
		}
		log.Error("failed to update account", slog.Any("error", err))
		return domain.Account{}, err
	}

	if in.Password != "" {
		newHash, err := cryptox.HashPassword(in.Password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return domain.Account{}, err
		}
		if err := s.Store.Accounts().UpdatePasswordHash(ctx, id, newHash); err != nil {
			log.Error("failed to update password hash", slog.Any("error", err))
			return domain.Account{}, err
		}
		log.Info("password reset by admin", slog.String("account_id", id))
	}

	return s.Get(ctx, id)
}

// Delete removes an account. An actor cannot delete themselves; it would
// strand the session that issued the request.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	log := slogx.FromContext(ctx)

	if id == actorID {
		return ErrCannotDeleteSelf
	}

	if err := s.Store.Accounts().DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete account", slog.Any("error", err))
		return err
	}

	log.Info("user deleted", slog.String("account_id", id), slog.String("deleted_by", actorID))
	return nil
}

// BulkDelete removes a set of accounts, silently skipping the actor's own ID
// and any IDs that no longer exist. Returns how many rows were deleted.
func (s *UserService) BulkDelete(ctx context.Context, ids []string, actorID string) (int, error) {
	log := slogx.FromContext(ctx)

	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != actorID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return 0, nil
	}

	deleted, err := s.Store.Accounts().DeleteAccounts(ctx, filtered)
	if err != nil {
		log.Error("failed to bulk delete accounts", slog.Any("error", err))
		return 0, err
	}

	log.Info("users bulk deleted",
		slog.Int("requested", len(ids)),
		slog.Int("deleted", deleted),
		slog.String("deleted_by", actorID),
	)
	return deleted, nil
}
