package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/slogx"
)

var ErrWrongPassword = errors.New("current password is incorrect")

type ProfileInput struct {
	Name  string `validate:"required,min=1,max=255"`
	Email string `validate:"required,email,max=255"`
}

type ChangePasswordInput struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,max=128"`
}

type ProfileService struct {
	Store store.Store
}

func (s *ProfileService) Get(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUserNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// Update changes the caller's own name and email. Role changes go through
// the user management endpoints.
func (s *ProfileService) Update(ctx context.Context, accountID string, in ProfileInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Account{}, err
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.Store.Accounts().UpdateAccount(ctx, accountID, in.Name, email, account.Role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailAlreadyRegistered
		}
		log.Error("failed to update profile", slog.Any("error", err))
		return domain.Account{}, err
	}

	return s.Get(ctx, accountID)
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes every refresh token so other sessions must log in again.
func (s *ProfileService) ChangePassword(ctx context.Context, accountID string, in ChangePasswordInput) error {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return err
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(in.CurrentPassword, account.PasswordHash); err != nil {
		log.Warn("password change with wrong current password",
			slog.String("account_id", accountID),
		)
		return ErrWrongPassword
	}

	newHash, err := cryptox.HashPassword(in.NewPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, accountID, newHash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllAccountRefreshTokens(ctx, accountID)
	})
	if err != nil {
		log.Error("failed to change password", slog.Any("error", err))
		return err
	}

	log.Info("password changed", slog.String("account_id", accountID))
	return nil
}
