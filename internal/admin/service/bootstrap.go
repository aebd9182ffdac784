package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/slogx"
)

type BootstrapService struct {
	Store store.Store
}

// EnsureAdmin creates the first admin account on an empty database. It is a
// no-op once any account exists, so restarts are safe.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	log := slogx.FromContext(ctx)

	if name == "" || email == "" || password == "" {
		log.Debug("bootstrap admin not configured, skipping")
		return nil
	}

	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := domain.Account{
		ID:           idx.New().String(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check inside the transaction in case two instances race on a
		// fresh database.
		empty, err := tx.Accounts().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}
		return tx.Accounts().CreateAccount(ctx, admin)
	})
	if err != nil {
		if err == store.ErrAlreadyExists {
			return nil
		}
		return err
	}

	log.Info("bootstrap admin created",
		slog.String("account_id", admin.ID),
		slog.String("email", admin.Email),
	)
	return nil
}
