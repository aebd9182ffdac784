package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/slogx"
)

var ErrEmailAlreadyRegistered = errors.New("email already registered")

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the payload for invitation-gated signup.
type RegisterInput struct {
	Name        string `validate:"required,min=1,max=255"`
	Email       string `validate:"required,email,max=255"`
	Password    string `validate:"required,min=8,max=128"`
	InviteToken string `validate:"required"`
}

type RegisterService struct {
	Store store.Store
}

// Register creates a new account from a valid invitation. The account insert
// and the invitation consumption commit together or not at all.
func (s *RegisterService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input shape.
	if err := validate.Struct(in); err != nil {
		log.Warn("registration with invalid input", slog.Any("error", err))
		return domain.Account{}, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	// 2. Check the invitation before doing any expensive work. The
	// authoritative check re-runs inside the transaction.
	invitation, err := s.Store.Invitations().GetInvitationByToken(ctx, in.InviteToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("registration attempted with unknown invite token")
			return domain.Account{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Account{}, err
	}
	if !strings.EqualFold(invitation.Email, in.Email) {
		log.Warn("registration attempted with mismatched email",
			slog.String("invitation_id", invitation.ID),
		)
		return domain.Account{}, ErrEmailMismatch
	}

	// 3. Hash the password.
	passwordHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 4. Create the account and consume the invitation atomically.
	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			log.Error("failed to create account", slog.Any("error", err))
			return err
		}
		return validateAndConsume(ctx, tx.Invitations(), in.InviteToken, in.Email, account.ID, now)
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("account registered via invitation",
		slog.String("account_id", account.ID),
		slog.String("invitation_id", invitation.ID),
		slog.String("role", string(account.Role)),
	)

	return account, nil
}
