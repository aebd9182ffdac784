package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pquerna/otp/totp"

	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrMFAAlreadyEnabled = errors.New("totp already enabled")
	ErrMFANotEnrolled    = errors.New("totp not enrolled")
)

type MFAService struct {
	Store  store.Store
	Issuer string
}

// Enrollment is the provisioning material returned when starting TOTP setup.
type Enrollment struct {
	Secret     string
	OTPAuthURL string
}

// Enroll generates a fresh TOTP secret for the account and stores it in a
// pending state. The account must confirm with Activate before login starts
// requiring codes. Re-enrolling before activation replaces the secret.
func (s *MFAService) Enroll(ctx context.Context, accountID string) (Enrollment, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Enrollment{}, ErrUserNotFound
		}
		return Enrollment{}, err
	}
	if account.TOTPEnabled() {
		return Enrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account.Email,
	})
	if err != nil {
		log.Error("failed to generate totp key", slog.Any("error", err))
		return Enrollment{}, err
	}

	if err := s.Store.Accounts().UpdateTOTPSecret(ctx, accountID, key.Secret()); err != nil {
		log.Error("failed to store totp secret", slog.Any("error", err))
		return Enrollment{}, err
	}

	log.Info("totp enrollment started", slog.String("account_id", accountID))
	return Enrollment{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// Activate confirms enrollment by verifying a code from the authenticator.
func (s *MFAService) Activate(ctx context.Context, accountID, code string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if account.TOTPEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if account.TOTPSecret == nil {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(code, *account.TOTPSecret) {
		log.Warn("totp activation with invalid code", slog.String("account_id", accountID))
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Accounts().EnableTOTP(ctx, accountID); err != nil {
		log.Error("failed to enable totp", slog.Any("error", err))
		return err
	}

	log.Info("totp enabled", slog.String("account_id", accountID))
	return nil
}

// Disable turns TOTP off after verifying a current code, and revokes every
// refresh token so stolen sessions cannot outlive the downgrade.
func (s *MFAService) Disable(ctx context.Context, accountID, code string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !account.TOTPEnabled() {
		return ErrMFANotEnrolled
	}

	if !totp.Validate(code, *account.TOTPSecret) {
		log.Warn("totp disable with invalid code", slog.String("account_id", accountID))
		return ErrInvalidTOTPCode
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().DisableTOTP(ctx, accountID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllAccountRefreshTokens(ctx, accountID)
	})
	if err != nil {
		log.Error("failed to disable totp", slog.Any("error", err))
		return err
	}

	log.Info("totp disabled", slog.String("account_id", accountID))
	return nil
}
