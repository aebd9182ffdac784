package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/jwtx"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrMFARequired         = errors.New("totp code required")
	ErrInvalidTOTPCode     = errors.New("invalid totp code")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Login verifies credentials and issues an access/refresh token pair.
// Accounts with TOTP enabled must supply a valid code; a correct password
// without a code yields ErrMFARequired so clients can prompt for one.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison so unknown emails cost the same as
			// wrong passwords.
			_ = cryptox.VerifyPassword(password, dummyHashForTiming())
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		log.Warn("login with wrong password", slog.String("account_id", account.ID))
		return TokenPair{}, ErrInvalidCredentials
	}

	amr := []string{"pwd"}
	if account.TOTPEnabled() {
		if totpCode == "" {
			return TokenPair{}, ErrMFARequired
		}
		if !totp.Validate(totpCode, *account.TOTPSecret) {
			log.Warn("login with invalid totp code", slog.String("account_id", account.ID))
			return TokenPair{}, ErrInvalidTOTPCode
		}
		amr = append(amr, "totp")
	}

	pair, err := s.issueTokens(ctx, account, amr)
	if err != nil {
		return TokenPair{}, err
	}

	log.Info("account logged in",
		slog.String("account_id", account.ID),
		slog.String("role", string(account.Role)),
		slog.Any("amr", amr),
	)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Revoked, expired, and unknown tokens all fail the same way.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	fingerprint := cryptox.FingerprintToken(rawToken)
	token, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		log.Error("failed to fetch refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}

	if token.Revoked || time.Now().After(token.ExpiresAt) {
		log.Warn("refresh attempted with revoked or expired token",
			slog.String("account_id", token.AccountID),
		)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return TokenPair{}, err
	}

	var pair TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, token.ID); err != nil {
			return err
		}
		pair, err = s.issueTokensWith(ctx, tx.RefreshTokens(), account, []string{"pwd"})
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}

	log.Debug("refresh token rotated", slog.String("account_id", account.ID))
	return pair, nil
}

// Logout revokes the presented refresh token. Unknown tokens are not an
// error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	log := slogx.FromContext(ctx)

	fingerprint := cryptox.FingerprintToken(rawToken)
	token, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if token.Revoked {
		return nil
	}

	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, token.ID); err != nil {
		log.Error("failed to revoke refresh token", slog.Any("error", err))
		return err
	}

	log.Info("account logged out", slog.String("account_id", token.AccountID))
	return nil
}

// LogoutAll revokes every active refresh token for an account. Used after
// password changes and MFA disable.
func (s *AuthService) LogoutAll(ctx context.Context, accountID string) error {
	return s.Store.RefreshTokens().RevokeAllAccountRefreshTokens(ctx, accountID)
}

func (s *AuthService) issueTokens(ctx context.Context, account domain.Account, amr []string) (TokenPair, error) {
	return s.issueTokensWith(ctx, s.Store.RefreshTokens(), account, amr)
}

func (s *AuthService) issueTokensWith(
	ctx context.Context,
	refreshTokens store.RefreshTokens,
	account domain.Account,
	amr []string,
) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(
		account.ID, string(account.Role), account.Email, account.Name,
		amr, s.accessTTL(), s.Issuer, now,
	)
	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return TokenPair{}, err
	}

	rawRefresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}

	refresh := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(rawRefresh),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := refreshTokens.CreateRefreshToken(ctx, refresh); err != nil {
		log.Error("failed to store refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

// dummyHashForTiming is a fixed valid argon2id hash compared against when the
// email does not exist.
func dummyHashForTiming() string {
	return "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
}
