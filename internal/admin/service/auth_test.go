package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/pkg/jwtx"
)

func TestLogin(t *testing.T) {
	st := newTestStore(t)
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test-issuer")
	require.NoError(t, err)
	svc := &AuthService{Store: st, Signer: signer, Issuer: "test-issuer", AccessTTL: time.Minute, RefreshTTL: time.Hour}
	ctx := context.Background()

	account := seedAccount(t, st, "alice@example.com", "correct horse battery", domain.RoleAdmin)

	t.Run("issues a verifiable token pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "Alice@Example.com", "correct horse battery", "")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, int64(60), pair.ExpiresIn)

		claims, err := signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, account.ID, claims.Subject)
		require.Equal(t, string(domain.RoleAdmin), claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "whatever", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginWithTOTP(t *testing.T) {
	st := newTestStore(t)
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test-issuer")
	require.NoError(t, err)
	svc := &AuthService{Store: st, Signer: signer, Issuer: "test-issuer"}
	ctx := context.Background()

	account := seedAccount(t, st, "bob@example.com", "correct horse battery", domain.RoleCoach)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: account.Email})
	require.NoError(t, err)
	require.NoError(t, st.Accounts().UpdateTOTPSecret(ctx, account.ID, key.Secret()))
	require.NoError(t, st.Accounts().EnableTOTP(ctx, account.ID))

	t.Run("password alone prompts for a code", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "correct horse battery", "")
		require.ErrorIs(t, err, ErrMFARequired)
	})

	t.Run("bad code rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "correct horse battery", "000000")
		require.ErrorIs(t, err, ErrInvalidTOTPCode)
	})

	t.Run("valid code succeeds", func(t *testing.T) {
		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		pair, err := svc.Login(ctx, "bob@example.com", "correct horse battery", code)
		require.NoError(t, err)

		claims, err := signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Contains(t, claims.AMR, "totp")
	})
}

func TestRefreshRotation(t *testing.T) {
	st := newTestStore(t)
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test-issuer")
	require.NoError(t, err)
	svc := &AuthService{Store: st, Signer: signer, Issuer: "test-issuer"}
	ctx := context.Background()

	seedAccount(t, st, "carol@example.com", "correct horse battery", domain.RoleUser)

	pair, err := svc.Login(ctx, "carol@example.com", "correct horse battery", "")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The presented token is revoked by the rotation.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The new token still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestLogout(t *testing.T) {
	st := newTestStore(t)
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test-issuer")
	require.NoError(t, err)
	svc := &AuthService{Store: st, Signer: signer, Issuer: "test-issuer"}
	ctx := context.Background()

	account := seedAccount(t, st, "dave@example.com", "correct horse battery", domain.RoleUser)

	pair, err := svc.Login(ctx, "dave@example.com", "correct horse battery", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Idempotent, and unknown tokens are fine.
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))

	t.Run("logout all revokes every session", func(t *testing.T) {
		first, err := svc.Login(ctx, "dave@example.com", "correct horse battery", "")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "dave@example.com", "correct horse battery", "")
		require.NoError(t, err)

		require.NoError(t, svc.LogoutAll(ctx, account.ID))

		_, err = svc.Refresh(ctx, first.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
		_, err = svc.Refresh(ctx, second.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
