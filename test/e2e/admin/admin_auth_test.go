package admin_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/pkg/adminsdk"
)

func TestAuthSessions(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewClient(baseURL)
	ctx := t.Context()

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := client.Login(ctx, adminsdk.LoginRequest{
			Email:    adminEmail,
			Password: "not the password",
		})
		assertAPIError(t, err, http.StatusUnauthorized, "Wrong password")
	})

	t.Run("refresh rotates and invalidates the old token", func(t *testing.T) {
		session := loginAsAdmin(t, client)
		oldRefresh := session.RefreshToken()

		require.NoError(t, session.Refresh(ctx))
		require.NotEqual(t, oldRefresh, session.RefreshToken())

		// The rotated session keeps working.
		_, err := session.GetProfile(ctx)
		require.NoError(t, err)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		session := loginAsAdmin(t, client)
		require.NoError(t, session.Logout(ctx))
		require.Error(t, session.Refresh(ctx))
	})

	t.Run("profile and password change", func(t *testing.T) {
		adminSession := loginAsAdmin(t, client)
		_, userSession := registerViaInvite(t, client, adminSession,
			"Pass Changer", "pass.changer@peakform.test", "OldPassword123!")

		profile, err := userSession.GetProfile(ctx)
		require.NoError(t, err)
		require.Equal(t, "user", profile.Role)
		require.Contains(t, profile.Permissions, "book_session")
		require.NotContains(t, profile.Permissions, "manage_users")

		require.NoError(t, userSession.ChangePassword(ctx, adminsdk.ChangePasswordRequest{
			CurrentPassword: "OldPassword123!",
			NewPassword:     "NewPassword123!",
		}))

		// All sessions are revoked; a fresh login with the new password works.
		require.Error(t, userSession.Refresh(ctx))

		_, err = client.Login(ctx, adminsdk.LoginRequest{
			Email: "pass.changer@peakform.test", Password: "OldPassword123!",
		})
		assertAPIError(t, err, http.StatusUnauthorized, "Old password after change")

		_, err = client.Login(ctx, adminsdk.LoginRequest{
			Email: "pass.changer@peakform.test", Password: "NewPassword123!",
		})
		require.NoError(t, err)
	})

	t.Run("totp enrollment gates login", func(t *testing.T) {
		adminSession := loginAsAdmin(t, client)
		_, userSession := registerViaInvite(t, client, adminSession,
			"MFA User", "mfa.user@peakform.test", "MfaUser123!pass")

		enrollment, err := userSession.EnrollMFA(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, enrollment.Secret)

		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)
		require.NoError(t, userSession.ActivateMFA(ctx, code))

		// Password alone is no longer enough.
		_, err = client.Login(ctx, adminsdk.LoginRequest{
			Email: "mfa.user@peakform.test", Password: "MfaUser123!pass",
		})
		assertAPIError(t, err, http.StatusUnauthorized, "Login without TOTP code")

		code, err = totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)
		_, err = client.Login(ctx, adminsdk.LoginRequest{
			Email:    "mfa.user@peakform.test",
			Password: "MfaUser123!pass",
			TOTPCode: code,
		})
		require.NoError(t, err)
	})
}
