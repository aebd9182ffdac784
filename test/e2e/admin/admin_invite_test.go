package admin_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/pkg/adminsdk"
)

func TestInvitationFlow(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewClient(baseURL)
	session := loginAsAdmin(t, client)
	ctx := t.Context()

	t.Run("create, lookup and redeem an invitation", func(t *testing.T) {
		invite, err := session.CreateInvite(ctx, adminsdk.InviteCreateRequest{
			Email: "invitee@peakform.test",
			Days:  7,
		})
		require.NoError(t, err)
		require.NotEmpty(t, invite.Token)
		require.Equal(t, adminsdk.InvitationStatusPending, invite.Status)

		// Invitation lookup is public so the registration page can pre-fill
		// the invited email.
		looked, err := client.GetInvite(ctx, invite.Token)
		require.NoError(t, err)
		require.Equal(t, "invitee@peakform.test", looked.Email)

		user, err := client.Register(ctx, adminsdk.RegisterRequest{
			Name:        "Invitee",
			Email:       "invitee@peakform.test",
			Password:    "Invitee123!pass",
			InviteToken: invite.Token,
		})
		require.NoError(t, err)
		require.Equal(t, "user", user.Role)

		// Once consumed, the public lookup reads as not found so the
		// endpoint does not reveal which invitations exist.
		_, err = client.GetInvite(ctx, invite.Token)
		assertAPIError(t, err, http.StatusNotFound, "Consumed invite lookup")

		// Admins still see the consumption through the listing.
		list, err := session.ListInvites(ctx)
		require.NoError(t, err)
		var consumed *adminsdk.Invitation
		for i := range list.Items {
			if list.Items[i].Token == invite.Token {
				consumed = &list.Items[i]
			}
		}
		require.NotNil(t, consumed)
		require.Equal(t, adminsdk.InvitationStatusUsed, consumed.Status)
		require.NotNil(t, consumed.UsedBy)
		require.Equal(t, user.ID, *consumed.UsedBy)
	})

	t.Run("registration without a valid token fails", func(t *testing.T) {
		_, err := client.Register(ctx, adminsdk.RegisterRequest{
			Name:        "Gatecrasher",
			Email:       "gatecrasher@peakform.test",
			Password:    "Gatecrash123!",
			InviteToken: "not-a-real-token",
		})
		assertAPIError(t, err, http.StatusUnprocessableEntity, "Unknown invite token")
	})

	t.Run("registration with someone else's invitation fails", func(t *testing.T) {
		invite, err := session.CreateInvite(ctx, adminsdk.InviteCreateRequest{
			Email: "intended@peakform.test",
		})
		require.NoError(t, err)

		_, err = client.Register(ctx, adminsdk.RegisterRequest{
			Name:        "Impostor",
			Email:       "impostor@peakform.test",
			Password:    "Impostor123!pass",
			InviteToken: invite.Token,
		})
		assertAPIError(t, err, http.StatusUnprocessableEntity, "Email mismatch")
	})

	t.Run("consumed invitations cannot be reused", func(t *testing.T) {
		invite, err := session.CreateInvite(ctx, adminsdk.InviteCreateRequest{
			Email: "reuse@peakform.test",
		})
		require.NoError(t, err)

		_, err = client.Register(ctx, adminsdk.RegisterRequest{
			Name:        "First",
			Email:       "reuse@peakform.test",
			Password:    "Reuser123!pass",
			InviteToken: invite.Token,
		})
		require.NoError(t, err)

		_, err = client.Register(ctx, adminsdk.RegisterRequest{
			Name:        "Second",
			Email:       "reuse@peakform.test",
			Password:    "Reuser123!pass",
			InviteToken: invite.Token,
		})
		assertAPIError(t, err, http.StatusUnprocessableEntity, "Reused invite token")
	})

	t.Run("listing shows every invitation with its status", func(t *testing.T) {
		list, err := session.ListInvites(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list.Items)

		statuses := make(map[string]bool)
		for _, inv := range list.Items {
			statuses[inv.Status] = true
		}
		require.True(t, statuses[adminsdk.InvitationStatusUsed])
		require.True(t, statuses[adminsdk.InvitationStatusPending])
	})

	t.Run("regular users cannot mint invitations", func(t *testing.T) {
		_, userSession := registerViaInvite(t, client, session,
			"Plain User", "plain@peakform.test", "PlainUser123!")

		_, err := userSession.CreateInvite(ctx, adminsdk.InviteCreateRequest{
			Email: "friend@peakform.test",
		})
		assertAPIError(t, err, http.StatusForbidden, "Invite creation requires manage_users")
	})
}
