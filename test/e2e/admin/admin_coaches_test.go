package admin_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/pkg/adminsdk"
)

// minimalPNG is a valid PNG signature followed by padding, enough for the
// server-side content sniffing to accept it.
func minimalPNG() []byte {
	data := make([]byte, 256)
	copy(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	return data
}

func TestCoachManagement(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewClient(baseURL)
	adminSession := loginAsAdmin(t, client)
	ctx := t.Context()

	coachOwner, _ := registerViaInvite(t, client, adminSession,
		"Coach Owner", "coach.owner@peakform.test", "CoachOwner123!")

	// Registration lands on the user role, which cannot hold coach profiles.
	// Promote the owner and log in again so the token carries the new role.
	_, err := adminSession.UpdateUser(ctx, coachOwner.ID, adminsdk.UserUpdateRequest{
		Name:  coachOwner.Name,
		Email: coachOwner.Email,
		Role:  "coach",
	})
	require.NoError(t, err)
	coachSession, err := client.Login(ctx, adminsdk.LoginRequest{
		Email:    "coach.owner@peakform.test",
		Password: "CoachOwner123!",
	})
	require.NoError(t, err)

	t.Run("plain users cannot manage coach profiles", func(t *testing.T) {
		_, userSession := registerViaInvite(t, client, adminSession,
			"Plain Member", "plain.member@peakform.test", "PlainMember123!")

		_, err := userSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:  "Denied",
			Email: "denied@peakform.test",
		})
		assertAPIError(t, err, http.StatusForbidden, "Coach creation without edit_profile")

		_, err = userSession.ListCoaches(ctx)
		assertAPIError(t, err, http.StatusForbidden, "Coach listing without view_profile")
	})

	t.Run("coaches get sequential numbers per account", func(t *testing.T) {
		first, err := coachSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:        "Alex Trainer",
			Email:       "alex.trainer@peakform.test",
			Bio:         "Strength coaching.",
			Specialties: []string{"strength"},
			Languages:   []string{"en"},
		})
		require.NoError(t, err)
		require.Equal(t, "CH-00001", first.CoachNumber)

		second, err := coachSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:  "Blake Trainer",
			Email: "blake.trainer@peakform.test",
		})
		require.NoError(t, err)
		require.Equal(t, "CH-00002", second.CoachNumber)

		list, err := coachSession.ListCoaches(ctx)
		require.NoError(t, err)
		require.Len(t, list.Items, 2)
	})

	t.Run("avatar upload and replacement", func(t *testing.T) {
		coach, err := coachSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:  "Avatar Coach",
			Email: "avatar.coach@peakform.test",
		})
		require.NoError(t, err)

		uploaded, err := coachSession.UploadCoachAvatar(ctx, coach.ID, "avatar.png", bytes.NewReader(minimalPNG()))
		require.NoError(t, err)
		require.NotNil(t, uploaded.Avatar)

		// The stored avatar is served under /avatars/.
		resp, err := http.Get(baseURL + "/avatars/" + *uploaded.Avatar)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("avatar removal clears the profile and the file", func(t *testing.T) {
		coach, err := coachSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:  "Removal Coach",
			Email: "removal.coach@peakform.test",
		})
		require.NoError(t, err)

		uploaded, err := coachSession.UploadCoachAvatar(ctx, coach.ID, "avatar.png", bytes.NewReader(minimalPNG()))
		require.NoError(t, err)
		require.NotNil(t, uploaded.Avatar)
		path := *uploaded.Avatar

		removed, err := coachSession.RemoveCoachAvatar(ctx, coach.ID)
		require.NoError(t, err)
		require.Nil(t, removed.Avatar)

		resp, err := http.Get(baseURL + "/avatars/" + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-image uploads rejected", func(t *testing.T) {
		coach, err := coachSession.CreateCoach(ctx, adminsdk.CoachRequest{
			Name:  "Text Coach",
			Email: "text.coach@peakform.test",
		})
		require.NoError(t, err)

		_, err = coachSession.UploadCoachAvatar(ctx, coach.ID, "notes.txt",
			bytes.NewReader([]byte("definitely not an image")))
		require.Error(t, err)
	})

	t.Run("other accounts cannot see my coaches", func(t *testing.T) {
		otherOwner, _ := registerViaInvite(t, client, adminSession,
			"Other Owner", "other.owner@peakform.test", "OtherOwner123!")
		_, err := adminSession.UpdateUser(ctx, otherOwner.ID, adminsdk.UserUpdateRequest{
			Name:  otherOwner.Name,
			Email: otherOwner.Email,
			Role:  "coach",
		})
		require.NoError(t, err)
		otherSession, err := client.Login(ctx, adminsdk.LoginRequest{
			Email:    "other.owner@peakform.test",
			Password: "OtherOwner123!",
		})
		require.NoError(t, err)

		mine, err := coachSession.ListCoaches(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, mine.Items)

		// Direct lookup of a foreign coach reads as not found.
		_, err = otherSession.GetCoach(ctx, mine.Items[0].ID)
		assertAPIError(t, err, http.StatusNotFound, "Foreign coach lookup")

		// Admins can see everything via manage_coaches.
		_, err = adminSession.GetCoach(ctx, mine.Items[0].ID)
		require.NoError(t, err)
	})

	t.Run("customers mirror the flow with their own sequence", func(t *testing.T) {
		customer, err := coachSession.CreateCustomer(ctx, adminsdk.CustomerRequest{
			Name:  "First Client",
			Email: "first.client@peakform.test",
			Type:  "individual",
		})
		require.NoError(t, err)
		require.Equal(t, "C-00001", customer.CustomerNumber)

		updated, err := coachSession.UpdateCustomer(ctx, customer.ID, adminsdk.CustomerRequest{
			Name:  "First Client Renamed",
			Email: "first.client@peakform.test",
			Type:  "business",
		})
		require.NoError(t, err)
		require.Equal(t, "business", updated.Type)
		require.Equal(t, "C-00001", updated.CustomerNumber)

		require.NoError(t, coachSession.DeleteCustomer(ctx, customer.ID))
		_, err = coachSession.GetCustomer(ctx, customer.ID)
		assertAPIError(t, err, http.StatusNotFound, "Deleted customer lookup")
	})

	t.Run("customer export needs export_data", func(t *testing.T) {
		exporter, _ := registerViaInvite(t, client, adminSession,
			"Export Owner", "export.owner@peakform.test", "ExportOwner123!")

		// The base coach tier lacks export_data.
		_, err := coachSession.ExportCustomersCSV(ctx)
		assertAPIError(t, err, http.StatusForbidden, "Export without export_data")

		_, err = adminSession.UpdateUser(ctx, exporter.ID, adminsdk.UserUpdateRequest{
			Name:  exporter.Name,
			Email: exporter.Email,
			Role:  "coach-pro",
		})
		require.NoError(t, err)

		// Role lives in the access token, so log in again to pick it up.
		proSession, err := client.Login(ctx, adminsdk.LoginRequest{
			Email:    "export.owner@peakform.test",
			Password: "ExportOwner123!",
		})
		require.NoError(t, err)

		_, err = proSession.CreateCustomer(ctx, adminsdk.CustomerRequest{
			Name:  "Export Client",
			Email: "export.client@peakform.test",
			Type:  "individual",
		})
		require.NoError(t, err)

		csvBytes, err := proSession.ExportCustomersCSV(ctx)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
		require.Len(t, lines, 2)
		require.Equal(t, "customer_number,name,email,type,created_at", lines[0])
		require.True(t, strings.HasPrefix(lines[1], "C-00001,Export Client"))
	})
}
