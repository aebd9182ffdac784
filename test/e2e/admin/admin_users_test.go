package admin_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/pkg/adminsdk"
)

func TestUserManagement(t *testing.T) {
	baseURL, cleanup := setupAdminContainer(t)
	defer cleanup()

	client := adminsdk.NewClient(baseURL)
	session := loginAsAdmin(t, client)
	ctx := t.Context()

	t.Run("create, update and delete", func(t *testing.T) {
		user, err := session.CreateUser(ctx, adminsdk.UserCreateRequest{
			Name:     "Managed Coach",
			Email:    "managed.coach@peakform.test",
			Password: "ManagedCoach1!",
			Role:     "coach",
		})
		require.NoError(t, err)
		require.Equal(t, "coach", user.Role)

		updated, err := session.UpdateUser(ctx, user.ID, adminsdk.UserUpdateRequest{
			Name:  "Managed Coach Pro",
			Email: "managed.coach@peakform.test",
			Role:  "coach-pro",
		})
		require.NoError(t, err)
		require.Equal(t, "coach-pro", updated.Role)

		require.NoError(t, session.DeleteUser(ctx, user.ID))

		_, err = session.GetUser(ctx, user.ID)
		assertAPIError(t, err, http.StatusNotFound, "Deleted user lookup")
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := session.CreateUser(ctx, adminsdk.UserCreateRequest{
			Name:     "Bad Role",
			Email:    "bad.role@peakform.test",
			Password: "BadRole123!pass",
			Role:     "superuser",
		})
		assertAPIError(t, err, http.StatusUnprocessableEntity, "Unknown role")
	})

	t.Run("admins cannot delete their own account", func(t *testing.T) {
		profile, err := session.GetProfile(ctx)
		require.NoError(t, err)

		err = session.DeleteUser(ctx, profile.ID)
		assertAPIError(t, err, http.StatusBadRequest, "Self delete")
	})

	t.Run("search, sort and paginate", func(t *testing.T) {
		for _, email := range []string{"pag.a@peakform.test", "pag.b@peakform.test", "pag.c@peakform.test"} {
			_, err := session.CreateUser(ctx, adminsdk.UserCreateRequest{
				Name:     "Paginated",
				Email:    email,
				Password: "Paginated123!",
				Role:     "user",
			})
			require.NoError(t, err)
		}

		page, err := session.ListUsers(ctx, adminsdk.ListUsersParams{
			Search: "pag.", Sort: "email", Direction: "asc", Page: 1, PerPage: 2,
		})
		require.NoError(t, err)
		require.Equal(t, 3, page.Total)
		require.Equal(t, 2, page.LastPage)
		require.Len(t, page.Items, 2)
		require.Equal(t, "pag.a@peakform.test", page.Items[0].Email)
	})

	t.Run("bulk delete skips the caller", func(t *testing.T) {
		profile, err := session.GetProfile(ctx)
		require.NoError(t, err)

		a, err := session.CreateUser(ctx, adminsdk.UserCreateRequest{
			Name: "Bulk A", Email: "bulk.a@peakform.test", Password: "BulkUser123!", Role: "user",
		})
		require.NoError(t, err)
		b, err := session.CreateUser(ctx, adminsdk.UserCreateRequest{
			Name: "Bulk B", Email: "bulk.b@peakform.test", Password: "BulkUser123!", Role: "user",
		})
		require.NoError(t, err)

		resp, err := session.BulkDeleteUsers(ctx, []string{a.ID, b.ID, profile.ID})
		require.NoError(t, err)
		require.Equal(t, 2, resp.Deleted)

		// The admin account survives and the session still works.
		_, err = session.GetProfile(ctx)
		require.NoError(t, err)
	})

	t.Run("export users as CSV", func(t *testing.T) {
		raw, err := session.ExportUsersCSV(ctx, adminsdk.ListUsersParams{})
		require.NoError(t, err)

		records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(records), 2)
		require.Equal(t, []string{"id", "name", "email", "role", "created_at", "updated_at"}, records[0])
	})

	t.Run("regular users cannot manage accounts", func(t *testing.T) {
		_, userSession := registerViaInvite(t, client, session,
			"Limited", "limited@peakform.test", "Limited123!pass")

		_, err := userSession.ListUsers(ctx, adminsdk.ListUsersParams{})
		assertAPIError(t, err, http.StatusForbidden, "User listing requires manage_users")

		_, err = userSession.ExportUsersCSV(ctx, adminsdk.ListUsersParams{})
		require.Error(t, err, "Export requires export_data")
	})
}
