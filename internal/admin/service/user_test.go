package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
)

func TestUserCreate(t *testing.T) {
	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	t.Run("creates with the assigned role", func(t *testing.T) {
		account, err := svc.Create(ctx, CreateUserInput{
			Name:     "Erin",
			Email:    "Erin@Example.com",
			Password: "password123",
			Role:     string(domain.RoleCoachPro),
		})
		require.NoError(t, err)
		require.Equal(t, "erin@example.com", account.Email)
		require.Equal(t, domain.RoleCoachPro, account.Role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{
			Name:     "Frank",
			Email:    "frank@example.com",
			Password: "password123",
			Role:     "superuser",
		})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{
			Name:     "Erin Again",
			Email:    "erin@example.com",
			Password: "password123",
			Role:     string(domain.RoleUser),
		})
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	})
}

func TestUserUpdate(t *testing.T) {
	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	account := seedAccount(t, st, "gina@example.com", "password123", domain.RoleUser)

	updated, err := svc.Update(ctx, account.ID, UpdateUserInput{
		Name:  "Gina Renamed",
		Email: "gina@example.com",
		Role:  string(domain.RoleUserPremium),
	})
	require.NoError(t, err)
	require.Equal(t, "Gina Renamed", updated.Name)
	require.Equal(t, domain.RoleUserPremium, updated.Role)

	t.Run("empty password leaves the hash untouched", func(t *testing.T) {
		after, err := svc.Get(ctx, account.ID)
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("password123", after.PasswordHash))
	})

	t.Run("password reset when provided", func(t *testing.T) {
		_, err := svc.Update(ctx, account.ID, UpdateUserInput{
			Name:     "Gina Renamed",
			Email:    "gina@example.com",
			Role:     string(domain.RoleUserPremium),
			Password: "fresh-secret-42",
		})
		require.NoError(t, err)

		after, err := svc.Get(ctx, account.ID)
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("fresh-secret-42", after.PasswordHash))
		require.Error(t, cryptox.VerifyPassword("password123", after.PasswordHash))
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, account.ID, UpdateUserInput{
			Name:     "Gina Renamed",
			Email:    "gina@example.com",
			Role:     string(domain.RoleUserPremium),
			Password: "short",
		})
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", UpdateUserInput{
			Name:  "Ghost",
			Email: "ghost@example.com",
			Role:  string(domain.RoleUser),
		})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserDelete(t *testing.T) {
	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	admin := seedAccount(t, st, "admin@example.com", "password123", domain.RoleAdmin)
	victim := seedAccount(t, st, "victim@example.com", "password123", domain.RoleUser)

	t.Run("actor cannot delete themselves", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	})

	t.Run("deletes another account", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, victim.ID, admin.ID))
		_, err := svc.Get(ctx, victim.ID)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, victim.ID, admin.ID), ErrUserNotFound)
	})
}

func TestUserBulkDelete(t *testing.T) {
	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	admin := seedAccount(t, st, "admin@example.com", "password123", domain.RoleAdmin)
	a := seedAccount(t, st, "a@example.com", "password123", domain.RoleUser)
	b := seedAccount(t, st, "b@example.com", "password123", domain.RoleUser)

	t.Run("skips the actor and missing ids", func(t *testing.T) {
		deleted, err := svc.BulkDelete(ctx, []string{admin.ID, a.ID, b.ID, "missing"}, admin.ID)
		require.NoError(t, err)
		require.Equal(t, 2, deleted)

		// The actor survives.
		_, err = svc.Get(ctx, admin.ID)
		require.NoError(t, err)
	})

	t.Run("only the actor requested", func(t *testing.T) {
		deleted, err := svc.BulkDelete(ctx, []string{admin.ID}, admin.ID)
		require.NoError(t, err)
		require.Zero(t, deleted)
	})
}

func TestUserList(t *testing.T) {
	st := newTestStore(t)
	svc := &UserService{Store: st}
	ctx := context.Background()

	seedAccount(t, st, "anna@example.com", "password123", domain.RoleUser)
	seedAccount(t, st, "bart@example.com", "password123", domain.RoleCoach)
	seedAccount(t, st, "cora@example.com", "password123", domain.RoleUser)

	t.Run("search filters by email", func(t *testing.T) {
		page, err := svc.List(ctx, store.ListParams{Search: "bart", Page: 1, PerPage: 10})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		require.Equal(t, "bart@example.com", page.Items[0].Email)
	})

	t.Run("pagination metadata", func(t *testing.T) {
		page, err := svc.List(ctx, store.ListParams{Sort: "email", Direction: "asc", Page: 1, PerPage: 2})
		require.NoError(t, err)
		require.Equal(t, 3, page.Total)
		require.Equal(t, 2, page.LastPage)
		require.Len(t, page.Items, 2)
		require.Equal(t, "anna@example.com", page.Items[0].Email)
	})
}
