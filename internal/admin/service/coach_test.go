package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/internal/admin/domain"
)

func TestCoachNumbering(t *testing.T) {
	st := newTestStore(t)
	svc := &CoachService{Store: st}
	ctx := context.Background()

	owner := seedAccount(t, st, "owner@example.com", "password123", domain.RoleCoach)
	other := seedAccount(t, st, "other@example.com", "password123", domain.RoleCoach)

	first, err := svc.Create(ctx, owner.ID, CoachInput{Name: "First", Email: "first@example.com"})
	require.NoError(t, err)
	require.Equal(t, "CH-00001", first.CoachNumber)

	second, err := svc.Create(ctx, owner.ID, CoachInput{Name: "Second", Email: "second@example.com"})
	require.NoError(t, err)
	require.Equal(t, "CH-00002", second.CoachNumber)

	// Sequences are per account.
	elsewhere, err := svc.Create(ctx, other.ID, CoachInput{Name: "Elsewhere", Email: "elsewhere@example.com"})
	require.NoError(t, err)
	require.Equal(t, "CH-00001", elsewhere.CoachNumber)
}

func TestCoachCreateRequiresCoachRole(t *testing.T) {
	st := newTestStore(t)
	svc := &CoachService{Store: st}
	ctx := context.Background()

	plain := seedAccount(t, st, "plain@example.com", "password123", domain.RoleUser)
	_, err := svc.Create(ctx, plain.ID, CoachInput{Name: "Nope", Email: "nope@example.com"})
	require.ErrorIs(t, err, ErrNotACoachAccount)

	admin := seedAccount(t, st, "root@example.com", "password123", domain.RoleAdmin)
	coach, err := svc.Create(ctx, admin.ID, CoachInput{Name: "Support", Email: "support@example.com"})
	require.NoError(t, err)
	require.Equal(t, "CH-00001", coach.CoachNumber)
}

func TestCoachCRUD(t *testing.T) {
	st := newTestStore(t)
	svc := &CoachService{Store: st}
	ctx := context.Background()

	owner := seedAccount(t, st, "owner@example.com", "password123", domain.RoleCoachPro)

	coach, err := svc.Create(ctx, owner.ID, CoachInput{
		Name:        "Jordan",
		Email:       "Jordan@Example.com",
		Bio:         "Strength and conditioning.",
		Specialties: []string{"strength", "mobility"},
		Languages:   []string{"en"},
	})
	require.NoError(t, err)
	require.Equal(t, "jordan@example.com", coach.Email)
	require.Equal(t, []string{"strength", "mobility"}, coach.Specialties)

	t.Run("nil slices round-trip as empty", func(t *testing.T) {
		stored, err := svc.Get(ctx, coach.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Badges)
		require.Empty(t, stored.Badges)
	})

	t.Run("update keeps the assigned number", func(t *testing.T) {
		updated, err := svc.Update(ctx, coach.ID, CoachInput{
			Name:  "Jordan Updated",
			Email: "jordan@example.com",
			Bio:   "Now also nutrition.",
		})
		require.NoError(t, err)
		require.Equal(t, "Jordan Updated", updated.Name)
		require.Equal(t, coach.CoachNumber, updated.CoachNumber)
	})

	t.Run("set avatar", func(t *testing.T) {
		updated, err := svc.SetAvatar(ctx, coach.ID, "coaches/"+coach.ID+".png")
		require.NoError(t, err)
		require.NotNil(t, updated.Avatar)
		require.Equal(t, "coaches/"+coach.ID+".png", *updated.Avatar)
	})

	t.Run("clear avatar", func(t *testing.T) {
		cleared, err := svc.ClearAvatar(ctx, coach.ID)
		require.NoError(t, err)
		require.Nil(t, cleared.Avatar)

		_, err = svc.ClearAvatar(ctx, "missing")
		require.ErrorIs(t, err, ErrCoachNotFound)
	})

	t.Run("list by account", func(t *testing.T) {
		coaches, err := svc.ListByAccount(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, coaches, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, coach.ID))
		_, err := svc.Get(ctx, coach.ID)
		require.ErrorIs(t, err, ErrCoachNotFound)
		require.ErrorIs(t, svc.Delete(ctx, coach.ID), ErrCoachNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, CoachInput{Name: "No Email", Email: "not-an-email"})
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
	})
}

func TestCustomerNumberingAndTypes(t *testing.T) {
	st := newTestStore(t)
	svc := &CustomerService{Store: st}
	ctx := context.Background()

	owner := seedAccount(t, st, "owner@example.com", "password123", domain.RoleCoach)

	first, err := svc.Create(ctx, owner.ID, CustomerInput{Name: "Acme", Email: "acme@example.com", Type: "business"})
	require.NoError(t, err)
	require.Equal(t, "C-00001", first.CustomerNumber)
	require.Equal(t, domain.CustomerType("business"), first.Type)

	second, err := svc.Create(ctx, owner.ID, CustomerInput{Name: "Pat", Email: "pat@example.com", Type: "individual"})
	require.NoError(t, err)
	require.Equal(t, "C-00002", second.CustomerNumber)

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, CustomerInput{Name: "Bad", Email: "bad@example.com", Type: "charity"})
		var vErrs validator.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
	})

	t.Run("update and delete", func(t *testing.T) {
		updated, err := svc.Update(ctx, second.ID, CustomerInput{Name: "Pat Jr", Email: "pat@example.com", Type: "individual"})
		require.NoError(t, err)
		require.Equal(t, "Pat Jr", updated.Name)
		require.Equal(t, "C-00002", updated.CustomerNumber)

		require.NoError(t, svc.Delete(ctx, second.ID))
		_, err = svc.Get(ctx, second.ID)
		require.ErrorIs(t, err, ErrCustomerNotFound)
	})
}

func TestNextNumber(t *testing.T) {
	t.Parallel()

	t.Run("malformed stored number surfaces an error", func(t *testing.T) {
		_, err := nextNumber(context.Background(), "CH-", func() (string, error) {
			return "CH-abc", nil
		})
		require.Error(t, err)
	})

	t.Run("carries past five digits", func(t *testing.T) {
		n, err := nextNumber(context.Background(), "C-", func() (string, error) {
			return "C-99999", nil
		})
		require.NoError(t, err)
		require.Equal(t, "C-100000", n)
	})
}
