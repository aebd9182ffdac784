package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
)

func TestExportUsers(t *testing.T) {
	st := newTestStore(t)
	svc := &ExportService{Store: st}
	ctx := context.Background()

	seedAccount(t, st, "xavier@example.com", "password123", domain.RoleUser)
	seedAccount(t, st, "yara@example.com", "password123", domain.RoleCoach)
	seedAccount(t, st, "zoe@example.com", "password123", domain.RoleAdmin)

	t.Run("writes a header and one row per account", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportUsers(ctx, &buf, store.ListParams{Sort: "email", Direction: "asc"}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		require.Equal(t, []string{"id", "name", "email", "role", "created_at", "updated_at"}, records[0])
		require.Equal(t, "xavier@example.com", records[1][2])
		require.Equal(t, "coach", records[2][3])
	})

	t.Run("search filter applies", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportUsers(ctx, &buf, store.ListParams{Search: "yara"}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, "yara@example.com", records[1][2])
	})

	t.Run("empty result still yields the header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportUsers(ctx, &buf, store.ListParams{Search: "nomatch"}))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}

func TestExportCustomers(t *testing.T) {
	st := newTestStore(t)
	customers := &CustomerService{Store: st}
	svc := &ExportService{Store: st}
	ctx := context.Background()

	owner := seedAccount(t, st, "owner@example.com", "password123", domain.RoleCoachPro)
	other := seedAccount(t, st, "other@example.com", "password123", domain.RoleCoachPro)

	_, err := customers.Create(ctx, owner.ID, CustomerInput{Name: "Acme Corp", Email: "acme@example.com", Type: "business"})
	require.NoError(t, err)
	_, err = customers.Create(ctx, owner.ID, CustomerInput{Name: "Jane Doe", Email: "jane@example.com", Type: "individual"})
	require.NoError(t, err)
	_, err = customers.Create(ctx, other.ID, CustomerInput{Name: "Elsewhere", Email: "elsewhere@example.com", Type: "individual"})
	require.NoError(t, err)

	t.Run("exports only the owner's customers in number order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.ExportCustomers(ctx, &buf, owner.ID))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, []string{"customer_number", "name", "email", "type", "created_at"}, records[0])
		require.Equal(t, "C-00001", records[1][0])
		require.Equal(t, "Acme Corp", records[1][1])
		require.Equal(t, "business", records[1][3])
		require.Equal(t, "C-00002", records[2][0])
	})

	t.Run("account with no customers yields the header only", func(t *testing.T) {
		empty := seedAccount(t, st, "nobody@example.com", "password123", domain.RoleUser)

		var buf bytes.Buffer
		require.NoError(t, svc.ExportCustomers(ctx, &buf, empty.ID))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}
