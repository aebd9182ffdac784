package service

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"time"

	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/slogx"
)

// exportPageSize bounds memory per fetch while streaming large exports.
const exportPageSize = 500

type ExportService struct {
	Store store.Store
}

// ExportUsers streams all accounts matching the filter as CSV. Search and
// sort parameters apply; pagination is ignored so the export covers every
// matching row.
func (s *ExportService) ExportUsers(ctx context.Context, w io.Writer, p store.ListParams) error {
	log := slogx.FromContext(ctx)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "email", "role", "created_at", "updated_at"}); err != nil {
		return err
	}

	p.PerPage = exportPageSize
	p.Page = 1

	total := 0
	for {
		page, err := s.Store.Accounts().ListAccounts(ctx, p)
		if err != nil {
			log.Error("failed to list accounts for export", slog.Any("error", err))
			return err
		}

		for _, a := range page.Items {
			record := []string{
				a.ID,
				a.Name,
				a.Email,
				string(a.Role),
				a.CreatedAt.UTC().Format(time.RFC3339),
				a.UpdatedAt.UTC().Format(time.RFC3339),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		total += len(page.Items)

		if p.Page >= page.LastPage || len(page.Items) == 0 {
			break
		}
		p.Page++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	log.Info("users exported", slog.Int("rows", total))
	return nil
}

// ExportCustomers streams the account's customers as CSV in customer number order.
func (s *ExportService) ExportCustomers(ctx context.Context, w io.Writer, accountID string) error {
	log := slogx.FromContext(ctx)

	customers, err := s.Store.Customers().ListCustomersByAccount(ctx, accountID)
	if err != nil {
		log.Error("failed to list customers for export", slog.Any("error", err))
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"customer_number", "name", "email", "type", "created_at"}); err != nil {
		return err
	}
	for _, c := range customers {
		record := []string{
			c.CustomerNumber,
			c.Name,
			c.Email,
			string(c.Type),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	log.Info("customers exported", slog.Int("rows", len(customers)))
	return nil
}
