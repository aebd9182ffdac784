package sqlite

import (
	"context"
	"database/sql"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
)

type customersRepo struct {
	db dbtx
}

const customerColumns = `id, account_id, customer_number, name, email, avatar, type, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var (
		c      domain.Customer
		avatar sql.NullString
		typ    string
	)
	err := row.Scan(
		&c.ID, &c.AccountID, &c.CustomerNumber, &c.Name, &c.Email,
		&avatar, &typ, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Avatar = mapNullStringPtr(avatar)
	c.Type = domain.CustomerType(typ)
	return c, nil
}

func (r *customersRepo) GetCustomerByID(ctx context.Context, id string) (domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, mapNotFound(err)
	}
	return c, nil
}

func (r *customersRepo) ListCustomersByAccount(ctx context.Context, accountID string) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE account_id = ? ORDER BY customer_number ASC`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customersRepo) LatestCustomerNumber(ctx context.Context, accountID string) (string, error) {
	var number string
	err := r.db.QueryRowContext(ctx, `
		SELECT customer_number FROM customers
		WHERE account_id = ?
		ORDER BY customer_number DESC
		LIMIT 1`,
		accountID,
	).Scan(&number)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	return number, err
}

func (r *customersRepo) CreateCustomer(ctx context.Context, c domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, account_id, customer_number, name, email, avatar, type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.CustomerNumber, c.Name, c.Email,
		mapOptionalString(c.Avatar), string(c.Type),
	)
	return mapConstraint(err)
}

func (r *customersRepo) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, email = ?, avatar = ?, type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, c.Email, mapOptionalString(c.Avatar), string(c.Type), c.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *customersRepo) DeleteCustomer(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
