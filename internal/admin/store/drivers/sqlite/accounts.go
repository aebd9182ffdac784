package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, name, email, password_hash, role, totp_secret, totp_enabled_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a             domain.Account
		role          string
		totpSecret    sql.NullString
		totpEnabledAt sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role,
		&totpSecret, &totpEnabledAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.TOTPSecret = mapNullStringPtr(totpSecret)
	a.TOTPEnabledAt = mapNullTimePtr(totpEnabledAt)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, role)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PasswordHash, string(a.Role),
	)
	return mapConstraint(err)
}

// accountSortColumns whitelists user-supplied sort keys. Anything else falls
// back to id.
var accountSortColumns = map[string]struct{}{
	"id": {}, "name": {}, "email": {}, "role": {}, "created_at": {}, "updated_at": {},
}

func (r *accountsRepo) ListAccounts(ctx context.Context, p store.ListParams) (store.Page[domain.Account], error) {
	sortCol := p.Sort
	if _, ok := accountSortColumns[sortCol]; !ok {
		sortCol = "id"
	}
	direction := "DESC"
	if strings.EqualFold(p.Direction, "asc") {
		direction = "ASC"
	}

	perPage := p.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}

	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE name LIKE ? OR email LIKE ?`
		like := "%" + p.Search + "%"
		args = append(args, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts`+where, args...,
	).Scan(&total); err != nil {
		return store.Page[domain.Account]{}, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM accounts%s ORDER BY %s %s LIMIT ? OFFSET ?`,
		accountColumns, where, sortCol, direction,
	)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return store.Page[domain.Account]{}, err
	}
	defer rows.Close()

	items := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return store.Page[domain.Account]{}, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return store.Page[domain.Account]{}, err
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}

	return store.Page[domain.Account]{
		Items:      items,
		Total:      total,
		PageNumber: page,
		PerPage:    perPage,
		LastPage:   lastPage,
	}, nil
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, id, name, email string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, email = ?, role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		name, email, string(role), id,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		newHash, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteAccounts(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *accountsRepo) UpdateTOTPSecret(ctx context.Context, id, secret string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_secret = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		secret, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) EnableTOTP(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_enabled_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DisableTOTP(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_enabled_at = NULL, totp_secret = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row update/delete to store.ErrNotFound.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
