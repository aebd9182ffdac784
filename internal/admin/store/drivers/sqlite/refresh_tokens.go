package sqlite

import (
	"context"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.AccountID, t.TokenHash, t.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	err := row.Scan(
		&t.ID, &t.AccountID, &t.TokenHash, &t.ExpiresAt,
		&t.Revoked, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *refreshTokensRepo) RevokeAllAccountRefreshTokens(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ? AND revoked = 0`,
		accountID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked = 1`, now)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
