package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, email, token, expires_at, used_at, used_by, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		usedAt sql.NullTime
		usedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.Token, &inv.ExpiresAt,
		&usedAt, &usedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.UsedBy = mapNullStringPtr(usedBy)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, email, token, expires_at)
		VALUES (?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.Token, inv.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

// ConsumeInvitation marks the invitation used if and only if it is still
// unused. The conditional update makes concurrent redemptions of the same
// token settle to exactly one winner.
func (r *invitationsRepo) ConsumeInvitation(ctx context.Context, token, accountID string, usedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET used_at = ?, used_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE token = ? AND used_at IS NULL`,
		usedAt, accountID, token,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *invitationsRepo) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}
