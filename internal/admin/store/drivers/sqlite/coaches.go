package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
)

type coachesRepo struct {
	db dbtx
}

const coachColumns = `id, account_id, coach_number, name, email, avatar, bio, specialties, badges, languages, created_at, updated_at`

// encodeStrings stores a string slice as a JSON text column. A nil slice is
// stored as an empty array so reads never produce null.
func encodeStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeStrings(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var s []string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return s, nil
}

func scanCoach(row interface{ Scan(...any) error }) (domain.Coach, error) {
	var (
		c                              domain.Coach
		avatar                         sql.NullString
		specialties, badges, languages string
	)
	err := row.Scan(
		&c.ID, &c.AccountID, &c.CoachNumber, &c.Name, &c.Email,
		&avatar, &c.Bio, &specialties, &badges, &languages,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Coach{}, err
	}
	c.Avatar = mapNullStringPtr(avatar)
	if c.Specialties, err = decodeStrings(specialties); err != nil {
		return domain.Coach{}, err
	}
	if c.Badges, err = decodeStrings(badges); err != nil {
		return domain.Coach{}, err
	}
	if c.Languages, err = decodeStrings(languages); err != nil {
		return domain.Coach{}, err
	}
	return c, nil
}

func (r *coachesRepo) GetCoachByID(ctx context.Context, id string) (domain.Coach, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+coachColumns+` FROM coaches WHERE id = ?`, id)
	c, err := scanCoach(row)
	if err != nil {
		return domain.Coach{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coachesRepo) ListCoachesByAccount(ctx context.Context, accountID string) ([]domain.Coach, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+coachColumns+` FROM coaches WHERE account_id = ? ORDER BY coach_number ASC`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := []domain.Coach{}
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

func (r *coachesRepo) LatestCoachNumber(ctx context.Context, accountID string) (string, error) {
	var number string
	err := r.db.QueryRowContext(ctx, `
		SELECT coach_number FROM coaches
		WHERE account_id = ?
		ORDER BY coach_number DESC
		LIMIT 1`,
		accountID,
	).Scan(&number)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	return number, err
}

func (r *coachesRepo) CreateCoach(ctx context.Context, c domain.Coach) error {
	specialties, err := encodeStrings(c.Specialties)
	if err != nil {
		return err
	}
	badges, err := encodeStrings(c.Badges)
	if err != nil {
		return err
	}
	languages, err := encodeStrings(c.Languages)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO coaches (id, account_id, coach_number, name, email, avatar, bio, specialties, badges, languages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.CoachNumber, c.Name, c.Email,
		mapOptionalString(c.Avatar), c.Bio, specialties, badges, languages,
	)
	return mapConstraint(err)
}

func (r *coachesRepo) UpdateCoach(ctx context.Context, c domain.Coach) error {
	specialties, err := encodeStrings(c.Specialties)
	if err != nil {
		return err
	}
	badges, err := encodeStrings(c.Badges)
	if err != nil {
		return err
	}
	languages, err := encodeStrings(c.Languages)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE coaches
		SET name = ?, email = ?, avatar = ?, bio = ?, specialties = ?, badges = ?, languages = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, c.Email, mapOptionalString(c.Avatar), c.Bio,
		specialties, badges, languages, c.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *coachesRepo) DeleteCoach(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coaches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
