package domain

import "time"

// Coach is a coaching profile owned by exactly one account.
type Coach struct {
	ID          string
	AccountID   string
	CoachNumber string // CH-00001 style, assigned on create
	Name        string
	Email       string
	Avatar      *string // Storage path, nil when no avatar uploaded
	Bio         string
	Specialties []string
	Badges      []string
	Languages   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
