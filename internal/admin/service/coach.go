package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrCoachNotFound    = errors.New("coach not found")
	ErrNotACoachAccount = errors.New("account role cannot own coach profiles")
)

const coachNumberPrefix = "CH-"

type CoachInput struct {
	Name        string   `validate:"required,min=1,max=255"`
	Email       string   `validate:"required,email,max=255"`
	Bio         string   `validate:"max=2000"`
	Specialties []string `validate:"max=20,dive,min=1,max=100"`
	Badges      []string `validate:"max=20,dive,min=1,max=100"`
	Languages   []string `validate:"max=20,dive,min=1,max=100"`
}

type CoachService struct {
	Store store.Store
}

func (s *CoachService) Get(ctx context.Context, id string) (domain.Coach, error) {
	coach, err := s.Store.Coaches().GetCoachByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Coach{}, ErrCoachNotFound
		}
		return domain.Coach{}, err
	}
	return coach, nil
}

func (s *CoachService) ListByAccount(ctx context.Context, accountID string) ([]domain.Coach, error) {
	return s.Store.Coaches().ListCoachesByAccount(ctx, accountID)
}

// Create assigns the next sequential coach number for the owning account and
// persists the profile. Numbering runs inside a transaction so concurrent
// creates for the same account cannot collide.
func (s *CoachService) Create(ctx context.Context, accountID string, in CoachInput) (domain.Coach, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Coach{}, err
	}

	// Coach profiles belong to coach-tier accounts; admins may also hold
	// them for support work.
	owner, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Coach{}, ErrNotACoachAccount
		}
		return domain.Coach{}, err
	}
	if !domain.HasAnyRole(owner, append(domain.CoachRoles(), domain.RoleAdmin)...) {
		log.Warn("coach profile creation denied",
			slog.String("account_id", accountID),
			slog.String("role", string(owner.Role)),
		)
		return domain.Coach{}, ErrNotACoachAccount
	}

	now := time.Now().UTC()
	coach := domain.Coach{
		ID:          idx.New().String(),
		AccountID:   accountID,
		Name:        in.Name,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Bio:         in.Bio,
		Specialties: in.Specialties,
		Badges:      in.Badges,
		Languages:   in.Languages,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		number, err := nextNumber(ctx, coachNumberPrefix, func() (string, error) {
			return tx.Coaches().LatestCoachNumber(ctx, accountID)
		})
		if err != nil {
			return err
		}
		coach.CoachNumber = number
		return tx.Coaches().CreateCoach(ctx, coach)
	})
	if err != nil {
		log.Error("failed to create coach", slog.Any("error", err))
		return domain.Coach{}, err
	}

	log.Info("coach created",
		slog.String("coach_id", coach.ID),
		slog.String("coach_number", coach.CoachNumber),
		slog.String("account_id", accountID),
	)
	return coach, nil
}

func (s *CoachService) Update(ctx context.Context, id string, in CoachInput) (domain.Coach, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Coach{}, err
	}

	coach, err := s.Get(ctx, id)
	if err != nil {
		return domain.Coach{}, err
	}

	coach.Name = in.Name
	coach.Email = strings.ToLower(strings.TrimSpace(in.Email))
	coach.Bio = in.Bio
	coach.Specialties = in.Specialties
	coach.Badges = in.Badges
	coach.Languages = in.Languages

	if err := s.Store.Coaches().UpdateCoach(ctx, coach); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Coach{}, ErrCoachNotFound
		}
		log.Error("failed to update coach", slog.Any("error", err))
		return domain.Coach{}, err
	}
	return s.Get(ctx, id)
}

// SetAvatar records the stored avatar path for a coach. The file itself is
// written by the storage layer before this is called.
func (s *CoachService) SetAvatar(ctx context.Context, id, path string) (domain.Coach, error) {
	coach, err := s.Get(ctx, id)
	if err != nil {
		return domain.Coach{}, err
	}
	coach.Avatar = &path
	if err := s.Store.Coaches().UpdateCoach(ctx, coach); err != nil {
		return domain.Coach{}, err
	}
	return s.Get(ctx, id)
}

// ClearAvatar drops the stored avatar path. The caller removes the file.
func (s *CoachService) ClearAvatar(ctx context.Context, id string) (domain.Coach, error) {
	coach, err := s.Get(ctx, id)
	if err != nil {
		return domain.Coach{}, err
	}
	coach.Avatar = nil
	if err := s.Store.Coaches().UpdateCoach(ctx, coach); err != nil {
		return domain.Coach{}, err
	}
	return s.Get(ctx, id)
}

func (s *CoachService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Coaches().DeleteCoach(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCoachNotFound
		}
		log.Error("failed to delete coach", slog.Any("error", err))
		return err
	}

	log.Info("coach deleted", slog.String("coach_id", id))
	return nil
}

// nextNumber produces the next value in a per-account "PREFIX-00001" style
// sequence. latest returns store.ErrNotFound when no rows exist yet.
func nextNumber(ctx context.Context, prefix string, latest func() (string, error)) (string, error) {
	current, err := latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Sprintf("%s%05d", prefix, 1), nil
		}
		return "", err
	}

	n, err := strconv.Atoi(strings.TrimPrefix(current, prefix))
	if err != nil {
		return "", fmt.Errorf("malformed sequence number %q: %w", current, err)
	}
	return fmt.Sprintf("%s%05d", prefix, n+1), nil
}
