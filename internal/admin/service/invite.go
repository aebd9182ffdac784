package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/mailx"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrInvalidInviteRequest  = errors.New("invalid invite request")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrEmailMismatch         = errors.New("invitation was issued for a different email")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrInvitationAlreadyUsed = errors.New("invitation has already been used")
)

const (
	// DefaultInviteDays is used when the caller does not specify a validity
	// window.
	DefaultInviteDays = 7
	MinInviteDays     = 1
	MaxInviteDays     = 365
)

type InviteService struct {
	Store   store.Store
	Mailer  mailx.Mailer
	BaseURL string
}

// Generate mints a new single-use invitation for an email address and emails
// the registration link to the recipient. The raw token is returned so the
// caller can surface it immediately.
func (s *InviteService) Generate(
	ctx context.Context,
	email string,
	days int,
	createdBy string,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		log.Warn("invite generation missing email")
		return domain.Invitation{}, ErrInvalidInviteRequest
	}
	if days == 0 {
		days = DefaultInviteDays
	}
	if days < MinInviteDays || days > MaxInviteDays {
		log.Warn("invite generation with out-of-range validity",
			slog.Int("days", days),
		)
		return domain.Invitation{}, ErrInvalidInviteRequest
	}

	// 2. Generate random token.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	now := time.Now().UTC()
	invitation := domain.Invitation{
		ID:        idx.New().String(),
		Email:     email,
		Token:     token,
		ExpiresAt: now.AddDate(0, 0, days),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 3. Persist the invitation.
	if err := s.Store.Invitations().CreateInvitation(ctx, invitation); err != nil {
		log.Error("failed to create invitation",
			slog.String("invitation_id", invitation.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	// 4. Send the registration link. A mail failure does not invalidate the
	// invitation; the token is still returned to the caller.
	link := fmt.Sprintf("%s/invite/%s", strings.TrimRight(s.BaseURL, "/"), token)
	if s.Mailer != nil {
		msg := mailx.Message{
			To:      email,
			Subject: "You have been invited to PeakForm",
			TextBody: fmt.Sprintf(
				"You have been invited to create a PeakForm account.\n\n"+
					"Register here: %s\n\n"+
					"The link expires on %s.",
				link, invitation.ExpiresAt.Format(time.RFC1123),
			),
		}
		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.Error("failed to send invitation email",
				slog.String("invitation_id", invitation.ID),
				slog.Any("error", err),
			)
		}
	}

	log.Info("invitation created",
		slog.String("invitation_id", invitation.ID),
		slog.String("created_by", createdBy),
		slog.Time("expires_at", invitation.ExpiresAt),
	)

	return invitation, nil
}

// Lookup fetches an invitation by its raw token for the public registration
// form. Expired and used invitations read as not found, same as unknown
// tokens, so the endpoint never reveals which invitations exist.
func (s *InviteService) Lookup(ctx context.Context, token string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	invitation, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	if invitation.IsExpired() || invitation.IsUsed() {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	return invitation, nil
}

// List returns all invitations, newest first.
func (s *InviteService) List(ctx context.Context) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListInvitations(ctx)
}

// validateAndConsume checks an invitation against the registering email and
// marks it used by accountID. Checks run in a fixed order so a token that is
// wrong in several ways always reports the same reason:
// not found, then email mismatch, then expired, then already used.
//
// The caller runs this inside the registration transaction; the conditional
// consume in the store closes the race between concurrent redemptions.
func validateAndConsume(
	ctx context.Context,
	invitations store.Invitations,
	token, email, accountID string,
	now time.Time,
) error {
	invitation, err := invitations.GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}

	if !strings.EqualFold(invitation.Email, email) {
		return ErrEmailMismatch
	}
	if now.After(invitation.ExpiresAt) {
		return ErrInvitationExpired
	}
	if invitation.IsUsed() {
		return ErrInvitationAlreadyUsed
	}

	consumed, err := invitations.ConsumeInvitation(ctx, token, accountID, now)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost the race against another redemption of the same token.
		return ErrInvitationAlreadyUsed
	}
	return nil
}
