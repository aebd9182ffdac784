package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreate godoc
//
//	@Summary		Create invitation
//	@Description	Mint a single-use invitation for an email address and send the registration link. Requires the manage_users permission.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.InviteCreateRequest	true	"Invitation"
//	@Success		201		{object}	adminsdk.Invitation
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.InviteCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	invitation, err := h.InviteService.Generate(ctx, req.Email, req.Days, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInviteRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
				"email is required and days must be between 1 and 365")
			return
		}
		log.Error("failed to create invitation", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderInvitation(invitation))
}

// HandleList godoc
//
//	@Summary		List invitations
//	@Description	List all invitations with their current status, newest first.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	adminsdk.InvitationList
//	@Security		BearerAuth
//	@Router			/v1/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	invitations, err := h.InviteService.List(ctx)
	if err != nil {
		log.Error("failed to list invitations", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list invitations")
		return
	}

	items := make([]adminsdk.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		items = append(items, renderInvitation(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, adminsdk.InvitationList{Items: items})
}

// HandleLookup godoc
//
//	@Summary		Look up invitation
//	@Description	Fetch a pending invitation by its token so registration pages can pre-fill the invited email. Unknown, expired, and used tokens all read as not found.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	adminsdk.Invitation
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Router			/v1/invites/{token} [get].
func (h *InvitesHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	invitation, err := h.InviteService.Lookup(ctx, r.PathValue("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found")
			return
		}
		log.Error("failed to look up invitation", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to look up invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderInvitation(invitation))
}
