package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type RegisterHandler struct {
	RegisterService *service.RegisterService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Create an account using an invitation token. The token must match the invited email, be unexpired, and unused.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	adminsdk.User
//	@Failure		422		{object}	adminsdk.ErrorResponse	"Validation failure, including invite_token problems"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.RegisterService.Register(ctx, service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		// Invitation failures surface as field errors on invite_token so
		// registration forms can attach the message to the right input.
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteFieldErrors(w, map[string]string{
				"invite_token": "Invitation not found",
			})
		case errors.Is(err, service.ErrEmailMismatch):
			httpx.WriteFieldErrors(w, map[string]string{
				"invite_token": "Invitation was issued for a different email address",
			})
		case errors.Is(err, service.ErrInvitationExpired):
			httpx.WriteFieldErrors(w, map[string]string{
				"invite_token": "Invitation has expired",
			})
		case errors.Is(err, service.ErrInvitationAlreadyUsed):
			httpx.WriteFieldErrors(w, map[string]string{
				"invite_token": "Invitation has already been used",
			})
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteFieldErrors(w, map[string]string{
				"email": "An account with this email already exists",
			})
		default:
			if isValidationError(err) {
				writeValidationError(w, err)
				return
			}
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Registration failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderUser(account))
}
