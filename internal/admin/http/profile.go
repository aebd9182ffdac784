package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet godoc
//
//	@Summary		Get own profile
//	@Description	The caller's account, including the permissions their role grants.
//	@Tags			Profile
//	@Produce		json
//	@Success		200	{object}	adminsdk.Profile
//	@Security		BearerAuth
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := h.ProfileService.Get(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to fetch profile", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.Profile{
		User:        renderUser(account),
		Permissions: account.Role.Permissions(),
	})
}

// HandleUpdate godoc
//
//	@Summary	Update own profile
//	@Tags		Profile
//	@Accept		json
//	@Produce	json
//	@Param		request	body		adminsdk.ProfileUpdateRequest	true	"Profile"
//	@Success	200		{object}	adminsdk.Profile
//	@Failure	422		{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.ProfileService.Update(ctx, httpx.AccountIDFromCtx(ctx), service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteFieldErrors(w, map[string]string{"email": "An account with this email already exists"})
		case isValidationError(err):
			writeValidationError(w, err)
		default:
			log.Error("failed to update profile", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update profile")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.Profile{
		User:        renderUser(account),
		Permissions: account.Role.Permissions(),
	})
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Verify the current password and set a new one. All other sessions are logged out.
//	@Tags			Profile
//	@Accept			json
//	@Param			request	body	adminsdk.ChangePasswordRequest	true	"Passwords"
//	@Success		204
//	@Failure		401	{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profile/password [post].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.ProfileService.ChangePassword(ctx, httpx.AccountIDFromCtx(ctx), service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
				"Current password is incorrect")
		case isValidationError(err):
			writeValidationError(w, err)
		default:
			log.Error("failed to change password", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to change password")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
