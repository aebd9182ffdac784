package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Authenticate with email and password. Accounts with TOTP enabled must also supply totp_code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	adminsdk.TokenResponse
//	@Failure		401		{object}	adminsdk.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
				"Email or password is incorrect")
		case errors.Is(err, service.ErrMFARequired):
			httpx.WriteError(w, http.StatusUnauthorized, "mfa_required",
				"A TOTP code is required for this account")
		case errors.Is(err, service.ErrInvalidTOTPCode):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp_code",
				"The TOTP code is invalid")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Login failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchange a refresh token for a new token pair. The presented token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	adminsdk.TokenResponse
//	@Failure		401		{object}	adminsdk.ErrorResponse
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_grant",
				"Refresh token is invalid or expired")
			return
		}
		log.Error("refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Refresh failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revoke a refresh token. Idempotent.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	adminsdk.LogoutRequest	true	"Refresh token"
//	@Success		204
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Logout failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func tokenResponse(pair service.TokenPair) adminsdk.TokenResponse {
	return adminsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}
