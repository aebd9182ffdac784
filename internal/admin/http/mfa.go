package http

import (
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll godoc
//
//	@Summary		Start TOTP enrollment
//	@Description	Generate a TOTP secret and provisioning URL. Enrollment is pending until activated with a code.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	adminsdk.MFAEnrollResponse
//	@Failure		409	{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	enrollment, err := h.MFAService.Enroll(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, service.ErrMFAAlreadyEnabled) {
			httpx.WriteError(w, http.StatusConflict, "already_enabled", "TOTP is already enabled")
			return
		}
		log.Error("failed to enroll totp", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to start enrollment")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.MFAEnrollResponse{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.OTPAuthURL,
	})
}

// HandleActivate godoc
//
//	@Summary		Activate TOTP
//	@Description	Confirm enrollment with a code from the authenticator app.
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	adminsdk.MFACodeRequest	true	"Code"
//	@Success		204
//	@Failure		401	{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.MFACodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Activate(ctx, httpx.AccountIDFromCtx(ctx), req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp_code", "The TOTP code is invalid")
		case errors.Is(err, service.ErrMFANotEnrolled):
			httpx.WriteError(w, http.StatusBadRequest, "not_enrolled", "Start enrollment first")
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			httpx.WriteError(w, http.StatusConflict, "already_enabled", "TOTP is already enabled")
		default:
			log.Error("failed to activate totp", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to activate TOTP")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable godoc
//
//	@Summary		Disable TOTP
//	@Description	Turn off TOTP after verifying a current code. All refresh tokens are revoked.
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	adminsdk.MFACodeRequest	true	"Code"
//	@Success		204
//	@Failure		401	{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mfa/totp [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.MFACodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Disable(ctx, httpx.AccountIDFromCtx(ctx), req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp_code", "The TOTP code is invalid")
		case errors.Is(err, service.ErrMFANotEnrolled):
			httpx.WriteError(w, http.StatusBadRequest, "not_enrolled", "TOTP is not enabled")
		default:
			log.Error("failed to disable totp", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to disable TOTP")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
