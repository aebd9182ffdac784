package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/internal/admin/storage"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type CoachesHandler struct {
	CoachService *service.CoachService
	Avatars      *storage.AvatarStore
}

// canAccess reports whether the caller owns the record or carries the
// manage_coaches permission.
func canAccessCoach(r *http.Request, c domain.Coach) bool {
	ctx := r.Context()
	if c.AccountID == httpx.AccountIDFromCtx(ctx) {
		return true
	}
	return domain.Role(httpx.RoleFromCtx(ctx)).HasPermission(domain.PermManageCoaches)
}

// HandleList godoc
//
//	@Summary		List coaches
//	@Description	List the caller's coach profiles in coach number order.
//	@Tags			Coaches
//	@Produce		json
//	@Success		200	{object}	adminsdk.CoachList
//	@Security		BearerAuth
//	@Router			/v1/coaches [get].
func (h *CoachesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	coaches, err := h.CoachService.ListByAccount(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		log.Error("failed to list coaches", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list coaches")
		return
	}

	items := make([]adminsdk.Coach, 0, len(coaches))
	for _, c := range coaches {
		items = append(items, renderCoach(c))
	}
	httpx.WriteJSON(w, http.StatusOK, adminsdk.CoachList{Items: items})
}

// HandleGet godoc
//
//	@Summary	Get coach
//	@Tags		Coaches
//	@Produce	json
//	@Param		id	path		string	true	"Coach ID"
//	@Success	200	{object}	adminsdk.Coach
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/coaches/{id} [get].
func (h *CoachesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coach, err := h.CoachService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCoachError(w, ctx, err)
		return
	}
	if !canAccessCoach(r, coach) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCoach(coach))
}

// HandleCreate godoc
//
//	@Summary		Create coach
//	@Description	Create a coach profile owned by the caller. Coach numbers are assigned sequentially per account (CH-00001, CH-00002, ...).
//	@Tags			Coaches
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CoachRequest	true	"Coach"
//	@Success		201		{object}	adminsdk.Coach
//	@Failure		422		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/coaches [post].
func (h *CoachesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.CoachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coach, err := h.CoachService.Create(ctx, httpx.AccountIDFromCtx(ctx), service.CoachInput{
		Name:        req.Name,
		Email:       req.Email,
		Bio:         req.Bio,
		Specialties: req.Specialties,
		Badges:      req.Badges,
		Languages:   req.Languages,
	})
	if err != nil {
		switch {
		case isValidationError(err):
			writeValidationError(w, err)
		case errors.Is(err, service.ErrNotACoachAccount):
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "Only coach accounts can own coach profiles")
		default:
			log.Error("failed to create coach", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create coach")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderCoach(coach))
}

// HandleUpdate godoc
//
//	@Summary	Update coach
//	@Tags		Coaches
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Coach ID"
//	@Param		request	body		adminsdk.CoachRequest	true	"Coach"
//	@Success	200		{object}	adminsdk.Coach
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/coaches/{id} [put].
func (h *CoachesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CoachService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCoachError(w, ctx, err)
		return
	}
	if !canAccessCoach(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}

	var req adminsdk.CoachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coach, err := h.CoachService.Update(ctx, existing.ID, service.CoachInput{
		Name:        req.Name,
		Email:       req.Email,
		Bio:         req.Bio,
		Specialties: req.Specialties,
		Badges:      req.Badges,
		Languages:   req.Languages,
	})
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		log.Error("failed to update coach", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update coach")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCoach(coach))
}

// HandleDelete godoc
//
//	@Summary	Delete coach
//	@Tags		Coaches
//	@Param		id	path	string	true	"Coach ID"
//	@Success	204
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/coaches/{id} [delete].
func (h *CoachesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CoachService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCoachError(w, ctx, err)
		return
	}
	if !canAccessCoach(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}

	if err := h.CoachService.Delete(ctx, existing.ID); err != nil {
		log.Error("failed to delete coach", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete coach")
		return
	}
	if existing.Avatar != nil {
		_ = h.Avatars.Remove(*existing.Avatar)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAvatar godoc
//
//	@Summary		Upload coach avatar
//	@Description	Multipart upload under the "avatar" field. JPEG, PNG, and WebP up to 1 MiB.
//	@Tags			Coaches
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Coach ID"
//	@Param			avatar	formData	file	true	"Image file"
//	@Success		200		{object}	adminsdk.Coach
//	@Failure		422		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/coaches/{id}/avatar [post].
func (h *CoachesHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CoachService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCoachError(w, ctx, err)
		return
	}
	if !canAccessCoach(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}

	path, ok := saveAvatarUpload(w, r, h.Avatars, "coaches", existing.ID)
	if !ok {
		return
	}

	coach, err := h.CoachService.SetAvatar(ctx, existing.ID, path)
	if err != nil {
		log.Error("failed to set coach avatar", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to save avatar")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCoach(coach))
}

// HandleAvatarDelete godoc
//
//	@Summary	Remove coach avatar
//	@Tags		Coaches
//	@Produce	json
//	@Param		id	path		string	true	"Coach ID"
//	@Success	200	{object}	adminsdk.Coach
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/coaches/{id}/avatar [delete].
func (h *CoachesHandler) HandleAvatarDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CoachService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCoachError(w, ctx, err)
		return
	}
	if !canAccessCoach(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}

	coach, err := h.CoachService.ClearAvatar(ctx, existing.ID)
	if err != nil {
		log.Error("failed to clear coach avatar", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to remove avatar")
		return
	}
	if existing.Avatar != nil {
		_ = h.Avatars.Remove(*existing.Avatar)
	}

	httpx.WriteJSON(w, http.StatusOK, renderCoach(coach))
}

func writeCoachError(w http.ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, service.ErrCoachNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Coach not found")
		return
	}
	slogx.FromContext(ctx).Error("failed to fetch coach", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch coach")
}
