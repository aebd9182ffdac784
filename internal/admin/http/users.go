package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type UsersHandler struct {
	UserService   *service.UserService
	ExportService *service.ExportService
}

// HandleList godoc
//
//	@Summary		List users
//	@Description	Paginated user listing with search over name and email and whitelisted sort columns.
//	@Tags			Users
//	@Produce		json
//	@Param			search		query		string	false	"Substring match on name or email"
//	@Param			sort		query		string	false	"Sort column: id, name, email, role, created_at, updated_at"
//	@Param			direction	query		string	false	"asc or desc"
//	@Param			page		query		int		false	"Page number (1-based)"
//	@Param			per_page	query		int		false	"Rows per page"
//	@Success		200			{object}	adminsdk.UserPage
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	page, err := h.UserService.List(ctx, listParamsFromQuery(r))
	if err != nil {
		log.Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list users")
		return
	}

	items := make([]adminsdk.User, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, renderUser(a))
	}
	httpx.WriteJSON(w, http.StatusOK, adminsdk.UserPage{
		Items:    items,
		Total:    page.Total,
		Page:     page.PageNumber,
		PerPage:  page.PerPage,
		LastPage: page.LastPage,
	})
}

// HandleGet godoc
//
//	@Summary	Get user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	adminsdk.User
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := h.UserService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to fetch user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderUser(account))
}

// HandleCreate godoc
//
//	@Summary		Create user
//	@Description	Create an account directly with a chosen role. No invitation is involved.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.UserCreateRequest	true	"User"
//	@Success		201		{object}	adminsdk.User
//	@Failure		422		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.UserCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.UserService.Create(ctx, service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteFieldErrors(w, map[string]string{"role": "Unknown role"})
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteFieldErrors(w, map[string]string{"email": "An account with this email already exists"})
		case isValidationError(err):
			writeValidationError(w, err)
		default:
			log.Error("failed to create user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderUser(account))
}

// HandleUpdate godoc
//
//	@Summary	Update user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Account ID"
//	@Param		request	body		adminsdk.UserUpdateRequest	true	"User"
//	@Success	200		{object}	adminsdk.User
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.UserUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.UserService.Update(ctx, r.PathValue("id"), service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteFieldErrors(w, map[string]string{"role": "Unknown role"})
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteFieldErrors(w, map[string]string{"email": "An account with this email already exists"})
		case isValidationError(err):
			writeValidationError(w, err)
		default:
			log.Error("failed to update user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderUser(account))
}

// HandleDelete godoc
//
//	@Summary	Delete user
//	@Tags		Users
//	@Param		id	path	string	true	"Account ID"
//	@Success	204
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.UserService.Delete(ctx, r.PathValue("id"), httpx.AccountIDFromCtx(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
		case errors.Is(err, service.ErrCannotDeleteSelf):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
				"You cannot delete your own account")
		default:
			log.Error("failed to delete user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete user")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBulkDelete godoc
//
//	@Summary		Bulk delete users
//	@Description	Delete a set of accounts by ID. The caller's own ID and unknown IDs are skipped.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.BulkDeleteRequest	true	"Account IDs"
//	@Success		200		{object}	adminsdk.BulkDeleteResponse
//	@Security		BearerAuth
//	@Router			/v1/users/bulk-delete [post].
func (h *UsersHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "ids is required")
		return
	}

	deleted, err := h.UserService.BulkDelete(ctx, req.IDs, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		log.Error("failed to bulk delete users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete users")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, adminsdk.BulkDeleteResponse{Deleted: deleted})
}

// HandleExport godoc
//
//	@Summary		Export users as CSV
//	@Description	Stream every account matching the current search and sort as a CSV download. Requires the export_data permission.
//	@Tags			Users
//	@Produce		text/csv
//	@Param			search		query	string	false	"Substring match on name or email"
//	@Param			sort		query	string	false	"Sort column"
//	@Param			direction	query	string	false	"asc or desc"
//	@Success		200
//	@Security		BearerAuth
//	@Router			/v1/users/export [get].
func (h *UsersHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filename := "users-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.ExportService.ExportUsers(ctx, w, listParamsFromQuery(r)); err != nil {
		// Headers are already written; all we can do is log.
		log.Error("failed to export users", "err", err)
	}
}
