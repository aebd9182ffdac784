package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/service"
	"github.com/peakform/peakform/internal/admin/storage"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

type CustomersHandler struct {
	CustomerService *service.CustomerService
	ExportService   *service.ExportService
	Avatars         *storage.AvatarStore
}

func canAccessCustomer(r *http.Request, c domain.Customer) bool {
	ctx := r.Context()
	if c.AccountID == httpx.AccountIDFromCtx(ctx) {
		return true
	}
	return domain.Role(httpx.RoleFromCtx(ctx)).HasPermission(domain.PermManageUsers)
}

// HandleList godoc
//
//	@Summary		List customers
//	@Description	List the caller's customers in customer number order.
//	@Tags			Customers
//	@Produce		json
//	@Success		200	{object}	adminsdk.CustomerList
//	@Security		BearerAuth
//	@Router			/v1/customers [get].
func (h *CustomersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	customers, err := h.CustomerService.ListByAccount(ctx, httpx.AccountIDFromCtx(ctx))
	if err != nil {
		log.Error("failed to list customers", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list customers")
		return
	}

	items := make([]adminsdk.Customer, 0, len(customers))
	for _, c := range customers {
		items = append(items, renderCustomer(c))
	}
	httpx.WriteJSON(w, http.StatusOK, adminsdk.CustomerList{Items: items})
}

// HandleGet godoc
//
//	@Summary	Get customer
//	@Tags		Customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"
//	@Success	200	{object}	adminsdk.Customer
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/customers/{id} [get].
func (h *CustomersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customer, err := h.CustomerService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, ctx, err)
		return
	}
	if !canAccessCustomer(r, customer) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

// HandleCreate godoc
//
//	@Summary		Create customer
//	@Description	Create a customer owned by the caller. Customer numbers are assigned sequentially per account (C-00001, C-00002, ...).
//	@Tags			Customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CustomerRequest	true	"Customer"
//	@Success		201		{object}	adminsdk.Customer
//	@Failure		422		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/customers [post].
func (h *CustomersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req adminsdk.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.CustomerService.Create(ctx, httpx.AccountIDFromCtx(ctx), service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Type:  req.Type,
	})
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		log.Error("failed to create customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create customer")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderCustomer(customer))
}

// HandleUpdate godoc
//
//	@Summary	Update customer
//	@Tags		Customers
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Customer ID"
//	@Param		request	body		adminsdk.CustomerRequest	true	"Customer"
//	@Success	200		{object}	adminsdk.Customer
//	@Failure	404		{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/customers/{id} [put].
func (h *CustomersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CustomerService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, ctx, err)
		return
	}
	if !canAccessCustomer(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}

	var req adminsdk.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.CustomerService.Update(ctx, existing.ID, service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Type:  req.Type,
	})
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		log.Error("failed to update customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update customer")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

// HandleDelete godoc
//
//	@Summary	Delete customer
//	@Tags		Customers
//	@Param		id	path	string	true	"Customer ID"
//	@Success	204
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/customers/{id} [delete].
func (h *CustomersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CustomerService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, ctx, err)
		return
	}
	if !canAccessCustomer(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}

	if err := h.CustomerService.Delete(ctx, existing.ID); err != nil {
		log.Error("failed to delete customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete customer")
		return
	}
	if existing.Avatar != nil {
		_ = h.Avatars.Remove(*existing.Avatar)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAvatar godoc
//
//	@Summary		Upload customer avatar
//	@Description	Multipart upload under the "avatar" field. JPEG, PNG, and WebP up to 1 MiB.
//	@Tags			Customers
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Customer ID"
//	@Param			avatar	formData	file	true	"Image file"
//	@Success		200		{object}	adminsdk.Customer
//	@Failure		422		{object}	adminsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/customers/{id}/avatar [post].
func (h *CustomersHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CustomerService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, ctx, err)
		return
	}
	if !canAccessCustomer(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}

	path, ok := saveAvatarUpload(w, r, h.Avatars, "customers", existing.ID)
	if !ok {
		return
	}

	customer, err := h.CustomerService.SetAvatar(ctx, existing.ID, path)
	if err != nil {
		log.Error("failed to set customer avatar", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to save avatar")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

// HandleAvatarDelete godoc
//
//	@Summary	Remove customer avatar
//	@Tags		Customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"
//	@Success	200	{object}	adminsdk.Customer
//	@Failure	404	{object}	adminsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/customers/{id}/avatar [delete].
func (h *CustomersHandler) HandleAvatarDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	existing, err := h.CustomerService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeCustomerError(w, ctx, err)
		return
	}
	if !canAccessCustomer(r, existing) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}

	customer, err := h.CustomerService.ClearAvatar(ctx, existing.ID)
	if err != nil {
		log.Error("failed to clear customer avatar", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to remove avatar")
		return
	}
	if existing.Avatar != nil {
		_ = h.Avatars.Remove(*existing.Avatar)
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

// HandleExport godoc
//
//	@Summary		Export customers as CSV
//	@Description	Stream the caller's customers in customer number order as a CSV download. Requires the export_data permission.
//	@Tags			Customers
//	@Produce		text/csv
//	@Success		200
//	@Security		BearerAuth
//	@Router			/v1/customers/export [get].
func (h *CustomersHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filename := "customers-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.ExportService.ExportCustomers(ctx, w, httpx.AccountIDFromCtx(ctx)); err != nil {
		// Headers are already written; all we can do is log.
		log.Error("failed to export customers", "err", err)
	}
}

func writeCustomerError(w http.ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, service.ErrCustomerNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
		return
	}
	slogx.FromContext(ctx).Error("failed to fetch customer", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch customer")
}
