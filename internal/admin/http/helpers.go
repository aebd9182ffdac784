package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
)

// decodeJSON parses a request body, writing a 400 on failure. Returns false
// when the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// writeValidationError converts validator errors to a 422 field map. Other
// errors get a generic 500.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Request failed")
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "This field is required"
		case "email":
			fields[name] = "Must be a valid email address"
		case "min":
			fields[name] = "Must be at least " + fe.Param() + " characters"
		case "max":
			fields[name] = "Must be at most " + fe.Param() + " characters"
		case "oneof":
			fields[name] = "Must be one of: " + fe.Param()
		default:
			fields[name] = "Invalid value"
		}
	}
	httpx.WriteFieldErrors(w, fields)
}

// listParamsFromQuery parses search/sort/pagination query parameters.
func listParamsFromQuery(r *http.Request) store.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	return store.ListParams{
		Search:    q.Get("search"),
		Sort:      q.Get("sort"),
		Direction: q.Get("direction"),
		Page:      page,
		PerPage:   perPage,
	}
}

// ============================================================================
// Domain to SDK mapping
// ============================================================================

func renderUser(a domain.Account) adminsdk.User {
	return adminsdk.User{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        string(a.Role),
		TOTPEnabled: a.TOTPEnabled(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func renderInvitation(inv domain.Invitation) adminsdk.Invitation {
	status := adminsdk.InvitationStatusPending
	switch {
	case inv.IsUsed():
		status = adminsdk.InvitationStatusUsed
	case inv.IsExpired():
		status = adminsdk.InvitationStatusExpired
	}

	return adminsdk.Invitation{
		ID:        inv.ID,
		Email:     inv.Email,
		Token:     inv.Token,
		Status:    status,
		ExpiresAt: inv.ExpiresAt,
		UsedAt:    inv.UsedAt,
		UsedBy:    inv.UsedBy,
		CreatedAt: inv.CreatedAt,
	}
}

func renderCoach(c domain.Coach) adminsdk.Coach {
	return adminsdk.Coach{
		ID:          c.ID,
		AccountID:   c.AccountID,
		CoachNumber: c.CoachNumber,
		Name:        c.Name,
		Email:       c.Email,
		Avatar:      c.Avatar,
		Bio:         c.Bio,
		Specialties: c.Specialties,
		Badges:      c.Badges,
		Languages:   c.Languages,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func renderCustomer(c domain.Customer) adminsdk.Customer {
	return adminsdk.Customer{
		ID:             c.ID,
		AccountID:      c.AccountID,
		CustomerNumber: c.CustomerNumber,
		Name:           c.Name,
		Email:          c.Email,
		Avatar:         c.Avatar,
		Type:           string(c.Type),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func formatUptime(start time.Time) string {
	return time.Since(start).Truncate(time.Second).String()
}
