package http

import (
	"net/http"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/pkg/httpx"
)

// RequirePermission gates a handler on the authenticated role holding a
// permission. Unknown roles deny. Must run after AuthnMiddleware.
func RequirePermission(permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := domain.Role(httpx.RoleFromCtx(r.Context()))
			if !role.HasPermission(permission) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden",
					"Your role does not allow this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
