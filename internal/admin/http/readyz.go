package http

import (
	"net/http"
	"time"

	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
	"github.com/peakform/peakform/pkg/slogx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Reports whether the service can take traffic. Fails when the database is unreachable.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	adminsdk.HealthResponse
//	@Failure		503	{object}	adminsdk.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Error("readiness check failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, adminsdk.HealthResponse{
				Status:  "unavailable",
				Version: version,
				Uptime:  formatUptime(startTime),
			})
			return
		}

		httpx.WriteJSON(w, http.StatusOK, adminsdk.HealthResponse{
			Status:  "ok",
			Version: version,
			Uptime:  formatUptime(startTime),
		})
	})
}
