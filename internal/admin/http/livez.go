package http

import (
	"net/http"
	"time"

	"github.com/peakform/peakform/pkg/adminsdk"
	"github.com/peakform/peakform/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Reports that the process is up. Does not touch the database.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	adminsdk.HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, adminsdk.HealthResponse{
			Status:  "ok",
			Version: version,
			Uptime:  formatUptime(startTime),
		})
	})
}
