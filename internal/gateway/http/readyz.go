package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check verifying the database and that the secret file is readable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	relaysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	relaysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, src SecretSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &relaysdk.HealthChecks{
			Database: "ok",
			Secrets:  "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Secret file contents are never reported, only readability.
		if err := src.Check(); err != nil {
			checks.Secrets = "error: unreadable"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, relaysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
