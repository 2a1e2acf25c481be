package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

// StatusHandler godoc
//
//	@Summary		Provider Status
//	@Description	Reports which providers are configured and whether a fallback refresh token is stored. Only booleans are exposed.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	relaysdk.StatusResponse
//	@Router			/status [get].
func StatusHandler(serviceName string, registry *provider.Registry, src secrets.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := make(map[string]relaysdk.ProviderStatus)
		for _, def := range registry.All() {
			st := def.Status(src)
			providers[def.Name] = relaysdk.ProviderStatus{
				Configured:      st.Configured,
				HasRefreshToken: st.HasRefreshToken,
			}
		}

		httpx.WriteJSON(w, http.StatusOK, relaysdk.StatusResponse{
			Service:   serviceName,
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Providers: providers,
		})
	}
}
