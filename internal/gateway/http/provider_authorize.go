package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// AuthURLBuilder builds a provider consent URL.
type AuthURLBuilder interface {
	AuthCodeURL(providerName, state string) (string, error)
}

type ProviderAuthorizeHandler struct {
	Provider  string
	Exchanger AuthURLBuilder
}

// ServeHTTP godoc
//
//	@Summary		Start Provider Consent
//	@Description	Redirects to the provider's consent page. The app parameter comes back as state on the callback.
//	@Tags			Providers
//	@Param			provider	path	string	true	"Provider name, e.g. microsoft"
//	@Param			app			query	string	false	"Application to relay the tokens to"
//	@Success		303
//	@Failure		500	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Router			/{provider}/authorize [get].
func (h *ProviderAuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("app")))

	target, err := h.Exchanger.AuthCodeURL(h.Provider, app)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeServerError,
				ErrorDescription: "Provider credentials are not configured",
			})
			return
		}
		slogx.FromContext(r.Context()).Error("failed to build consent url", slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeServerError,
			ErrorDescription: "Failed to start provider consent",
		})
		return
	}

	httpx.Redirect(w, r, target)
}
