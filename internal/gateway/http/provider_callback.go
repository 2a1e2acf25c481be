package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

type ProviderCallbackHandler struct {
	Provider        string
	CallbackService *service.CallbackService
}

// ServeHTTP godoc
//
//	@Summary		Provider OAuth Callback
//	@Description	Exchanges the authorization code for a token set and relays it to the application named in state.
//	@Description	When the relay does not land the refresh token is saved to the secret file and a warning is returned.
//	@Tags			Providers
//	@Produce		json
//	@Param			provider	path		string						true	"Provider name, e.g. microsoft"
//	@Param			code		query		string						true	"Authorization code"
//	@Param			state		query		string						false	"Application name"
//	@Success		200			{object}	relaysdk.CallbackResponse	"delivery outcome"
//	@Failure		400			{object}	relaysdk.ErrorResponse		"error, error_description"
//	@Failure		500			{object}	relaysdk.ErrorResponse		"error, error_description, upstream diagnostics"
//	@Router			/{provider}/callback [get].
func (h *ProviderCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	// The provider reports a refused consent on the redirect itself.
	if e := q.Get("error"); e != "" {
		log.Warn("provider returned an error", slog.String("provider", h.Provider), slog.String("error", e))
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "Provider returned " + e + ": " + q.Get("error_description"),
		})
		return
	}

	code := q.Get("code")
	if code == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "code is required",
		})
		return
	}

	res, err := h.CallbackService.Complete(ctx, h.Provider, code, q.Get("state"))
	if err != nil {
		var exErr *provider.TokenExchangeError
		switch {
		case errors.As(err, &exErr):
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeUpstream,
				ErrorDescription: "Token exchange failed: " + exErr.Error(),
				UpstreamStatus:   exErr.Status,
				UpstreamBody:     exErr.Body,
			})
		case errors.Is(err, provider.ErrMissingRefreshToken):
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeUpstream,
				ErrorDescription: "Provider did not return a refresh token; check the offline access grant",
			})
		case errors.Is(err, provider.ErrNotConfigured):
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeServerError,
				ErrorDescription: "Provider credentials are not configured",
			})
		case errors.Is(err, provider.ErrMissingCode):
			httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeInvalidRequest,
				ErrorDescription: "code is required",
			})
		default:
			log.Error("provider callback failed", slog.Any("error", err))
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeServerError,
				ErrorDescription: "Failed to complete provider callback",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, relaysdk.CallbackResponse{
		Success:    true,
		Provider:   res.Provider,
		App:        res.App,
		Delivery:   string(res.Delivery.Outcome),
		StatusCode: res.Delivery.StatusCode,
		Persisted:  res.Persisted,
		Warning:    res.Warning,
	})
}
