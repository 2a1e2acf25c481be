package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

type MagicLinkHandler struct {
	HandoffService *service.HandoffService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Magic Link
//	@Description	Consumes a single-use magic link and redirects to the application's callback URL with a signed assertion as ?token=.
//	@Description	Unknown, expired and used links all receive the same denial.
//	@Tags			Magic Links
//	@Param			token	query	string	true	"Magic link token"
//	@Success		303
//	@Failure		400	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Router			/magic [get].
func (h *MagicLinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "token is required",
		})
		return
	}

	target, err := h.HandoffService.Redeem(ctx, token, clientInfo(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMagicLinkNotFound),
			errors.Is(err, service.ErrMagicLinkExpired),
			errors.Is(err, service.ErrMagicLinkUsed),
			errors.Is(err, service.ErrInvalidApplication):
			log.Warn("magic link denied", slog.Any("reason", err))
			httpx.WriteJSON(w, http.StatusForbidden, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeAccessDenied,
				ErrorDescription: "Access denied",
			})
		default:
			log.Error("failed to redeem magic link", slog.Any("error", err))
			httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeServerError,
				ErrorDescription: "Failed to redeem magic link",
			})
		}
		return
	}

	httpx.Redirect(w, r, target)
}

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
	}
}
