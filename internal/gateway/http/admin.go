package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// SessionCookie holds the admin session token.
const SessionCookie = "authgate_session"

type sessionKey struct{}

// SessionFromContext returns the claims of the signed-in administrator.
func SessionFromContext(ctx context.Context) (*jwtx.SessionClaims, bool) {
	c, ok := ctx.Value(sessionKey{}).(*jwtx.SessionClaims)
	return c, ok && c != nil
}

type AdminHandler struct {
	AdminService  *service.AdminService
	LoginURL      string
	SecureCookies bool
}

// Session validates the session cookie and stores its claims in the
// context. With required set, anonymous requests are refused with 403.
func (h *AdminHandler) Session(required bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				claims, err := h.AdminService.Authenticate(ctx, c.Value)
				if err == nil {
					ctx = context.WithValue(ctx, sessionKey{}, claims)
					ctx = httpx.WithSubject(ctx, claims.Subject)
					ctx = slogx.With(ctx, "admin", claims.Subject)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				slogx.FromContext(ctx).Warn("admin session rejected", slog.Any("error", err))
				h.clearCookie(w)
			}

			if required {
				httpx.WriteJSON(w, http.StatusForbidden, relaysdk.ErrorResponse{
					Error:            relaysdk.ErrorCodeAccessDenied,
					ErrorDescription: "Access denied",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HandleLogin godoc
//
//	@Summary		Administrator Login
//	@Description	Verifies a signed login assertion for an active administrator, sets the session cookie and redirects to /admin.
//	@Tags			Admin
//	@Param			token	query	string	true	"Signed login assertion"
//	@Success		303
//	@Failure		403	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Router			/admin [get].
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.AdminService.Login(ctx, r.URL.Query().Get("token"), clientInfo(r))
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			httpx.WriteJSON(w, http.StatusForbidden, relaysdk.ErrorResponse{
				Error:            relaysdk.ErrorCodeAccessDenied,
				ErrorDescription: "Access denied",
			})
			return
		}
		slogx.FromContext(ctx).Error("admin login failed", slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeServerError,
			ErrorDescription: "Failed to sign in",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/admin",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.Redirect(w, r, "/admin")
}

// HandleDashboard godoc
//
//	@Summary		Administrator Dashboard
//	@Description	Lists principals, applications, the 20 newest magic links and the 50 newest access log entries.
//	@Description	Without a session the browser is sent to the configured login URL.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	relaysdk.AdminDashboard
//	@Failure		401	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Router			/admin [get].
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := SessionFromContext(ctx)
	if !ok {
		if h.LoginURL != "" {
			httpx.Redirect(w, r, h.LoginURL)
			return
		}
		httpx.WriteJSON(w, http.StatusUnauthorized, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeAccessDenied,
			ErrorDescription: "Sign in required",
		})
		return
	}

	d, err := h.AdminService.Dashboard(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load dashboard", slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeServerError,
			ErrorDescription: "Failed to load dashboard",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dashboardResponse(claims.Subject, d))
}

// HandleAction godoc
//
//	@Summary		Administrator Action
//	@Description	Form post performing one of add_email, toggle_email, delete_email, add_app, toggle_app or create_magic_link.
//	@Tags			Admin
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			action		formData	string	true	"Action name"
//	@Param			id			formData	string	false	"Principal or application id"
//	@Param			email		formData	string	false	"Principal email"
//	@Param			name		formData	string	false	"Principal display name or application name"
//	@Param			is_admin	formData	string	false	"Grant admin when present"
//	@Param			callback_url	formData	string	false	"Application callback URL"
//	@Param			app			formData	string	false	"Application for a magic link"
//	@Param			hours		formData	int		false	"Magic link validity in hours"
//	@Success		200	{object}	relaysdk.AdminActionResponse
//	@Failure		400	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Failure		409	{object}	relaysdk.ErrorResponse	"error, error_description"
//	@Router			/admin [post].
func (h *AdminHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := SessionFromContext(ctx)
	actor := claims.Subject

	if err := r.ParseForm(); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "Invalid form body",
		})
		return
	}

	action := httpx.FormString(r, "action")
	resp := relaysdk.AdminActionResponse{Action: action}
	var err error

	switch action {
	case "add_email":
		_, isAdmin := r.PostForm["is_admin"]
		p, e := h.AdminService.AddPrincipal(ctx, actor, httpx.FormString(r, "email"), httpx.FormString(r, "name"), isAdmin)
		resp.ID, resp.Message, err = p.ID, "Email added", e
	case "toggle_email":
		err = h.AdminService.TogglePrincipal(ctx, actor, httpx.FormString(r, "id"))
		resp.Message = "Email status toggled"
	case "delete_email":
		err = h.AdminService.DeletePrincipal(ctx, actor, httpx.FormString(r, "id"))
		resp.Message = "Email deleted"
	case "add_app":
		a, e := h.AdminService.AddApplication(ctx, actor, httpx.FormString(r, "name"), httpx.FormString(r, "callback_url"))
		resp.ID, resp.Message, err = a.ID, "App added", e
	case "toggle_app":
		err = h.AdminService.ToggleApplication(ctx, actor, httpx.FormString(r, "id"))
		resp.Message = "App status toggled"
	case "create_magic_link":
		hours, convErr := strconv.Atoi(httpx.FormString(r, "hours"))
		if convErr != nil {
			err = service.ErrInvalidMagicLinkRequest
			break
		}
		resp.MagicLink, err = h.AdminService.CreateMagicLink(ctx, actor, httpx.FormString(r, "email"), httpx.FormString(r, "app"), hours)
		resp.Message = "Magic link created"
	default:
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "Unknown action",
		})
		return
	}

	if err != nil {
		writeAdminError(ctx, w, action, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout godoc
//
//	@Summary		Administrator Logout
//	@Description	Clears the session cookie.
//	@Tags			Admin
//	@Success		303
//	@Router			/admin/logout [get].
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	httpx.Redirect(w, r, "/admin")
}

func (h *AdminHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func writeAdminError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, service.ErrSelfLockout):
		httpx.WriteJSON(w, http.StatusForbidden, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeAccessDenied,
			ErrorDescription: "You cannot remove or deactivate yourself",
		})
	case errors.Is(err, service.ErrLastAdmin):
		httpx.WriteJSON(w, http.StatusConflict, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeConflict,
			ErrorDescription: "At least one active administrator is required",
		})
	case errors.Is(err, service.ErrPrincipalExists), errors.Is(err, service.ErrApplicationExists):
		httpx.WriteJSON(w, http.StatusConflict, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeConflict,
			ErrorDescription: "Already exists",
		})
	case errors.Is(err, service.ErrPrincipalNotFound), errors.Is(err, service.ErrApplicationNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeNotFound,
			ErrorDescription: "Not found",
		})
	case errors.Is(err, service.ErrInvalidPrincipal):
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "A valid email is required",
		})
	case errors.Is(err, service.ErrInvalidAppRequest):
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "A lowercase name and an http(s) callback URL are required",
		})
	case errors.Is(err, service.ErrInvalidMagicLinkRequest):
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "A valid email and a validity within the allowed hours are required",
		})
	case errors.Is(err, service.ErrInvalidApplication):
		httpx.WriteJSON(w, http.StatusBadRequest, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeInvalidRequest,
			ErrorDescription: "Application not found or inactive",
		})
	default:
		slogx.FromContext(ctx).Error("admin action failed", slog.String("action", action), slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, relaysdk.ErrorResponse{
			Error:            relaysdk.ErrorCodeServerError,
			ErrorDescription: "Action failed",
		})
	}
}
