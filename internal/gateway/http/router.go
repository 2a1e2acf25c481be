package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/authgate/api/gateway" // Swagger docs
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/httpx"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// SecretSource is the secret file as seen by the status and health
// handlers. Check reports whether the file can be read.
type SecretSource interface {
	secrets.Source
	Check() error
}

// Options are the settings handlers need beyond their services.
type Options struct {
	ServiceName   string
	BuildVersion  string
	AdminLoginURL string
	SecureCookies bool

	// TrustProxyHeaders resolves client addresses from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts      Options
	startTime time.Time
	logger    *slog.Logger

	store    store.Store
	secrets  SecretSource
	registry *provider.Registry
	metrics  *metrics.Metrics

	CallbackService *service.CallbackService
	Exchanger       AuthURLBuilder
	HandoffService  *service.HandoffService
	AdminService    *service.AdminService
}

func NewRouter(
	opts Options,
	st store.Store,
	src SecretSource,
	registry *provider.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		startTime: time.Now(),
		logger:    logger,
		store:     st,
		secrets:   src,
		registry:  registry,
		metrics:   m,
	}

	r.middlewares = []httpx.Middleware{
		httpx.RealIP(opts.TrustProxyHeaders),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerProviders()
	r.registerMagicLinks()
	r.registerAdmin()
	r.registerSystem()

	r.handle(RouteDocs, "/swagger/", httpSwagger.Handler())
	r.Mux.Handle("/", http.HandlerFunc(notFound))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			authgate API
//	@version		0.1.0
//	@description	Personal multi-tenant authentication gateway: provider token exchange and relay, magic links and an administration surface.
//	@description
//	@description	Relays are signed with HMAC-SHA256 over the body using the shared webhook secret (X-Auth-Signature).
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/authgate
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// route wraps h with its kind and metrics, then the given middlewares.
func (r *Router) route(kind RouteKind, h http.Handler, mws ...httpx.Middleware) http.Handler {
	inner := httpx.Chain(h, mws...)
	tagged := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := withRouteKind(req.Context(), kind)
		ctx = slogx.With(ctx, "route", kind.String())
		inner.ServeHTTP(w, req.WithContext(ctx))
	})
	return r.metrics.Instrument(kind.String(), tagged)
}

func (r *Router) handle(kind RouteKind, pattern string, h http.Handler, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.route(kind, h, mws...))
}

func (r *Router) registerProviders() {
	for _, def := range r.registry.Exchangeable() {
		callback := &ProviderCallbackHandler{Provider: def.Name, CallbackService: r.CallbackService}
		authorize := &ProviderAuthorizeHandler{Provider: def.Name, Exchanger: r.Exchanger}

		// Provider redirects land here; moderate limit per IP.
		r.handle(RouteProviderCallback, "GET "+def.CallbackPath(), callback,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
		r.handle(RouteProviderAuthorize, "GET "+def.AuthorizePath(), authorize,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}
}

func (r *Router) registerMagicLinks() {
	// GET /magic - strict limit, tokens are guessable only by brute force
	r.handle(RouteMagicLink, "GET /magic", &MagicLinkHandler{HandoffService: r.HandoffService},
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		AdminService:  r.AdminService,
		LoginURL:      r.opts.AdminLoginURL,
		SecureCookies: r.opts.SecureCookies,
	}

	login := r.route(RouteAdminLogin, http.HandlerFunc(h.HandleLogin),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	dashboard := r.route(RouteAdminDashboard, http.HandlerFunc(h.HandleDashboard),
		h.Session(false),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	// GET /admin?token= is the login hand-off, plain GET /admin the dashboard.
	r.Mux.Handle("GET /admin", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Has("token") {
			login.ServeHTTP(w, req)
			return
		}
		dashboard.ServeHTTP(w, req)
	}))

	r.handle(RouteAdminAction, "POST /admin", http.HandlerFunc(h.HandleAction),
		h.Session(true),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
		httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "action"),
	)
	r.handle(RouteAdminLogout, "GET /admin/logout", http.HandlerFunc(h.HandleLogout),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
}

func (r *Router) registerSystem() {
	r.handle(RouteStatus, "GET /status", StatusHandler(r.opts.ServiceName, r.registry, r.secrets),
		httpx.RateLimitByIP(httpx.PublicLimit),
	)

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.handle(RouteLivez, "GET /livez", LivezHandler(r.startTime, r.opts.BuildVersion),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.handle(RouteReadyz, "GET /readyz", ReadyzHandler(r.startTime, r.opts.BuildVersion, r.store, r.secrets),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	if r.metrics != nil {
		r.handle(RouteMetrics, "GET /metrics", r.metrics.Handler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, relaysdk.ErrorResponse{
		Error:            relaysdk.ErrorCodeNotFound,
		ErrorDescription: "Not found",
	})
}
