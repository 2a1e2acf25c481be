package http

import "context"

// RouteKind classifies a registered route. It is fixed at registration and
// used as the metrics label and log attribute instead of the raw path.
type RouteKind int

const (
	RouteUnknown RouteKind = iota
	RouteProviderCallback
	RouteProviderAuthorize
	RouteMagicLink
	RouteAdminLogin
	RouteAdminDashboard
	RouteAdminAction
	RouteAdminLogout
	RouteStatus
	RouteLivez
	RouteReadyz
	RouteMetrics
	RouteDocs
)

var routeKindNames = [...]string{
	RouteUnknown:           "unknown",
	RouteProviderCallback:  "provider_callback",
	RouteProviderAuthorize: "provider_authorize",
	RouteMagicLink:         "magic_link",
	RouteAdminLogin:        "admin_login",
	RouteAdminDashboard:    "admin_dashboard",
	RouteAdminAction:       "admin_action",
	RouteAdminLogout:       "admin_logout",
	RouteStatus:            "status",
	RouteLivez:             "livez",
	RouteReadyz:            "readyz",
	RouteMetrics:           "metrics",
	RouteDocs:              "docs",
}

func (k RouteKind) String() string {
	if k < 0 || int(k) >= len(routeKindNames) {
		return routeKindNames[RouteUnknown]
	}
	return routeKindNames[k]
}

type routeKindKey struct{}

func withRouteKind(ctx context.Context, k RouteKind) context.Context {
	return context.WithValue(ctx, routeKindKey{}, k)
}

// RouteKindFromContext returns the kind of the route serving the request.
func RouteKindFromContext(ctx context.Context) RouteKind {
	k, _ := ctx.Value(routeKindKey{}).(RouteKind)
	return k
}
