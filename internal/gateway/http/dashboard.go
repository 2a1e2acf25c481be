package http

import (
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

func dashboardResponse(admin string, d service.Dashboard) relaysdk.AdminDashboard {
	out := relaysdk.AdminDashboard{
		Admin:        admin,
		Principals:   make([]relaysdk.AdminPrincipal, 0, len(d.Principals)),
		Applications: make([]relaysdk.AdminApplication, 0, len(d.Applications)),
		MagicLinks:   make([]relaysdk.AdminMagicLink, 0, len(d.MagicLinks)),
		AccessLogs:   make([]relaysdk.AdminAccessLog, 0, len(d.AccessLogs)),
	}

	for _, p := range d.Principals {
		out.Principals = append(out.Principals, relaysdk.AdminPrincipal{
			ID:        p.ID,
			Email:     p.Email,
			Name:      p.Name,
			IsAdmin:   p.IsAdmin,
			Active:    p.Active,
			CreatedAt: stamp(p.CreatedAt),
		})
	}
	for _, a := range d.Applications {
		out.Applications = append(out.Applications, relaysdk.AdminApplication{
			ID:          a.ID,
			Name:        a.Name,
			CallbackURL: a.CallbackURL,
			Active:      a.Active,
			CreatedAt:   stamp(a.CreatedAt),
		})
	}
	for _, l := range d.MagicLinks {
		ml := relaysdk.AdminMagicLink{
			ID:        l.ID,
			Email:     l.Email,
			App:       l.AppName,
			Status:    string(l.Status),
			ExpiresAt: stamp(l.ExpiresAt),
			CreatedBy: l.CreatedBy,
			CreatedAt: stamp(l.CreatedAt),
		}
		if l.UsedAt != nil {
			ml.UsedAt = stamp(*l.UsedAt)
		}
		out.MagicLinks = append(out.MagicLinks, ml)
	}
	for _, e := range d.AccessLogs {
		out.AccessLogs = append(out.AccessLogs, relaysdk.AdminAccessLog{
			Email:     e.Email,
			App:       e.AppName,
			Method:    e.Method,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			CreatedAt: stamp(e.CreatedAt),
		})
	}
	return out
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
