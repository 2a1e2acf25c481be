package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// Dashboard list sizes.
const (
	DashboardMagicLinks = 20
	DashboardAccessLogs = 50
)

var (
	ErrAccessDenied        = errors.New("access denied")
	ErrSelfLockout         = errors.New("administrators cannot remove or deactivate themselves")
	ErrLastAdmin           = errors.New("the last active administrator cannot be removed or deactivated")
	ErrInvalidPrincipal    = errors.New("invalid principal")
	ErrPrincipalExists     = errors.New("principal already exists")
	ErrPrincipalNotFound   = errors.New("principal not found")
	ErrInvalidAppRequest   = errors.New("invalid application")
	ErrApplicationExists   = errors.New("application already exists")
	ErrApplicationNotFound = errors.New("application not found")
)

var appNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Dashboard is the administrator's overview.
type Dashboard struct {
	Principals   []domain.Principal
	Applications []domain.Application
	MagicLinks   []MagicLinkView
	AccessLogs   []domain.AccessLogEntry
}

// AdminService backs the administration surface. Every mutating method
// takes the acting administrator's email.
type AdminService struct {
	Store      store.Store
	Assertions *AssertionService
	Sessions   *SessionService
	MagicLinks *MagicLinkService
	Now        func() time.Time

	// GatewayID names the gateway itself in admin_login access log entries.
	GatewayID string
}

// Login turns an upstream login assertion into an admin session. Any
// failure is reported as ErrAccessDenied.
func (s *AdminService) Login(ctx context.Context, token string, client ClientInfo) (Session, error) {
	log := slogx.FromContext(ctx)

	claim, err := s.Assertions.Verify(ctx, token)
	if err != nil {
		return Session{}, errors.Join(ErrAccessDenied, err)
	}

	admin, err := s.Store.Principals().IsActiveAdmin(ctx, claim.Email)
	if err != nil {
		log.Error("failed to check admin", slog.Any("error", err))
		return Session{}, err
	}
	if !admin {
		log.Warn("login assertion for non-admin", slog.String("email", claim.Email))
		return Session{}, ErrAccessDenied
	}

	if err := recordAccess(ctx, s.Store, claim.Email, s.GatewayID, domain.AccessMethodAdminLogin, client, s.Now); err != nil {
		log.Error("failed to record access", slog.Any("error", err))
	}

	sess, err := s.Sessions.Issue(ctx, claim.Email, claim.Name, claim.Picture)
	if err != nil {
		log.Error("failed to issue session", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("administrator logged in", slog.String("email", claim.Email))
	return sess, nil
}

// Authenticate checks a session token and that its subject is still an
// active administrator.
func (s *AdminService) Authenticate(ctx context.Context, token string) (*jwtx.SessionClaims, error) {
	claims, err := s.Sessions.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	admin, err := s.Store.Principals().IsActiveAdmin(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !admin {
		slogx.FromContext(ctx).Warn("session for revoked administrator", slog.String("email", claims.Subject))
		return nil, ErrAccessDenied
	}
	return claims, nil
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Principals, err = s.Store.Principals().ListPrincipals(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.Applications, err = s.Store.Applications().ListApplications(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.MagicLinks, err = s.MagicLinks.ListRecent(ctx, DashboardMagicLinks); err != nil {
		return Dashboard{}, err
	}
	if d.AccessLogs, err = s.Store.AccessLogs().ListRecentAccessLogs(ctx, DashboardAccessLogs); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *AdminService) AddPrincipal(ctx context.Context, actor, email, name string, isAdmin bool) (domain.Principal, error) {
	log := slogx.FromContext(ctx)

	email = normalize(email)
	if !validEmail(email) {
		return domain.Principal{}, ErrInvalidPrincipal
	}

	now := clock(s.Now)
	p := domain.Principal{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		IsAdmin:   isAdmin,
		Active:    true,
		CreatedAt: now,
	}
	if err := s.Store.Principals().CreatePrincipal(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Principal{}, ErrPrincipalExists
		}
		log.Error("failed to create principal", slog.Any("error", err))
		return domain.Principal{}, err
	}

	log.Info("principal added",
		slog.String("principal_id", p.ID),
		slog.Bool("is_admin", p.IsAdmin),
		slog.String("by", normalize(actor)),
	)
	return p, nil
}

// TogglePrincipal flips a principal's active flag. Administrators cannot
// deactivate themselves, and the last active administrator stays active.
func (s *AdminService) TogglePrincipal(ctx context.Context, actor, id string) error {
	actor = normalize(actor)

	var p domain.Principal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if p, err = principalIn(ctx, tx, id); err != nil {
			return err
		}
		if p.Email == actor {
			return ErrSelfLockout
		}
		if err := guardLastAdmin(ctx, tx, p); err != nil {
			return err
		}
		return mapMissing(tx.Principals().TogglePrincipal(ctx, p.ID), ErrPrincipalNotFound)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("principal toggled",
		slog.String("principal_id", p.ID),
		slog.Bool("active", !p.Active),
		slog.String("by", actor),
	)
	return nil
}

// DeletePrincipal removes a principal. The delete itself is guarded on the
// actor's email as well.
func (s *AdminService) DeletePrincipal(ctx context.Context, actor, id string) error {
	actor = normalize(actor)

	var p domain.Principal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if p, err = principalIn(ctx, tx, id); err != nil {
			return err
		}
		if p.Email == actor {
			return ErrSelfLockout
		}
		if err := guardLastAdmin(ctx, tx, p); err != nil {
			return err
		}
		return mapMissing(tx.Principals().DeletePrincipal(ctx, p.ID, actor), ErrPrincipalNotFound)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("principal deleted",
		slog.String("principal_id", p.ID),
		slog.String("by", actor),
	)
	return nil
}

// guardLastAdmin refuses to remove or deactivate the only active
// administrator.
func guardLastAdmin(ctx context.Context, st store.Store, p domain.Principal) error {
	if !p.IsAdmin || !p.Active {
		return nil
	}
	n, err := st.Principals().CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		slogx.FromContext(ctx).Warn("refused to remove the last active administrator", slog.String("principal_id", p.ID))
		return ErrLastAdmin
	}
	return nil
}

func (s *AdminService) AddApplication(ctx context.Context, actor, name, callbackURL string) (domain.Application, error) {
	log := slogx.FromContext(ctx)

	name = normalize(name)
	callbackURL = strings.TrimSpace(callbackURL)
	if !appNamePattern.MatchString(name) || !validCallbackURL(callbackURL) {
		return domain.Application{}, ErrInvalidAppRequest
	}

	now := clock(s.Now)
	app := domain.Application{
		ID:          idx.NewAt(now).String(),
		Name:        name,
		CallbackURL: callbackURL,
		Active:      true,
		CreatedAt:   now,
	}
	if err := s.Store.Applications().CreateApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Application{}, ErrApplicationExists
		}
		log.Error("failed to create application", slog.Any("error", err))
		return domain.Application{}, err
	}

	log.Info("application added",
		slog.String("app", app.Name),
		slog.String("by", normalize(actor)),
	)
	return app, nil
}

func (s *AdminService) ToggleApplication(ctx context.Context, actor, id string) error {
	app, err := s.Store.Applications().GetApplicationByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return mapMissing(err, ErrApplicationNotFound)
	}
	if err := s.Store.Applications().ToggleApplication(ctx, app.ID); err != nil {
		return mapMissing(err, ErrApplicationNotFound)
	}
	slogx.FromContext(ctx).Info("application toggled",
		slog.String("application_id", app.ID),
		slog.String("app", app.Name),
		slog.Bool("active", !app.Active),
		slog.String("by", normalize(actor)),
	)
	return nil
}

// CreateMagicLink issues a link on behalf of actor and returns its URL.
func (s *AdminService) CreateMagicLink(ctx context.Context, actor, email, appName string, hours int) (string, error) {
	token, err := s.MagicLinks.Issue(ctx, email, appName, hours, actor)
	if err != nil {
		return "", err
	}
	return s.MagicLinks.URL(token), nil
}

func principalIn(ctx context.Context, st store.Store, id string) (domain.Principal, error) {
	p, err := st.Principals().GetPrincipalByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Principal{}, mapMissing(err, ErrPrincipalNotFound)
	}
	return p, nil
}

func mapMissing(err, target error) error {
	if errors.Is(err, store.ErrNotFound) {
		return target
	}
	return err
}

func validCallbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "https" || u.Scheme == "http"
}
