package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/cryptox"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// DefaultMaxMagicLinkHours is the longest validity an administrator may
// pick when no limit is configured.
const DefaultMaxMagicLinkHours = 720

var (
	ErrInvalidMagicLinkRequest = errors.New("invalid magic link request")
	ErrInvalidApplication      = errors.New("application not found or inactive")
	ErrMagicLinkNotFound       = errors.New("magic link not found")
	ErrMagicLinkExpired        = errors.New("magic link expired")
	ErrMagicLinkUsed           = errors.New("magic link already used")
)

type MagicLinkService struct {
	Store     store.Store
	PublicURL string
	MaxHours  int
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// MagicLinkView is a stored link together with its status at read time.
type MagicLinkView struct {
	domain.MagicLink
	Status domain.MagicLinkStatus
}

// Issue creates a single-use link for email to enter appName. Only the
// fingerprint is stored; the raw token is returned once.
func (s *MagicLinkService) Issue(ctx context.Context, email, appName string, validityHours int, issuer string) (string, error) {
	log := slogx.FromContext(ctx)

	email = normalize(email)
	appName = normalize(appName)

	maxHours := s.MaxHours
	if maxHours <= 0 {
		maxHours = DefaultMaxMagicLinkHours
	}
	if !validEmail(email) || appName == "" || validityHours <= 0 || validityHours > maxHours {
		log.Warn("rejected magic link request",
			slog.String("app", appName),
			slog.Int("hours", validityHours),
		)
		return "", ErrInvalidMagicLinkRequest
	}

	app, err := s.Store.Applications().GetApplicationByName(ctx, appName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("magic link requested for unknown application", slog.String("app", appName))
			return "", ErrInvalidApplication
		}
		log.Error("failed to fetch application", slog.Any("error", err))
		return "", err
	}
	if !app.Active {
		log.Warn("magic link requested for inactive application", slog.String("app", appName))
		return "", ErrInvalidApplication
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate magic link token", slog.Any("error", err))
		return "", err
	}

	now := clock(s.Now)
	link := domain.MagicLink{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		Email:     email,
		AppName:   app.Name,
		ExpiresAt: now.Add(time.Duration(validityHours) * time.Hour),
		CreatedBy: normalize(issuer),
		CreatedAt: now,
	}
	if err := s.Store.MagicLinks().CreateMagicLink(ctx, link); err != nil {
		log.Error("failed to store magic link", slog.Any("error", err))
		return "", err
	}

	s.Metrics.MagicLinkIssued()
	log.Info("magic link issued",
		slog.String("magic_link_id", link.ID),
		slog.String("app", link.AppName),
		slog.String("created_by", link.CreatedBy),
		slog.Time("expires_at", link.ExpiresAt),
	)
	return token, nil
}

// Redeem consumes token. The conditional update decides the race; the
// record is only read afterwards to name the failure.
func (s *MagicLinkService) Redeem(ctx context.Context, token string) (domain.MagicLinkIdentity, error) {
	id, result, err := s.redeem(ctx, s.Store, token)
	s.Metrics.MagicLinkRedeemed(result)
	return id, err
}

// redeem runs the consumption against st, which may be a transaction. The
// returned result is the metric label; callers record it once the outcome
// is final.
func (s *MagicLinkService) redeem(ctx context.Context, st store.Store, token string) (domain.MagicLinkIdentity, string, error) {
	log := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return domain.MagicLinkIdentity{}, "not_found", ErrMagicLinkNotFound
	}

	hash := cryptox.FingerprintToken(token)
	now := clock(s.Now)

	consumed, err := st.MagicLinks().MarkMagicLinkUsed(ctx, hash, now)
	if err != nil {
		log.Error("failed to consume magic link", slog.Any("error", err))
		return domain.MagicLinkIdentity{}, "error", err
	}

	link, err := st.MagicLinks().GetMagicLinkByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("magic link not found")
			return domain.MagicLinkIdentity{}, "not_found", ErrMagicLinkNotFound
		}
		log.Error("failed to fetch magic link", slog.Any("error", err))
		return domain.MagicLinkIdentity{}, "error", err
	}

	if consumed {
		log.Info("magic link redeemed",
			slog.String("magic_link_id", link.ID),
			slog.String("app", link.AppName),
		)
		return domain.MagicLinkIdentity{Email: link.Email, AppName: link.AppName}, "ok", nil
	}

	// Lost the update: either it was never valid or someone else got it.
	switch link.StatusAt(now) {
	case domain.MagicLinkExpired:
		log.Warn("expired magic link presented", slog.String("magic_link_id", link.ID))
		return domain.MagicLinkIdentity{}, "expired", ErrMagicLinkExpired
	default:
		log.Warn("used magic link presented", slog.String("magic_link_id", link.ID))
		return domain.MagicLinkIdentity{}, "used", ErrMagicLinkUsed
	}
}

// ListRecent returns the newest links with their current status.
func (s *MagicLinkService) ListRecent(ctx context.Context, limit int) ([]MagicLinkView, error) {
	links, err := s.Store.MagicLinks().ListRecentMagicLinks(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list magic links", slog.Any("error", err))
		return nil, err
	}

	now := clock(s.Now)
	views := make([]MagicLinkView, 0, len(links))
	for _, l := range links {
		views = append(views, MagicLinkView{MagicLink: l, Status: l.StatusAt(now)})
	}
	return views, nil
}

// URL returns the redemption link handed to the holder.
func (s *MagicLinkService) URL(token string) string {
	return strings.TrimRight(s.PublicURL, "/") + "/magic?token=" + url.QueryEscape(token)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
