package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// ClientInfo identifies the caller in the access log.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// HandoffService turns a magic link into a signed redirect to the
// application it was issued for.
type HandoffService struct {
	Store      store.Store
	MagicLinks *MagicLinkService
	Assertions *AssertionService
}

// Redeem consumes token and returns the application URL carrying a signed
// assertion of the holder's identity. Consumption, the application check and
// the access log entry commit together: a link for a deactivated
// application stays unused.
func (s *HandoffService) Redeem(ctx context.Context, token string, client ClientInfo) (string, error) {
	log := slogx.FromContext(ctx)

	var (
		target string
		result string
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, res, err := s.MagicLinks.redeem(ctx, tx, token)
		result = res
		if err != nil {
			return err
		}

		callbackURL, err := tx.Applications().GetActiveCallbackURL(ctx, id.AppName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				result = "inactive_app"
				log.Warn("magic link presented for inactive application", slog.String("app", id.AppName))
				return ErrInvalidApplication
			}
			result = "error"
			return err
		}

		target, err = s.handoffURL(ctx, id, callbackURL)
		if err != nil {
			result = "error"
			return err
		}

		if err := recordAccess(ctx, tx, id.Email, id.AppName, domain.AccessMethodMagicLink, client, s.MagicLinks.Now); err != nil {
			result = "error"
			log.Error("failed to record access", slog.Any("error", err))
			return err
		}
		return nil
	})
	s.MagicLinks.Metrics.MagicLinkRedeemed(result)
	if err != nil {
		return "", err
	}
	return target, nil
}

func (s *HandoffService) handoffURL(ctx context.Context, id domain.MagicLinkIdentity, callbackURL string) (string, error) {
	target, err := url.Parse(callbackURL)
	if err != nil {
		slogx.FromContext(ctx).Error("application callback url is invalid", slog.String("app", id.AppName), slog.Any("error", err))
		return "", ErrInvalidApplication
	}

	signed, err := s.Assertions.Handoff(ctx, id)
	if err != nil {
		return "", err
	}

	q := target.Query()
	q.Set("token", signed)
	target.RawQuery = q.Encode()
	return target.String(), nil
}

func recordAccess(ctx context.Context, st store.Store, email, app, method string, client ClientInfo, now func() time.Time) error {
	at := clock(now)
	return st.AccessLogs().AppendAccessLog(ctx, domain.AccessLogEntry{
		ID:        idx.NewAt(at).String(),
		Email:     email,
		AppName:   app,
		Method:    method,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: at,
	})
}
