package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// TokenExchanger trades an authorization code for a token set.
type TokenExchanger interface {
	Exchange(ctx context.Context, providerName, code string) (domain.TokenSet, error)
}

// Relayer delivers a token set to an application.
type Relayer interface {
	Deliver(ctx context.Context, providerName, appName string, tokens domain.TokenSet) domain.DeliveryResult
}

// CallbackResult is what the provider callback reports to the operator.
type CallbackResult struct {
	Provider  string
	App       string
	Delivery  domain.DeliveryResult
	Persisted bool
	Warning   string
}

// CallbackService completes a provider consent: exchange, relay, and the
// local fallback when the relay did not land.
type CallbackService struct {
	Registry  *provider.Registry
	Exchanger TokenExchanger
	Relay     Relayer
	Secrets   secrets.Source
	Metrics   *metrics.Metrics
}

func (s *CallbackService) Complete(ctx context.Context, providerName, code, appName string) (CallbackResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("provider", providerName))

	def, err := s.Registry.Get(providerName)
	if err != nil {
		return CallbackResult{}, err
	}

	tokens, err := s.Exchanger.Exchange(ctx, def.Name, code)
	if err != nil {
		s.Metrics.TokenExchanged(def.Name, exchangeResult(err))
		log.Error("token exchange failed", slog.Any("error", err))
		return CallbackResult{}, err
	}
	s.Metrics.TokenExchanged(def.Name, "ok")

	res := CallbackResult{Provider: def.Name, App: normalize(appName)}
	res.Delivery = s.Relay.Deliver(ctx, def.Name, res.App, tokens)
	if !res.Delivery.NeedsFallback() {
		return res, nil
	}

	if def.Keys.RefreshToken == "" {
		res.Warning = "relay did not land and the provider has no fallback key; copy the refresh token manually"
		s.Metrics.FallbackPersisted("no_key")
		return res, nil
	}

	if err := s.Secrets.Upsert(def.Keys.RefreshToken, tokens.RefreshToken); err != nil {
		s.Metrics.FallbackPersisted("error")
		log.Error("failed to persist refresh token", slog.Any("error", err))
		res.Warning = fmt.Sprintf("relay did not land and the refresh token could not be saved: %v", err)
		return res, nil
	}

	s.Metrics.FallbackPersisted("ok")
	res.Persisted = true
	res.Warning = fallbackWarning(res.Delivery, def.Keys.RefreshToken)
	log.Info("refresh token persisted locally", slog.String("key", def.Keys.RefreshToken))
	return res, nil
}

func fallbackWarning(d domain.DeliveryResult, key string) string {
	if d.Outcome == domain.DeliveryNoDestination {
		return fmt.Sprintf("no active application to relay to; refresh token saved as %s", key)
	}
	if d.StatusCode != 0 {
		return fmt.Sprintf("webhook answered %d; refresh token saved as %s", d.StatusCode, key)
	}
	return fmt.Sprintf("webhook delivery failed; refresh token saved as %s", key)
}

func exchangeResult(err error) string {
	switch {
	case errors.Is(err, provider.ErrMissingRefreshToken):
		return "no_refresh_token"
	case errors.Is(err, provider.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, provider.ErrTokenExchangeFailed):
		return "rejected"
	default:
		return "error"
	}
}
