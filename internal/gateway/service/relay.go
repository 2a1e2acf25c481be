package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// DefaultRelayTimeout bounds the single webhook POST.
const DefaultRelayTimeout = 10 * time.Second

var ErrWebhookSecretMissing = errors.New("webhook secret not configured")

// RelayService forwards exchanged token sets to the owning application.
// Delivery is attempted once and never retried.
type RelayService struct {
	Store   store.Store
	Secrets secrets.Source

	// SecretKey names the shared webhook secret in the secret source.
	SecretKey string

	// GatewayID is sent as X-Auth-Provider.
	GatewayID string

	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Deliver POSTs the signed token set to the application's callback URL.
// Unknown or inactive applications yield DeliveryNoDestination, which is
// not an error.
func (s *RelayService) Deliver(ctx context.Context, providerName, appName string, tokens domain.TokenSet) domain.DeliveryResult {
	log := slogx.FromContext(ctx).With(
		slog.String("provider", providerName),
		slog.String("app", appName),
	)

	result := s.deliver(ctx, log, providerName, normalize(appName), tokens)
	s.Metrics.WebhookDelivered(string(result.Outcome))

	switch result.Outcome {
	case domain.DeliveryDelivered:
		log.Info("token set relayed",
			slog.String("delivery_id", result.DeliveryID),
			slog.Int("status", result.StatusCode),
		)
	case domain.DeliveryNoDestination:
		log.Info("no relay destination for application")
	default:
		log.Warn("token relay failed",
			slog.String("delivery_id", result.DeliveryID),
			slog.Int("status", result.StatusCode),
			slog.Any("error", result.Err),
		)
	}
	return result
}

func (s *RelayService) deliver(ctx context.Context, log *slog.Logger, providerName, appName string, tokens domain.TokenSet) domain.DeliveryResult {
	if appName == "" {
		return domain.DeliveryResult{Outcome: domain.DeliveryNoDestination}
	}

	callbackURL, err := s.Store.Applications().GetActiveCallbackURL(ctx, appName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.DeliveryResult{Outcome: domain.DeliveryNoDestination}
		}
		log.Error("failed to resolve callback url", slog.Any("error", err))
		return domain.DeliveryResult{Outcome: domain.DeliveryFailed, Err: err}
	}
	if callbackURL == "" {
		return domain.DeliveryResult{Outcome: domain.DeliveryNoDestination}
	}

	secret, ok := s.Secrets.Lookup(s.SecretKey)
	if !ok {
		return domain.DeliveryResult{Outcome: domain.DeliveryFailed, Err: ErrWebhookSecretMissing}
	}

	body, err := json.Marshal(relaysdk.RelayPayload{
		Provider: providerName,
		App:      appName,
		Tokens: relaysdk.TokenSet{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresIn:    tokens.ExpiresIn,
			TokenType:    tokens.TokenType,
			Scope:        tokens.Scope,
		},
		Timestamp: clock(s.Now).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return domain.DeliveryResult{Outcome: domain.DeliveryFailed, Err: err}
	}

	deliveryID := uuid.NewString()
	result := domain.DeliveryResult{Outcome: domain.DeliveryFailed, DeliveryID: deliveryID}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		result.Err = err
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(relaysdk.HeaderProvider, s.GatewayID)
	req.Header.Set(relaysdk.HeaderSignature, relaysdk.Sign(body, []byte(secret)))
	req.Header.Set(relaysdk.HeaderDelivery, deliveryID)

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("webhook answered %d", resp.StatusCode)
		return result
	}

	result.Outcome = domain.DeliveryDelivered
	return result
}
