package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/pkg/assertion"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// DefaultHandoffTTL bounds the assertion handed to an application after a
// magic link redemption.
const DefaultHandoffTTL = 5 * time.Minute

// AssertionService verifies login assertions and signs hand-off assertions.
// Secrets are always read from the secret source, never from the request.
type AssertionService struct {
	Secrets secrets.Source

	// VerifyKey names the secret shared with the upstream login service.
	VerifyKey string

	// HandoffKey names the secret shared with applications.
	HandoffKey string

	HandoffTTL time.Duration
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Verify checks a login assertion. It says where the identity came from,
// not whether it may enter.
func (s *AssertionService) Verify(ctx context.Context, token string) (assertion.Claim, error) {
	log := slogx.FromContext(ctx)

	secret, ok := s.Secrets.Lookup(s.VerifyKey)
	if !ok {
		s.Metrics.AssertionVerified("no_secret")
		log.Error("assertion secret not configured", slog.String("key", s.VerifyKey))
		return assertion.Claim{}, assertion.ErrNoSecret
	}

	claim, err := assertion.VerifyAt(token, []byte(secret), clock(s.Now))
	if err != nil {
		s.Metrics.AssertionVerified(assertionResult(err))
		log.Warn("assertion rejected", slog.Any("error", err))
		return assertion.Claim{}, err
	}

	claim.Email = normalize(claim.Email)
	s.Metrics.AssertionVerified("ok")
	return claim, nil
}

// Handoff signs the identity of a redeemed magic link for its application.
func (s *AssertionService) Handoff(ctx context.Context, id domain.MagicLinkIdentity) (string, error) {
	secret, ok := s.Secrets.Lookup(s.HandoffKey)
	if !ok {
		slogx.FromContext(ctx).Error("hand-off secret not configured", slog.String("key", s.HandoffKey))
		return "", assertion.ErrNoSecret
	}

	ttl := s.HandoffTTL
	if ttl <= 0 {
		ttl = DefaultHandoffTTL
	}
	now := clock(s.Now)

	return assertion.Sign(assertion.Claim{
		Email:     id.Email,
		App:       id.AppName,
		Method:    domain.AccessMethodMagicLink,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}, []byte(secret))
}

func assertionResult(err error) string {
	switch {
	case errors.Is(err, assertion.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, assertion.ErrSignatureMismatch):
		return "bad_signature"
	case errors.Is(err, assertion.ErrExpiredClaim):
		return "expired"
	case errors.Is(err, assertion.ErrMalformedClaim):
		return "bad_claim"
	default:
		return "error"
	}
}
