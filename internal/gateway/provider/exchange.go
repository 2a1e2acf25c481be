package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single token exchange.
const DefaultTimeout = 10 * time.Second

var (
	ErrTokenExchangeFailed = errors.New("provider: token exchange failed")
	ErrMissingRefreshToken = errors.New("provider: no refresh token in response")
	ErrMissingCode         = errors.New("provider: missing authorization code")
)

// TokenExchangeError carries the upstream diagnostics of a failed exchange.
// Status is 0 when the provider could not be reached.
type TokenExchangeError struct {
	Provider    string
	Status      int
	Body        string
	Code        string
	Description string
}

func (e *TokenExchangeError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("provider %s: token exchange failed: %s", e.Provider, e.Description)
	}
	return fmt.Sprintf("provider %s: token exchange failed: HTTP %d %s %s", e.Provider, e.Status, e.Code, e.Description)
}

func (e *TokenExchangeError) Is(target error) bool { return target == ErrTokenExchangeFailed }

// Exchanger trades authorization codes for provider tokens. It never
// persists anything.
type Exchanger struct {
	Registry   *Registry
	Secrets    secrets.Source
	PublicURL  string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Config resolves the oauth2 configuration of a named provider.
func (e *Exchanger) Config(name string) (Definition, *oauth2.Config, error) {
	def, err := e.Registry.Get(name)
	if err != nil {
		return Definition{}, nil, err
	}
	cfg, err := def.OAuth2Config(e.Secrets, e.PublicURL)
	if err != nil {
		return Definition{}, nil, err
	}
	return def, cfg, nil
}

// Exchange performs the authorization_code grant against the provider.
func (e *Exchanger) Exchange(ctx context.Context, name, code string) (domain.TokenSet, error) {
	if code == "" {
		return domain.TokenSet{}, ErrMissingCode
	}

	def, cfg, err := e.Config(name)
	if err != nil {
		return domain.TokenSet{}, err
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if e.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("scope", def.Scope))
	if err != nil {
		return domain.TokenSet{}, exchangeError(def.Name, err)
	}

	if tok.RefreshToken == "" {
		return domain.TokenSet{}, ErrMissingRefreshToken
	}

	return tokenSet(tok), nil
}

// AuthCodeURL builds the consent redirect for name. state carries the
// application name back to the callback.
func (e *Exchanger) AuthCodeURL(name, state string) (string, error) {
	def, cfg, err := e.Config(name)
	if err != nil {
		return "", err
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(def.AuthParams))
	for k, v := range def.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return cfg.AuthCodeURL(state, opts...), nil
}

func exchangeError(name string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		out := &TokenExchangeError{
			Provider:    name,
			Body:        string(rErr.Body),
			Code:        rErr.ErrorCode,
			Description: rErr.ErrorDescription,
		}
		if rErr.Response != nil {
			out.Status = rErr.Response.StatusCode
		}
		return out
	}
	return &TokenExchangeError{Provider: name, Description: err.Error()}
}

func tokenSet(tok *oauth2.Token) domain.TokenSet {
	ts := domain.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tok.TokenType,
	}
	if ts.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		ts.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		ts.Scope = scope
	}
	return ts
}
