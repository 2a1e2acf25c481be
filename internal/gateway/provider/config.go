package provider

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"golang.org/x/oauth2"
)

// Status is the configuration summary exposed by /status. HasRefreshToken
// is nil for login-only providers.
type Status struct {
	Configured      bool
	HasRefreshToken *bool
}

// Status reports whether the provider's credentials are present.
func (d Definition) Status(src secrets.Source) Status {
	_, configured := lookup(src, d.Keys.ClientID)
	if d.LoginOnly {
		return Status{Configured: configured}
	}
	_, has := lookup(src, d.Keys.RefreshToken)
	return Status{Configured: configured, HasRefreshToken: &has}
}

// CallbackPath is the gateway path the provider redirects back to.
func (d Definition) CallbackPath() string { return "/" + d.Name + "/callback" }

// AuthorizePath is the gateway path that starts a consent flow.
func (d Definition) AuthorizePath() string { return "/" + d.Name + "/authorize" }

// OAuth2Config resolves the provider against the secret file. Client
// credentials travel in the form body. The redirect URI defaults to the
// gateway's own callback path.
func (d Definition) OAuth2Config(src secrets.Source, publicURL string) (*oauth2.Config, error) {
	if d.LoginOnly {
		return nil, fmt.Errorf("%w: %s is login-only", ErrNotConfigured, d.Name)
	}

	clientID, okID := lookup(src, d.Keys.ClientID)
	clientSecret, okSecret := lookup(src, d.Keys.ClientSecret)
	if !okID || !okSecret {
		return nil, fmt.Errorf("%w: %s client credentials", ErrNotConfigured, d.Name)
	}

	authURL, tokenURL := d.AuthURL, d.TokenURL
	if strings.Contains(authURL+tokenURL, "{tenant}") {
		tenant, ok := lookup(src, d.Keys.Tenant)
		if !ok {
			return nil, fmt.Errorf("%w: %s tenant", ErrNotConfigured, d.Name)
		}
		authURL = strings.ReplaceAll(authURL, "{tenant}", tenant)
		tokenURL = strings.ReplaceAll(tokenURL, "{tenant}", tenant)
	}

	redirect, ok := lookup(src, d.Keys.RedirectURI)
	if !ok {
		redirect = strings.TrimSuffix(publicURL, "/") + d.CallbackPath()
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirect,
		Scopes:       strings.Fields(d.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, nil
}

func lookup(src secrets.Source, key string) (string, bool) {
	if key == "" || src == nil {
		return "", false
	}
	return src.Lookup(key)
}
