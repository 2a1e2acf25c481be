// Package provider knows the external identity providers the gateway can
// broker authorization codes for, and performs the code exchange.
package provider

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownProvider = errors.New("provider: unknown provider")
	ErrNotConfigured   = errors.New("provider: credentials not configured")
)

// SecretKeys names the entries of the secret file that hold a provider's
// credentials. Empty names are not used.
type SecretKeys struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Tenant       string `yaml:"tenant"`
	RedirectURI  string `yaml:"redirect_uri"`
	RefreshToken string `yaml:"refresh_token"`
}

// Definition describes one provider. AuthURL and TokenURL may contain a
// {tenant} placeholder.
type Definition struct {
	Name       string            `yaml:"name"`
	AuthURL    string            `yaml:"auth_url"`
	TokenURL   string            `yaml:"token_url"`
	Scope      string            `yaml:"scope"`
	AuthParams map[string]string `yaml:"auth_params"`
	Keys       SecretKeys        `yaml:"keys"`

	// LoginOnly providers are reported by the status endpoint but never
	// exchange codes through the gateway.
	LoginOnly bool `yaml:"login_only"`
}

// MicrosoftScope is the delegated Graph scope requested by the gateway.
const MicrosoftScope = "Calendars.Read Calendars.ReadWrite Files.Read.All Mail.Read Mail.ReadBasic " +
	"Mail.ReadWrite Mail.ReadWrite.Shared Mail.Send offline_access User.Read"

// Defaults returns the built-in providers.
func Defaults() []Definition {
	return []Definition{
		{
			Name:       "microsoft",
			AuthURL:    "https://login.microsoftonline.com/{tenant}/oauth2/v2.0/authorize",
			TokenURL:   "https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token",
			Scope:      MicrosoftScope,
			AuthParams: map[string]string{"prompt": "consent"},
			Keys: SecretKeys{
				ClientID:     "MS_GRAPH_CLIENT_ID",
				ClientSecret: "MS_GRAPH_CLIENT_SECRET",
				Tenant:       "MS_GRAPH_TENANT_ID",
				RedirectURI:  "MS_GRAPH_REDIRECT_URI",
				RefreshToken: "MS_GRAPH_REFRESH_TOKEN",
			},
		},
		{
			Name:       "google",
			AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:   "https://oauth2.googleapis.com/token",
			Scope:      "openid email profile",
			AuthParams: map[string]string{"access_type": "offline", "prompt": "consent"},
			Keys: SecretKeys{
				ClientID:     "GOOGLE_CLIENT_ID",
				ClientSecret: "GOOGLE_CLIENT_SECRET",
				RedirectURI:  "GOOGLE_REDIRECT_URI",
				RefreshToken: "GOOGLE_REFRESH_TOKEN",
			},
		},
		{
			Name:      "google-login",
			LoginOnly: true,
			Keys:      SecretKeys{ClientID: "GOOGLE_LOGIN_CLIENT_ID"},
		},
	}
}

// Registry is an immutable set of provider definitions keyed by name.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a registry. Later definitions replace earlier ones
// with the same name.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		d.Name = strings.ToLower(strings.TrimSpace(d.Name))
		r.defs[d.Name] = d
	}
	return r
}

// DefaultRegistry holds the built-in providers only.
func DefaultRegistry() *Registry {
	return NewRegistry(Defaults()...)
}

type fileFormat struct {
	Providers []Definition `yaml:"providers"`
}

// LoadRegistry reads provider overrides from a YAML file and merges them
// over the defaults field by field. An empty path yields the defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry merges YAML provider definitions over the defaults.
func ParseRegistry(data []byte) (*Registry, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse providers file: %w", err)
	}

	r := DefaultRegistry()
	for _, d := range f.Providers {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			return nil, fmt.Errorf("parse providers file: provider without a name")
		}
		if strings.ContainsAny(name, "/{} ") || name == "admin" || name == "magic" || name == "swagger" {
			return nil, fmt.Errorf("parse providers file: invalid provider name %q", name)
		}
		d.Name = name

		base, ok := r.defs[name]
		if !ok {
			if !d.LoginOnly && d.TokenURL == "" {
				return nil, fmt.Errorf("parse providers file: %s: token_url is required", name)
			}
			r.defs[name] = d
			continue
		}
		r.defs[name] = merge(base, d)
	}
	return r, nil
}

func merge(base, over Definition) Definition {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}

	out := base
	out.AuthURL = pick(base.AuthURL, over.AuthURL)
	out.TokenURL = pick(base.TokenURL, over.TokenURL)
	out.Scope = pick(base.Scope, over.Scope)
	out.LoginOnly = base.LoginOnly || over.LoginOnly
	if over.AuthParams != nil {
		out.AuthParams = over.AuthParams
	}
	out.Keys = SecretKeys{
		ClientID:     pick(base.Keys.ClientID, over.Keys.ClientID),
		ClientSecret: pick(base.Keys.ClientSecret, over.Keys.ClientSecret),
		Tenant:       pick(base.Keys.Tenant, over.Keys.Tenant),
		RedirectURI:  pick(base.Keys.RedirectURI, over.Keys.RedirectURI),
		RefreshToken: pick(base.Keys.RefreshToken, over.Keys.RefreshToken),
	}
	return out
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (Definition, error) {
	d, ok := r.defs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return d, nil
}

// All returns every definition sorted by name.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Exchangeable returns the providers that broker authorization codes.
func (r *Registry) Exchangeable() []Definition {
	var out []Definition
	for _, d := range r.All() {
		if !d.LoginOnly {
			out = append(out, d)
		}
	}
	return out
}
