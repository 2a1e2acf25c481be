package relaysdk

// Header names set on every relay delivery.
const (
	HeaderProvider  = "X-Auth-Provider"
	HeaderSignature = "X-Auth-Signature"
	HeaderDelivery  = "X-Auth-Delivery"
)

// ErrorResponse is the JSON body of every 4xx/5xx answer from the gateway.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`

	// Upstream diagnostics, only set when a provider token exchange failed.
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

// TokenSet is the provider token set carried inside a relay.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// RelayPayload is the body the gateway POSTs to an application's callback URL.
type RelayPayload struct {
	Provider  string   `json:"provider"`
	App       string   `json:"app"`
	Tokens    TokenSet `json:"tokens"`
	Timestamp string   `json:"timestamp"`
}

// CallbackResponse is returned by GET /{provider}/callback after a
// successful exchange.
type CallbackResponse struct {
	Success    bool   `json:"success"`
	Provider   string `json:"provider"`
	App        string `json:"app,omitempty"`
	Delivery   string `json:"delivery"`
	StatusCode int    `json:"status_code,omitempty"`
	Persisted  bool   `json:"persisted"`
	Warning    string `json:"warning,omitempty"`
}

// ProviderStatus is a provider entry of the status report. Only booleans
// are exposed.
type ProviderStatus struct {
	Configured      bool  `json:"configured"`
	HasRefreshToken *bool `json:"has_refresh_token,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Service   string                    `json:"service"`
	Status    string                    `json:"status"`
	Timestamp string                    `json:"timestamp"`
	Providers map[string]ProviderStatus `json:"providers"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists the readiness of each dependency (only for /readyz).
type HealthChecks struct {
	Database string `json:"database"`
	Secrets  string `json:"secrets"`
}
