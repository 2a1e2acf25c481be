package domain

// TokenSet is the result of a provider authorization-code exchange. It is
// never persisted as a whole; only the refresh token may be saved as a
// fallback.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
	Scope        string
}

type DeliveryOutcome string

const (
	DeliveryDelivered     DeliveryOutcome = "delivered"
	DeliveryNoDestination DeliveryOutcome = "no_destination"
	DeliveryFailed        DeliveryOutcome = "failed"
)

// DeliveryResult describes one webhook relay attempt.
type DeliveryResult struct {
	Outcome    DeliveryOutcome
	DeliveryID string
	StatusCode int
	Err        error
}

// NeedsFallback reports whether the refresh token must be persisted locally.
func (r DeliveryResult) NeedsFallback() bool {
	return r.Outcome != DeliveryDelivered
}
