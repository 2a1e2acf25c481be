package domain

import "time"

type MagicLinkStatus string

const (
	MagicLinkValid   MagicLinkStatus = "valid"
	MagicLinkUsed    MagicLinkStatus = "used"
	MagicLinkExpired MagicLinkStatus = "expired"
)

// MagicLink is a single-use passwordless credential. Only the fingerprint of
// the token is stored.
type MagicLink struct {
	ID        string
	TokenHash string
	Email     string
	AppName   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedBy string
	CreatedAt time.Time
}

// StatusAt reports the state of the link at now. Expiry is reported ahead of
// use.
func (m MagicLink) StatusAt(now time.Time) MagicLinkStatus {
	switch {
	case !now.Before(m.ExpiresAt):
		return MagicLinkExpired
	case m.UsedAt != nil:
		return MagicLinkUsed
	default:
		return MagicLinkValid
	}
}

// MagicLinkIdentity is what a successful redemption yields.
type MagicLinkIdentity struct {
	Email   string
	AppName string
}
