package domain

import "time"

// Access methods recorded in the audit trail.
const (
	AccessMethodAdminLogin = "admin_login"
	AccessMethodMagicLink  = "magic_link"
)

// AccessLogEntry is an append-only audit record.
type AccessLogEntry struct {
	ID        string
	Email     string
	AppName   string
	Method    string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
