package domain

import "time"

// Application is a registered consumer of relays and magic links. Name is
// lowercase and never changes once created.
type Application struct {
	ID          string
	Name        string
	CallbackURL string
	Active      bool
	CreatedAt   time.Time
}
