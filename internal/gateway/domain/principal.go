package domain

import "time"

type Principal struct {
	ID        string
	Email     string // lowercased
	Name      string
	IsAdmin   bool
	Active    bool
	CreatedAt time.Time
}
