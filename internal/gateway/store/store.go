package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Repositories are exposed as
// methods so a transaction can hand out the same set bound to its Tx.
//
// Emails and application names are lowercased by the repositories on every
// write and lookup.
type Store interface {
	Applications() Applications
	Principals() Principals
	MagicLinks() MagicLinks
	AccessLogs() AccessLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Applications interface {
	// CreateApplication inserts a new application. A taken name yields
	// ErrAlreadyExists.
	CreateApplication(ctx context.Context, a domain.Application) error

	GetApplicationByID(ctx context.Context, id string) (domain.Application, error)
	GetApplicationByName(ctx context.Context, name string) (domain.Application, error)

	// ListApplications returns every application ordered by name.
	ListApplications(ctx context.Context) ([]domain.Application, error)

	// ToggleApplication flips the active flag.
	ToggleApplication(ctx context.Context, id string) error

	// GetActiveCallbackURL returns the callback of an active application,
	// or ErrNotFound when the app is unknown or deactivated.
	GetActiveCallbackURL(ctx context.Context, name string) (string, error)
}

type Principals interface {
	// CreatePrincipal inserts a new principal. A taken email yields
	// ErrAlreadyExists.
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// ListPrincipals returns every principal ordered by email.
	ListPrincipals(ctx context.Context) ([]domain.Principal, error)

	TogglePrincipal(ctx context.Context, id string) error

	// DeletePrincipal removes a principal, unless its email equals
	// protectedEmail, in which case nothing is deleted and ErrNotFound is
	// returned.
	DeletePrincipal(ctx context.Context, id, protectedEmail string) error

	IsActiveAdmin(ctx context.Context, email string) (bool, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
}

type MagicLinks interface {
	CreateMagicLink(ctx context.Context, m domain.MagicLink) error
	GetMagicLinkByTokenHash(ctx context.Context, hash string) (domain.MagicLink, error)

	// MarkMagicLinkUsed consumes the link identified by hash if it is unused
	// and unexpired at now. It reports whether this call consumed it.
	MarkMagicLinkUsed(ctx context.Context, hash string, now time.Time) (bool, error)

	// ListRecentMagicLinks returns the newest links first.
	ListRecentMagicLinks(ctx context.Context, limit int) ([]domain.MagicLink, error)

	// DeleteExpiredMagicLinks removes links that expired before the cutoff.
	DeleteExpiredMagicLinks(ctx context.Context, before time.Time) (int64, error)
}

type AccessLogs interface {
	AppendAccessLog(ctx context.Context, e domain.AccessLogEntry) error

	// ListRecentAccessLogs returns the newest entries first.
	ListRecentAccessLogs(ctx context.Context, limit int) ([]domain.AccessLogEntry, error)
}
