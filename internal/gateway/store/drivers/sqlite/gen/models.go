package gen

import (
	"database/sql"
)

type AccessLog struct {
	ID        string
	Email     string
	AppName   string
	Method    string
	IpAddress string
	UserAgent string
	CreatedAt int64
}

type Application struct {
	ID          string
	Name        string
	CallbackUrl string
	Active      bool
	CreatedAt   int64
}

type MagicLink struct {
	ID        string
	TokenHash string
	Email     string
	AppName   string
	ExpiresAt int64
	UsedAt    sql.NullInt64
	CreatedBy string
	CreatedAt int64
}

type Principal struct {
	ID        string
	Email     string
	Name      sql.NullString
	IsAdmin   bool
	Active    bool
	CreatedAt int64
}
