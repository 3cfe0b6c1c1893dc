package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded SQL migrations for the account
// and social identity tables.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
