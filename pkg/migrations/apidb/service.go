// Package apidb holds all migrations for the API server database
package apidb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry the numbered migration files register into
var Migrations = migrate.NewMigrations()
