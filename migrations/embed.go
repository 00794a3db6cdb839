// Package migrations holds the goose schema for the SQL-backed key-value stores.
package migrations

import "embed"

// FS contains one directory per goose dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
