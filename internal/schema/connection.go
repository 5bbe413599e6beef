// Package schema holds the migration execution core: versioned migrations,
// their per-platform session bootstrap and the statement batcher that feeds
// multi-statement scripts to a database connection.
package schema

import "context"

// Platform names reported by Connection.PlatformName.
const (
	PlatformMySQL    = "mysql"
	PlatformPostgres = "postgres"
	PlatformSQLite   = "sqlite"
)

// Result is the outcome of a single executed statement.
type Result struct {
	RowsAffected int64
}

// Connection is the only view of the database the core depends on.
type Connection interface {
	// PlatformName identifies the SQL dialect, e.g. "mysql".
	PlatformName() string
	// Exec runs exactly one statement.
	Exec(ctx context.Context, statement string) (Result, error)
}
