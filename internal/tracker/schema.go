package tracker

import (
	"fmt"
	"regexp"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// DefaultTable is the ledger table name used when none is configured.
const DefaultTable = "schema_migrations"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`) //nolint:gochecknoglobals // compiled once

// ValidTableName reports whether name can be used unquoted as the ledger table.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// createTableSQL is the ledger DDL for platform. Identifiers stay unquoted
// so the same text works under MySQL's ANSI mode.
func createTableSQL(platform, table string) string {
	appliedAt := "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"

	switch platform {
	case schema.PlatformPostgres:
		appliedAt = "TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP"
	case schema.PlatformMySQL:
		appliedAt = "DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)"
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version      VARCHAR(255) NOT NULL PRIMARY KEY,
    name         VARCHAR(255) NOT NULL,
    checksum     VARCHAR(64) NOT NULL,
    applied_at   %s,
    duration_ms  BIGINT NOT NULL DEFAULT 0
)`, table, appliedAt)
}
