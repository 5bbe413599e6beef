package executor

import (
	"fmt"

	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/parser"
	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// outsideTransaction reports whether m must run directly on the session for
// direction d. Only PostgreSQL scripts are inspected; statements such as
// CREATE INDEX CONCURRENTLY cannot run inside a transaction block there.
func outsideTransaction(platform string, m *migration.Migration, d schema.Direction) (bool, error) {
	if platform != schema.PlatformPostgres || m.Code != nil {
		return false, nil
	}

	script := m.UpSQL
	if d == schema.Backward {
		script = m.DownSQL
	}

	outside, _, err := parser.RequiresNoTransaction(script)
	if err != nil {
		return false, fmt.Errorf("parsing SQL for concurrent index detection: %w", err)
	}

	return outside, nil
}
