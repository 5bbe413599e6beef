package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// SetLockTimeout sets the lock_timeout for the current transaction.
// This causes the migration to fail fast if it cannot acquire a lock
// within the specified duration, instead of blocking other queries.
func SetLockTimeout(ctx context.Context, conn schema.Connection, timeout time.Duration) error {
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())

	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("setting lock_timeout: %w", err)
	}

	return nil
}

// SetStatementTimeout sets the statement_timeout for the current transaction.
// This prevents runaway queries from holding locks indefinitely.
func SetStatementTimeout(ctx context.Context, conn schema.Connection, timeout time.Duration) error {
	stmt := fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", timeout.Milliseconds())

	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("setting statement_timeout: %w", err)
	}

	return nil
}

// applyTimeouts sets the configured timeouts on a transaction. Only
// PostgreSQL supports transaction-scoped timeouts; other platforms are left
// untouched.
func (e *Executor) applyTimeouts(ctx context.Context, conn schema.Connection) error {
	if conn.PlatformName() != schema.PlatformPostgres {
		return nil
	}

	if e.lockTimeout > 0 {
		if err := SetLockTimeout(ctx, conn, e.lockTimeout); err != nil {
			return err
		}
	}

	if e.statementTimeout > 0 {
		if err := SetStatementTimeout(ctx, conn, e.statementTimeout); err != nil {
			return err
		}
	}

	return nil
}
