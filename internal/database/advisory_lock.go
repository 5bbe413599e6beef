package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// MigrationLockID is the PostgreSQL advisory lock key used to prevent
// concurrent migration runs.
const MigrationLockID int64 = 123456789

// MigrationLockName is the MySQL named lock used for the same purpose.
const MigrationLockName = "persondb_migrations"

// LockHandle holds a session-level advisory lock on a Session's
// connection. Call Release to unlock.
type LockHandle struct {
	conn     *sqlx.Conn
	platform string
}

// TryAcquireLock attempts to take the migration lock on s without waiting.
// Returns ErrLockNotAcquired if another session holds it. SQLite has no
// advisory locks; its database file lock already serializes writers, so
// the returned handle is a no-op.
func TryAcquireLock(ctx context.Context, s *Session) (*LockHandle, error) {
	var (
		query string
		arg   any
	)

	switch s.platform {
	case schema.PlatformPostgres:
		query, arg = "SELECT pg_try_advisory_lock($1)", MigrationLockID
	case schema.PlatformMySQL:
		query, arg = "SELECT GET_LOCK(?, 0)", MigrationLockName
	default:
		return &LockHandle{}, nil
	}

	var acquired sql.NullBool
	if err := s.conn.QueryRowxContext(ctx, query, arg).Scan(&acquired); err != nil {
		return nil, fmt.Errorf("executing %s: %w", query, Classify(s.platform, query, err))
	}

	if !acquired.Valid || !acquired.Bool {
		return nil, ErrLockNotAcquired
	}

	return &LockHandle{conn: s.conn, platform: s.platform}, nil
}

// Release unlocks the advisory lock.
// Safe to call multiple times; subsequent calls are no-ops.
func (h *LockHandle) Release(ctx context.Context) error {
	if h == nil || h.conn == nil {
		return nil
	}

	var err error

	switch h.platform {
	case schema.PlatformPostgres:
		_, err = h.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", MigrationLockID)
	case schema.PlatformMySQL:
		_, err = h.conn.ExecContext(ctx, "SELECT RELEASE_LOCK(?)", MigrationLockName)
	}

	h.conn = nil

	if err != nil {
		return fmt.Errorf("releasing advisory lock: %w", err)
	}

	return nil
}
