// Package tracker maintains the applied-version ledger. A row exists for a
// version exactly when its forward migration completed, and rolling the
// version back deletes the row.
package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// Queryer is satisfied by *sqlx.Conn, *sqlx.Tx and *sqlx.DB.
type Queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// AppliedMigration represents a migration record from the ledger table.
type AppliedMigration struct {
	Version    string    `db:"version" json:"version"`
	Name       string    `db:"name" json:"name"`
	Checksum   string    `db:"checksum" json:"checksum"`
	AppliedAt  time.Time `db:"applied_at" json:"applied_at"`
	DurationMs int64     `db:"duration_ms" json:"duration_ms"`
}

// RecordParams contains the fields needed to record a migration as applied.
type RecordParams struct {
	Version    string
	Name       string
	Checksum   string
	DurationMs int64
}

// Tracker manages the ledger table.
type Tracker struct {
	q        Queryer
	platform string
	table    string
	bindType int
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTable overrides DefaultTable.
func WithTable(name string) Option {
	return func(t *Tracker) { t.table = name }
}

// WithClock overrides the time source for applied_at.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker that issues its queries through q using the
// placeholder style of platform.
func New(q Queryer, platform string, opts ...Option) *Tracker {
	t := &Tracker{
		q:        q,
		platform: platform,
		table:    DefaultTable,
		bindType: sqlx.QUESTION,
		now:      time.Now,
	}

	if platform == schema.PlatformPostgres {
		t.bindType = sqlx.DOLLAR
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithQueryer returns a copy of t that runs its queries through q, typically
// the transaction a migration runs in.
func (t *Tracker) WithQueryer(q Queryer) *Tracker {
	c := *t
	c.q = q

	return &c
}

// Table returns the ledger table name.
func (t *Tracker) Table() string { return t.table }

// EnsureTable creates the ledger table if it does not exist.
func (t *Tracker) EnsureTable(ctx context.Context) error {
	if !ValidTableName(t.table) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, t.table)
	}

	if _, err := t.q.ExecContext(ctx, createTableSQL(t.platform, t.table)); err != nil {
		return fmt.Errorf("%w %s: %w", ErrTableCreation, t.table, err)
	}

	return nil
}

// IsApplied checks whether a migration version has been successfully applied.
func (t *Tracker) IsApplied(ctx context.Context, version string) (bool, error) {
	var n int

	err := sqlx.GetContext(ctx, t.q, &n, t.query("SELECT COUNT(*) FROM %s WHERE version = ?"), version)
	if err != nil {
		return false, fmt.Errorf("checking if migration %s is applied: %w", version, err)
	}

	return n > 0, nil
}

// GetApplied returns all applied migrations ordered by application time,
// then version.
func (t *Tracker) GetApplied(ctx context.Context) ([]AppliedMigration, error) {
	var applied []AppliedMigration

	err := sqlx.SelectContext(ctx, t.q, &applied, t.query(
		`SELECT version, name, checksum, applied_at, duration_ms
		 FROM %s
		 ORDER BY applied_at, version`,
	))
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}

	for i := range applied {
		applied[i].AppliedAt = applied[i].AppliedAt.UTC()
	}

	return applied, nil
}

// RecordApplied inserts the ledger row for a completed forward migration.
func (t *Tracker) RecordApplied(ctx context.Context, p RecordParams) error {
	_, err := t.q.ExecContext(ctx,
		t.query(`INSERT INTO %s (version, name, checksum, applied_at, duration_ms) VALUES (?, ?, ?, ?, ?)`),
		p.Version, p.Name, p.Checksum, t.now().UTC(), p.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as applied: %w", p.Version, err)
	}

	return nil
}

// RemoveApplied deletes the ledger row of a reverted migration.
func (t *Tracker) RemoveApplied(ctx context.Context, version string) error {
	res, err := t.q.ExecContext(ctx, t.query(`DELETE FROM %s WHERE version = ?`), version)
	if err != nil {
		return fmt.Errorf("removing migration %s from ledger: %w", version, err)
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("migration %s: %w", version, ErrMigrationNotFound)
	}

	return nil
}

// GetChecksum returns the recorded checksum for a migration version.
func (t *Tracker) GetChecksum(ctx context.Context, version string) (string, error) {
	var checksum string

	err := sqlx.GetContext(ctx, t.q, &checksum, t.query(`SELECT checksum FROM %s WHERE version = ?`), version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("migration %s: %w", version, ErrMigrationNotFound)
		}

		return "", fmt.Errorf("getting checksum for migration %s: %w", version, err)
	}

	return checksum, nil
}

func (t *Tracker) query(format string) string {
	return sqlx.Rebind(t.bindType, fmt.Sprintf(format, t.table))
}
