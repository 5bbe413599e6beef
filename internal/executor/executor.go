// Package executor runs migration sets against a database session: it
// serializes runs with an advisory lock, keeps the ledger in step with
// every applied or reverted version, and reports progress.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fossabot/person-db-skeleton/internal/database"
	"github.com/fossabot/person-db-skeleton/internal/logger"
	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/retry"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusPlanned   = "planned"
)

const defaultLockRetryStep = 100 * time.Millisecond

// ProgressEvent is emitted by the executor for each migration processed.
type ProgressEvent struct {
	Migration *migration.Migration
	Direction schema.Direction
	Status    string
	Duration  time.Duration
	Error     error
}

// MigrationTracker abstracts ledger operations for testability.
type MigrationTracker interface {
	EnsureTable(ctx context.Context) error
	IsApplied(ctx context.Context, version string) (bool, error)
	GetChecksum(ctx context.Context, version string) (string, error)
	GetApplied(ctx context.Context) ([]tracker.AppliedMigration, error)
	RecordApplied(ctx context.Context, p tracker.RecordParams) error
	RemoveApplied(ctx context.Context, version string) error
}

// Session is the pinned connection migrations run on.
type Session interface {
	schema.Connection
	BeginTx(ctx context.Context) (*database.TxConn, error)
}

// lockReleaser is returned by lockFn and must be released when done.
type lockReleaser interface {
	Release(ctx context.Context) error
}

// lockFunc acquires an advisory lock and returns a releaser.
type lockFunc func(ctx context.Context) (lockReleaser, error)

// recordFunc updates the ledger once a migration's statements succeeded.
// It runs in the same transaction as the statements whenever there is one.
// A nil tracker means the executor's own.
type recordFunc func(ctx context.Context, t MigrationTracker) error

// unitFunc runs one migration in one direction and calls record on success.
type unitFunc func(ctx context.Context, m *migration.Migration, d schema.Direction, record recordFunc) error

// Executor applies and reverts migrations with transaction safety, timeouts,
// and advisory locks to prevent concurrent runs.
type Executor struct {
	session          Session
	tracker          MigrationTracker
	bindTracker      func(q tracker.Queryer) MigrationTracker
	profiles         schema.Profiles
	lockTimeout      time.Duration
	statementTimeout time.Duration
	lockWait         time.Duration
	lockRetryStep    time.Duration
	dryRun           bool
	onProgress       func(ProgressEvent)
	log              logger.Logger
	tryLock          lockFunc
	acquireLock      lockFunc
	runUnit          unitFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithLockTimeout sets the per-transaction lock_timeout (PostgreSQL).
func WithLockTimeout(d time.Duration) Option {
	return func(e *Executor) { e.lockTimeout = d }
}

// WithStatementTimeout sets the per-transaction statement_timeout (PostgreSQL).
func WithStatementTimeout(d time.Duration) Option {
	return func(e *Executor) { e.statementTimeout = d }
}

// WithLockWait sets how long to keep retrying a busy migration lock.
// Zero means a single attempt.
func WithLockWait(d time.Duration) Option {
	return func(e *Executor) { e.lockWait = d }
}

// WithDryRun enables dry-run mode where no SQL is executed.
func WithDryRun(b bool) Option {
	return func(e *Executor) { e.dryRun = b }
}

// WithProgressCallback sets a function called for each migration processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// WithProfiles replaces the default session profile table.
func WithProfiles(p schema.Profiles) Option {
	return func(e *Executor) { e.profiles = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// New creates an Executor running on sess with ledger t.
func New(sess *database.Session, t *tracker.Tracker, opts ...Option) *Executor {
	e := &Executor{
		profiles:      schema.DefaultProfiles(),
		lockRetryStep: defaultLockRetryStep,
		log:           logger.NullLogger{},
	}

	if sess != nil {
		e.session = sess
		e.tryLock = func(ctx context.Context) (lockReleaser, error) {
			return database.TryAcquireLock(ctx, sess)
		}
	}

	if t != nil {
		e.tracker = t
		e.bindTracker = func(q tracker.Queryer) MigrationTracker { return t.WithQueryer(q) }
	}

	for _, opt := range opts {
		opt(e)
	}

	// Set defaults for injectable functions after options are applied,
	// so tests can override them via options.
	if e.acquireLock == nil {
		e.acquireLock = e.waitForLock
	}

	if e.runUnit == nil {
		e.runUnit = e.executeUnit
	}

	return e
}

// Apply executes pending migrations in order. Already-applied migrations
// are skipped after verifying their checksum. The advisory lock prevents
// concurrent migration runs.
func (e *Executor) Apply(ctx context.Context, migrations []migration.Migration) error {
	lock, err := e.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer lock.Release(ctx) //nolint:errcheck // best-effort release on return

	if err := e.tracker.EnsureTable(ctx); err != nil {
		return err
	}

	for i := range migrations {
		if err := e.applyOne(ctx, &migrations[i]); err != nil {
			return err
		}
	}

	return nil
}

// applyOne handles a single migration: skip if applied, dry-run check,
// execute and record, and fire progress.
func (e *Executor) applyOne(ctx context.Context, m *migration.Migration) error {
	skip, err := e.shouldSkip(ctx, m)
	if err != nil {
		return err
	}

	if skip {
		e.fireProgress(ProgressEvent{Migration: m, Status: StatusSkipped})
		return nil
	}

	if e.dryRun {
		e.fireProgress(ProgressEvent{Migration: m, Status: StatusPlanned})
		return nil
	}

	return e.run(ctx, m, schema.Forward, func(ctx context.Context, t MigrationTracker, took time.Duration) error {
		if err := t.RecordApplied(ctx, tracker.RecordParams{
			Version:    m.Version,
			Name:       m.Name,
			Checksum:   m.Checksum,
			DurationMs: took.Milliseconds(),
		}); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.Version, err)
		}

		return nil
	})
}

// run executes m in direction d, reporting progress around it. record
// receives the time spent on the migration's own statements.
func (e *Executor) run(
	ctx context.Context,
	m *migration.Migration,
	d schema.Direction,
	record func(ctx context.Context, t MigrationTracker, took time.Duration) error,
) error {
	e.fireProgress(ProgressEvent{Migration: m, Direction: d, Status: StatusStarting})

	start := time.Now()
	execErr := e.runUnit(ctx, m, d, func(ctx context.Context, t MigrationTracker) error {
		if t == nil {
			t = e.tracker
		}

		return record(ctx, t, time.Since(start))
	})
	duration := time.Since(start)

	if execErr != nil {
		e.fireProgress(ProgressEvent{
			Migration: m,
			Direction: d,
			Status:    StatusFailed,
			Duration:  duration,
			Error:     execErr,
		})
		e.logs().Error(execErr)

		verb := "executing"
		if d == schema.Backward {
			verb = "reverting"
		}

		return fmt.Errorf("%s migration %s: %w: %w", verb, m.Version, ErrExecutionFailed, execErr)
	}

	e.fireProgress(ProgressEvent{
		Migration: m,
		Direction: d,
		Status:    StatusCompleted,
		Duration:  duration,
	})
	e.logs().Successf("%s %s_%s (%s)", d, m.Version, m.Name, duration.Round(time.Millisecond))

	return nil
}

// shouldSkip returns true if the migration is already applied.
// Verifies the checksum of applied migrations to catch file tampering.
func (e *Executor) shouldSkip(ctx context.Context, m *migration.Migration) (bool, error) {
	applied, err := e.tracker.IsApplied(ctx, m.Version)
	if err != nil {
		return false, fmt.Errorf("checking migration %s: %w", m.Version, err)
	}

	if !applied {
		return false, nil
	}

	storedChecksum, err := e.tracker.GetChecksum(ctx, m.Version)
	if err != nil {
		return false, fmt.Errorf("getting checksum for %s: %w", m.Version, err)
	}

	if storedChecksum != m.Checksum {
		return false, fmt.Errorf(
			"migration %s: %w: stored=%s computed=%s",
			m.Version, tracker.ErrChecksumMismatch, storedChecksum, m.Checksum,
		)
	}

	return true, nil
}

// executeUnit prepares the session for m, then runs it together with its
// ledger update, inside a transaction unless the script forbids one.
func (e *Executor) executeUnit(ctx context.Context, m *migration.Migration, d schema.Direction, record recordFunc) error {
	unit := schema.NewUnit(*m, e.profiles)

	prepare, apply := unit.PrepareForward, unit.ApplyForward
	if d == schema.Backward {
		prepare, apply = unit.PrepareBackward, unit.ApplyBackward
	}

	if err := prepare(ctx, e.session); err != nil {
		return err
	}

	outside, err := outsideTransaction(e.session.PlatformName(), m, d)
	if err != nil {
		return err
	}

	if outside {
		e.logs().Debugf("running %s %s outside a transaction", m.Version, d)

		if err := apply(ctx, e.session); err != nil {
			return err
		}

		return record(ctx, nil)
	}

	return ExecInTransaction(ctx, e.session, func(tx *database.TxConn) error {
		if err := e.applyTimeouts(ctx, tx); err != nil {
			return err
		}

		if err := apply(ctx, tx); err != nil {
			return err
		}

		return record(ctx, e.trackerFor(tx))
	})
}

// trackerFor returns the ledger bound to tx so its writes commit or roll
// back together with the migration.
func (e *Executor) trackerFor(tx *database.TxConn) MigrationTracker {
	if e.bindTracker == nil {
		return e.tracker
	}

	return e.bindTracker(tx.Tx())
}

// waitForLock retries tryLock with incremental pauses while another run
// holds the lock, for at most lockWait.
func (e *Executor) waitForLock(ctx context.Context) (lockReleaser, error) {
	var lock lockReleaser

	err := retry.Within(ctx, e.lockRetryStep, e.lockWait, func(attempt int) error {
		l, err := e.tryLock(ctx)
		if errors.Is(err, database.ErrLockNotAcquired) {
			e.logs().Debugf("migration lock busy (attempt %d)", attempt)
			return retry.Error(err, attempt)
		}

		if err != nil {
			return err
		}

		lock = l

		return nil
	})
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (e *Executor) logs() logger.Logger {
	if e.log == nil {
		return logger.NullLogger{}
	}

	return e.log
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
