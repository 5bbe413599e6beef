package executor

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

// TargetInitial as a rollback target reverts every applied version.
const TargetInitial = "0"

// Rollback reverses the most recent `steps` applied migrations, newest
// version first.
func (e *Executor) Rollback(ctx context.Context, migrations []migration.Migration, steps int) error {
	if steps < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}

	return e.rollback(ctx, migrations, func(applied []tracker.AppliedMigration) ([]tracker.AppliedMigration, error) {
		return applied[:min(steps, len(applied))], nil
	})
}

// RollbackToVersion reverses all migrations applied after the target
// version, leaving the target itself applied. TargetInitial reverts all.
func (e *Executor) RollbackToVersion(ctx context.Context, migrations []migration.Migration, target string) error {
	return e.rollback(ctx, migrations, func(applied []tracker.AppliedMigration) ([]tracker.AppliedMigration, error) {
		found := target == TargetInitial

		var selected []tracker.AppliedMigration

		for _, a := range applied {
			switch {
			case a.Version == target:
				found = true
			case a.Version > target:
				selected = append(selected, a)
			}
		}

		if !found {
			return nil, fmt.Errorf("rollback target %s: %w", target, tracker.ErrMigrationNotFound)
		}

		return selected, nil
	})
}

// selectFunc picks the versions to revert from the applied list, which is
// sorted newest version first.
type selectFunc func(applied []tracker.AppliedMigration) ([]tracker.AppliedMigration, error)

func (e *Executor) rollback(ctx context.Context, migrations []migration.Migration, selectVersions selectFunc) error {
	lock, err := e.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer lock.Release(ctx) //nolint:errcheck // best-effort release on return

	if err := e.tracker.EnsureTable(ctx); err != nil {
		return err
	}

	applied, err := e.tracker.GetApplied(ctx)
	if err != nil {
		return err
	}

	slices.SortFunc(applied, func(a, b tracker.AppliedMigration) int {
		return cmp.Compare(b.Version, a.Version)
	})

	selected, err := selectVersions(applied)
	if err != nil {
		return err
	}

	targets, err := resolveTargets(migrations, selected)
	if err != nil {
		return err
	}

	for _, m := range targets {
		if e.dryRun {
			e.fireProgress(ProgressEvent{Migration: m, Direction: schema.Backward, Status: StatusPlanned})
			continue
		}

		if err := e.revertOne(ctx, m); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) revertOne(ctx context.Context, m *migration.Migration) error {
	return e.run(ctx, m, schema.Backward, func(ctx context.Context, t MigrationTracker, _ time.Duration) error {
		if err := t.RemoveApplied(ctx, m.Version); err != nil {
			return fmt.Errorf("removing migration %s from ledger: %w", m.Version, err)
		}

		return nil
	})
}

// resolveTargets maps ledger rows to local migrations. Every target is
// checked before anything runs, so a set that cannot be fully reverted is
// rejected up front.
func resolveTargets(migrations []migration.Migration, selected []tracker.AppliedMigration) ([]*migration.Migration, error) {
	byVersion := make(map[string]*migration.Migration, len(migrations))
	for i := range migrations {
		byVersion[migrations[i].Version] = &migrations[i]
	}

	targets := make([]*migration.Migration, 0, len(selected))

	for _, a := range selected {
		m, ok := byVersion[a.Version]
		if !ok {
			return nil, fmt.Errorf("migration %s: %w", a.Version, ErrMigrationFileMissing)
		}

		if m.Checksum != a.Checksum {
			return nil, fmt.Errorf(
				"migration %s: %w: stored=%s computed=%s",
				a.Version, tracker.ErrChecksumMismatch, a.Checksum, m.Checksum,
			)
		}

		if !m.Reversible() {
			return nil, fmt.Errorf("migration %s: %w", a.Version, ErrNoDownMigration)
		}

		targets = append(targets, m)
	}

	return targets, nil
}
