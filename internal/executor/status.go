package executor

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

// Migration states reported by Status.
const (
	StateApplied  = "applied"
	StatePending  = "pending"
	StateModified = "modified"
	StateMissing  = "missing"
)

// StatusEntry describes one version known to the ledger, the migration set,
// or both.
type StatusEntry struct {
	Version    string     `json:"version"`
	Name       string     `json:"name"`
	State      string     `json:"state"`
	AppliedAt  *time.Time `json:"applied_at,omitempty"`
	DurationMs int64      `json:"duration_ms,omitempty"`
}

// PlanStep is one pending migration and the statements it would send.
type PlanStep struct {
	Migration          *migration.Migration
	Session            []string
	Statements         []string
	OutsideTransaction bool
}

// Status compares the ledger with migrations. Entries are sorted by version.
// A modified entry was applied with a different checksum; a missing entry is
// applied but absent from migrations.
func (e *Executor) Status(ctx context.Context, migrations []migration.Migration) ([]StatusEntry, error) {
	if err := e.tracker.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := e.tracker.GetApplied(ctx)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]tracker.AppliedMigration, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	entries := make([]StatusEntry, 0, len(migrations)+len(applied))

	for _, m := range migrations {
		entry := StatusEntry{Version: m.Version, Name: m.Name, State: StatePending}

		if a, ok := byVersion[m.Version]; ok {
			entry.State = StateApplied
			if a.Checksum != m.Checksum {
				entry.State = StateModified
			}

			entry.AppliedAt = &a.AppliedAt
			entry.DurationMs = a.DurationMs

			delete(byVersion, m.Version)
		}

		entries = append(entries, entry)
	}

	for _, a := range byVersion {
		entries = append(entries, StatusEntry{
			Version:    a.Version,
			Name:       a.Name,
			State:      StateMissing,
			AppliedAt:  &a.AppliedAt,
			DurationMs: a.DurationMs,
		})
	}

	slices.SortFunc(entries, func(a, b StatusEntry) int {
		return cmp.Compare(a.Version, b.Version)
	})

	return entries, nil
}

// Plan lists the pending migrations in order with the session bootstrap and
// statements each one would send. Nothing is executed.
func (e *Executor) Plan(ctx context.Context, migrations []migration.Migration) ([]PlanStep, error) {
	if err := e.tracker.EnsureTable(ctx); err != nil {
		return nil, err
	}

	platform := e.session.PlatformName()

	var steps []PlanStep

	for i := range migrations {
		m := &migrations[i]

		skip, err := e.shouldSkip(ctx, m)
		if err != nil {
			return nil, err
		}

		if skip {
			continue
		}

		outside, err := outsideTransaction(platform, m, schema.Forward)
		if err != nil {
			return nil, err
		}

		steps = append(steps, PlanStep{
			Migration:          m,
			Session:            e.profiles.Statements(platform),
			Statements:         m.Statements(schema.Forward),
			OutsideTransaction: outside,
		})
	}

	return steps, nil
}
