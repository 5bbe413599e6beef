package schema

import (
	"context"
	"fmt"
)

// State is the lifecycle position of a Unit in one direction.
type State int

// Unit states. Applied is the terminal forward state, Reverted the terminal
// backward one.
const (
	StatePending State = iota
	StateSessionPrepared
	StateExecuting
	StateApplied
	StateReverted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSessionPrepared:
		return "session-prepared"
	case StateExecuting:
		return "executing"
	case StateApplied:
		return "applied"
	case StateReverted:
		return "reverted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Direction selects the forward or backward transformation.
type Direction int

// Directions.
const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "down"
	}

	return "up"
}

// Unit drives a Migration through session preparation and execution,
// tracking state separately for each direction. A Unit is not safe for
// concurrent use.
type Unit struct {
	migration Migration
	profiles  Profiles
	forward   State
	backward  State
}

// NewUnit wraps m. A nil profiles table means DefaultProfiles.
func NewUnit(m Migration, profiles Profiles) *Unit {
	if profiles == nil {
		profiles = DefaultProfiles()
	}

	return &Unit{migration: m, profiles: profiles}
}

// ID returns the wrapped migration's version.
func (u *Unit) ID() string { return u.migration.ID() }

// Migration returns the wrapped migration.
func (u *Unit) Migration() Migration { return u.migration }

// State reports the current state for direction d.
func (u *Unit) State(d Direction) State {
	if d == Backward {
		return u.backward
	}

	return u.forward
}

// SessionStatements returns the bootstrap statements this unit issues on
// platform before running.
func (u *Unit) SessionStatements(platform string) []string {
	return u.profiles.Statements(platform)
}

// PrepareForward bootstraps the session for a forward run, then calls the
// migration's BeforeUp hook if it has one.
func (u *Unit) PrepareForward(ctx context.Context, conn Connection) error {
	return u.prepare(ctx, conn, Forward)
}

// ApplyForward runs the migration's Up. It fails with ErrNotPrepared unless
// PrepareForward succeeded first.
func (u *Unit) ApplyForward(ctx context.Context, conn Connection) error {
	return u.apply(ctx, conn, Forward)
}

// PrepareBackward bootstraps the session for a backward run, then calls the
// migration's BeforeDown hook if it has one.
func (u *Unit) PrepareBackward(ctx context.Context, conn Connection) error {
	return u.prepare(ctx, conn, Backward)
}

// ApplyBackward runs the migration's Down. It fails with ErrNotPrepared
// unless PrepareBackward succeeded first.
func (u *Unit) ApplyBackward(ctx context.Context, conn Connection) error {
	return u.apply(ctx, conn, Backward)
}

func (u *Unit) prepare(ctx context.Context, conn Connection, d Direction) error {
	u.set(d, StatePending)

	stmts := u.profiles.Statements(conn.PlatformName())
	if err := ExecAll(ctx, conn, stmts); err != nil {
		return fmt.Errorf("%w on %s: %w", ErrSessionSetup, conn.PlatformName(), err)
	}

	if err := u.runHook(ctx, conn, d); err != nil {
		return err
	}

	u.set(d, StateSessionPrepared)

	return nil
}

func (u *Unit) runHook(ctx context.Context, conn Connection, d Direction) error {
	switch d {
	case Forward:
		if h, ok := u.migration.(BeforeUpHook); ok {
			return h.BeforeUp(ctx, conn)
		}
	case Backward:
		if h, ok := u.migration.(BeforeDownHook); ok {
			return h.BeforeDown(ctx, conn)
		}
	}

	return nil
}

func (u *Unit) apply(ctx context.Context, conn Connection, d Direction) error {
	if u.State(d) != StateSessionPrepared {
		return fmt.Errorf("%s %s: %w", u.ID(), d, ErrNotPrepared)
	}

	u.set(d, StateExecuting)

	var err error
	if d == Forward {
		err = u.migration.Up(ctx, conn)
	} else {
		err = u.migration.Down(ctx, conn)
	}

	if err != nil {
		u.set(d, StatePending)
		return err
	}

	if d == Forward {
		u.set(d, StateApplied)
	} else {
		u.set(d, StateReverted)
	}

	return nil
}

func (u *Unit) set(d Direction, s State) {
	if d == Backward {
		u.backward = s
		return
	}

	u.forward = s
}
