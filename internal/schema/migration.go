package schema

import "context"

// Migration is one versioned schema revision.
type Migration interface {
	// ID is the version identifier; versions order lexicographically.
	ID() string
	// Up applies the revision.
	Up(ctx context.Context, conn Connection) error
	// Down reverses it.
	Down(ctx context.Context, conn Connection) error
}

// BeforeUpHook is implemented by migrations that need extra work after the
// session bootstrap of a forward run.
type BeforeUpHook interface {
	BeforeUp(ctx context.Context, conn Connection) error
}

// BeforeDownHook is the backward counterpart of BeforeUpHook.
type BeforeDownHook interface {
	BeforeDown(ctx context.Context, conn Connection) error
}

// Func adapts plain functions to the Migration interface. A nil DownFn makes
// the migration irreversible.
type Func struct {
	Version string
	UpFn    func(ctx context.Context, conn Connection) error
	DownFn  func(ctx context.Context, conn Connection) error
}

// ID implements Migration.
func (f Func) ID() string { return f.Version }

// Up implements Migration.
func (f Func) Up(ctx context.Context, conn Connection) error {
	if f.UpFn == nil {
		return nil
	}

	return f.UpFn(ctx, conn)
}

// Down implements Migration.
func (f Func) Down(ctx context.Context, conn Connection) error {
	if f.DownFn == nil {
		return ErrIrreversible
	}

	return f.DownFn(ctx, conn)
}

// Script returns a Func that runs the given up and down scripts through the
// batcher. An empty down script makes it irreversible.
func Script(version, up, down string) Func {
	f := Func{
		Version: version,
		UpFn: func(ctx context.Context, conn Connection) error {
			return ExecScript(ctx, conn, up)
		},
	}

	if down != "" {
		f.DownFn = func(ctx context.Context, conn Connection) error {
			return ExecScript(ctx, conn, down)
		}
	}

	return f
}
