package schema

import "errors"

// ErrNotPrepared indicates an apply was attempted before a successful
// prepare in the same direction.
var ErrNotPrepared = errors.New("migration session not prepared")

// ErrSessionSetup indicates the database rejected a session bootstrap statement.
var ErrSessionSetup = errors.New("session setup failed")

// ErrIrreversible indicates a migration has no backward transformation.
var ErrIrreversible = errors.New("migration is irreversible")
