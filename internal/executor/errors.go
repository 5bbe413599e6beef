package executor

import "errors"

// ErrExecutionFailed indicates a migration failed to execute.
var ErrExecutionFailed = errors.New("migration execution failed")

// ErrNoDownMigration indicates a rollback target has no backward transformation.
var ErrNoDownMigration = errors.New("migration has no down script")

// ErrMigrationFileMissing indicates an applied version has no local definition.
var ErrMigrationFileMissing = errors.New("applied migration missing from migration set")

// ErrInvalidSteps indicates a rollback step count below one.
var ErrInvalidSteps = errors.New("rollback steps must be at least 1")
