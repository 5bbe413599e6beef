package migration

import "errors"

// ErrDuplicateVersion indicates two migrations in one set share a version.
var ErrDuplicateVersion = errors.New("duplicate migration version")

// ErrInvalidName indicates a migration name that cannot be used in a filename.
var ErrInvalidName = errors.New("invalid migration name")

// ErrFileExists indicates a scaffolded migration file would overwrite an existing one.
var ErrFileExists = errors.New("migration file already exists")
