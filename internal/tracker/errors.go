package tracker

import "errors"

// ErrMigrationNotFound indicates no record exists for the given migration version.
var ErrMigrationNotFound = errors.New("migration not found in ledger")

// ErrChecksumMismatch indicates the recorded checksum differs from the expected one.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// ErrTableCreation indicates the ledger table could not be created.
var ErrTableCreation = errors.New("creating ledger table")

// ErrInvalidTableName indicates a ledger table name that is not a plain identifier.
var ErrInvalidTableName = errors.New("invalid ledger table name")
