package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// Migration is one versioned schema revision, either loaded from a pair of
// SQL files or backed by Go code.
type Migration struct {
	Version  string // "001" or "20240101120000", extracted from filename
	Name     string // "create_people", extracted from filename
	UpSQL    string // Contents of the .up.sql file
	DownSQL  string // Contents of the .down.sql file (empty if none)
	Checksum string // SHA-256 hex digest of UpSQL, or of the code fingerprint
	FilePath string // Path to the .up.sql file, empty for code migrations

	// Code replaces the scripts when set.
	Code schema.Migration
}

// FromCode wraps a Go-coded migration. The fingerprint feeds the checksum
// and must change whenever the forward behavior changes.
func FromCode(code schema.Migration, name, fingerprint string) Migration {
	return Migration{
		Version:  code.ID(),
		Name:     name,
		Checksum: ComputeChecksum(fingerprint),
		Code:     code,
	}
}

// ComputeChecksum returns the SHA-256 hex digest of the given SQL string.
func ComputeChecksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])
}

// ID implements schema.Migration.
func (m Migration) ID() string { return m.Version }

// Up implements schema.Migration.
func (m Migration) Up(ctx context.Context, conn schema.Connection) error {
	if m.Code != nil {
		return m.Code.Up(ctx, conn)
	}

	return schema.ExecScript(ctx, conn, m.UpSQL)
}

// Down implements schema.Migration.
func (m Migration) Down(ctx context.Context, conn schema.Connection) error {
	if m.Code != nil {
		return m.Code.Down(ctx, conn)
	}

	if !m.Reversible() {
		return fmt.Errorf("migration %s: %w", m.Version, schema.ErrIrreversible)
	}

	return schema.ExecScript(ctx, conn, m.DownSQL)
}

// BeforeUp forwards to the Go code's hook, if any.
func (m Migration) BeforeUp(ctx context.Context, conn schema.Connection) error {
	if h, ok := m.Code.(schema.BeforeUpHook); ok {
		return h.BeforeUp(ctx, conn)
	}

	return nil
}

// BeforeDown forwards to the Go code's hook, if any.
func (m Migration) BeforeDown(ctx context.Context, conn schema.Connection) error {
	if h, ok := m.Code.(schema.BeforeDownHook); ok {
		return h.BeforeDown(ctx, conn)
	}

	return nil
}

// Reversible reports whether the migration has a backward transformation.
func (m Migration) Reversible() bool {
	return m.Code != nil || m.DownSQL != ""
}

// Statements returns the statements the batcher would send for direction d.
// Code migrations return nil since their statements are only known at run time.
func (m Migration) Statements(d schema.Direction) []string {
	if m.Code != nil {
		return nil
	}

	if d == schema.Backward {
		return schema.Split(m.DownSQL)
	}

	return schema.Split(m.UpSQL)
}
