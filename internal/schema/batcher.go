package schema

import (
	"context"
	"strings"
)

// Separator terminates statements in a script. Literal semicolons inside
// strings, comments or procedure bodies are not recognized as such.
const Separator = ";"

// Split breaks a script into trimmed, non-empty statements in source order.
func Split(script string) []string {
	parts := strings.Split(script, Separator)
	statements := make([]string, 0, len(parts))

	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}

		statements = append(statements, stmt)
	}

	return statements
}

// ExecScript sends every statement of script to conn in order. The first
// error is returned as-is and nothing after it runs.
func ExecScript(ctx context.Context, conn Connection, script string) error {
	return ExecAll(ctx, conn, Split(script))
}

// ExecAll sends statements to conn in order, stopping at the first error.
func ExecAll(ctx context.Context, conn Connection, statements []string) error {
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
