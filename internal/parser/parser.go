// Package parser inspects PostgreSQL migration scripts.
package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ParseResult holds the parsed AST and original SQL.
type ParseResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// Parse parses a PostgreSQL SQL string and returns the AST.
// Returns an empty result (zero statements) for empty or whitespace-only input.
func Parse(sql string) (*ParseResult, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &ParseResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing SQL: %w", err)
	}

	return &ParseResult{
		Stmts: tree.Stmts,
		SQL:   sql,
	}, nil
}

// RequiresNoTransaction reports whether sql contains a statement PostgreSQL
// refuses to run inside a transaction block, and names the first one.
func RequiresNoTransaction(sql string) (bool, string, error) {
	result, err := Parse(sql)
	if err != nil {
		return false, "", err
	}

	for _, stmt := range result.Stmts {
		if reason := noTransactionReason(stmt.GetStmt()); reason != "" {
			return true, reason, nil
		}
	}

	return false, "", nil
}

func noTransactionReason(node *pg_query.Node) string {
	switch n := node.GetNode().(type) {
	case *pg_query.Node_IndexStmt:
		if n.IndexStmt.GetConcurrent() {
			return "CREATE INDEX CONCURRENTLY"
		}
	case *pg_query.Node_DropStmt:
		if n.DropStmt.GetConcurrent() {
			return "DROP INDEX CONCURRENTLY"
		}
	case *pg_query.Node_ReindexStmt:
		for _, p := range n.ReindexStmt.GetParams() {
			if p.GetDefElem().GetDefname() == "concurrently" {
				return "REINDEX CONCURRENTLY"
			}
		}
	case *pg_query.Node_VacuumStmt:
		return "VACUUM"
	case *pg_query.Node_CreatedbStmt:
		return "CREATE DATABASE"
	}

	return ""
}
