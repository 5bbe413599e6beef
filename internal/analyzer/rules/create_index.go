package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// CreateIndexRule flags CREATE INDEX options that only PostgreSQL accepts.
type CreateIndexRule struct{}

// NewCreateIndexRule creates a new CreateIndexRule.
func NewCreateIndexRule() *CreateIndexRule { return &CreateIndexRule{} }

// ID returns the rule identifier.
func (r *CreateIndexRule) ID() string { return "create-index" }

// Check examines a statement for CONCURRENTLY and IF NOT EXISTS.
func (r *CreateIndexRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	idx := stmt.GetStmt().GetIndexStmt()
	if idx == nil {
		return nil
	}

	table := analyzer.TableName(idx.GetRelation())

	var findings []analyzer.Finding

	if idx.GetConcurrent() {
		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.Medium,
			Table:      table,
			Message:    "CREATE INDEX CONCURRENTLY is PostgreSQL-only and runs the whole migration outside a transaction",
			Suggestion: "Keep concurrent index builds in their own PostgreSQL-only migration",
			Platforms:  nonPostgres,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	if idx.GetIfNotExists() {
		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.Medium,
			Table:      table,
			Message:    "MySQL does not accept CREATE INDEX IF NOT EXISTS",
			Suggestion: "Drop IF NOT EXISTS; the ledger already keeps the migration from running twice",
			Platforms:  mysqlOnly,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}
