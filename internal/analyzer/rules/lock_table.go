package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// LockTableRule flags explicit LOCK TABLE statements.
type LockTableRule struct{}

// NewLockTableRule creates a new LockTableRule.
func NewLockTableRule() *LockTableRule { return &LockTableRule{} }

// ID returns the rule identifier.
func (r *LockTableRule) ID() string { return "lock-table" }

// Check examines a statement for explicit LOCK TABLE.
func (r *LockTableRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	lock := stmt.GetStmt().GetLockStmt()
	if lock == nil {
		return nil
	}

	var findings []analyzer.Finding

	for _, rel := range lock.GetRelations() {
		rv := rel.GetRangeVar()
		if rv == nil {
			continue
		}

		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.High,
			Table:      analyzer.TableName(rv),
			Message:    "LOCK TABLE does not exist on SQLite, and MySQL's LOCK TABLES commits the migration transaction",
			Suggestion: "Leave locking to the database and to the runner's migration lock",
			Platforms:  nonPostgres,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}
