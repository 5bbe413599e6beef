package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// RenameRule flags table and column renames, which break every caller
// still using the old name.
type RenameRule struct{}

// NewRenameRule creates a new RenameRule.
func NewRenameRule() *RenameRule { return &RenameRule{} }

// ID returns the rule identifier.
func (r *RenameRule) ID() string { return "rename" }

// Check examines a statement for RENAME TABLE or RENAME COLUMN.
func (r *RenameRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	rename := stmt.GetStmt().GetRenameStmt()
	if rename == nil {
		return nil
	}

	switch rename.GetRenameType() {
	case pg_query.ObjectType_OBJECT_TABLE:
		return []analyzer.Finding{{
			Rule:       r.ID(),
			Severity:   analyzer.Medium,
			Table:      analyzer.TableName(rename.GetRelation()),
			Message:    "RENAME TABLE breaks application code that references the old name",
			Suggestion: "Create the new table, copy the rows, and drop the old one once callers have moved",
			StmtIndex:  ctx.StmtIndex,
		}}
	case pg_query.ObjectType_OBJECT_COLUMN:
		return []analyzer.Finding{{
			Rule:       r.ID(),
			Severity:   analyzer.Low,
			Table:      analyzer.TableName(rename.GetRelation()),
			Message:    "RENAME COLUMN " + rename.GetSubname() + " needs MySQL 8.0 or SQLite 3.25 and breaks callers using the old name",
			Suggestion: "Add the new column, backfill it, and drop the old column in a later migration",
			StmtIndex:  ctx.StmtIndex,
		}}
	default:
		return nil
	}
}
