package rules

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// DropTableRule flags DROP TABLE and TRUNCATE in an up script.
type DropTableRule struct{}

// NewDropTableRule creates a new DropTableRule.
func NewDropTableRule() *DropTableRule { return &DropTableRule{} }

// ID returns the rule identifier.
func (r *DropTableRule) ID() string { return "drop-table" }

// Check examines a statement for DROP TABLE or TRUNCATE.
func (r *DropTableRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	switch node := stmt.GetStmt().GetNode().(type) {
	case *pg_query.Node_DropStmt:
		return r.checkDrop(node.DropStmt, ctx)
	case *pg_query.Node_TruncateStmt:
		return r.checkTruncate(node.TruncateStmt, ctx)
	default:
		return nil
	}
}

func (r *DropTableRule) checkDrop(drop *pg_query.DropStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	if drop == nil || drop.GetRemoveType() != pg_query.ObjectType_OBJECT_TABLE {
		return nil
	}

	msg := "DROP TABLE in an up script deletes every row, and the down script cannot bring them back"
	if drop.GetMissingOk() {
		msg = "DROP TABLE IF EXISTS in an up script deletes every row, and the down script cannot bring them back"
	}

	return []analyzer.Finding{{
		Rule:       r.ID(),
		Severity:   analyzer.Critical,
		Table:      strings.Join(dropTableNames(drop), ", "),
		Message:    msg,
		Suggestion: "Take a backup first, or rename the table and drop it in a later release",
		Platforms:  allPlatforms,
		StmtIndex:  ctx.StmtIndex,
	}}
}

func (r *DropTableRule) checkTruncate(trunc *pg_query.TruncateStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	if trunc == nil {
		return nil
	}

	var tables []string

	for _, rel := range trunc.GetRelations() {
		if rv := rel.GetRangeVar(); rv != nil {
			tables = append(tables, analyzer.TableName(rv))
		}
	}

	return []analyzer.Finding{{
		Rule:       r.ID(),
		Severity:   analyzer.Critical,
		Table:      strings.Join(tables, ", "),
		Message:    "TRUNCATE removes all rows, commits implicitly on MySQL and does not exist on SQLite",
		Suggestion: "Use DELETE FROM, and only after taking a backup",
		Platforms:  allPlatforms,
		StmtIndex:  ctx.StmtIndex,
	}}
}

// dropTableNames reads the table names out of a DROP statement, whose
// objects are lists of name parts.
func dropTableNames(drop *pg_query.DropStmt) []string {
	var names []string

	for _, obj := range drop.GetObjects() {
		var parts []string

		for _, item := range obj.GetList().GetItems() {
			if s := item.GetString_().GetSval(); s != "" {
				parts = append(parts, s)
			}
		}

		if len(parts) > 0 {
			names = append(names, strings.Join(parts, "."))
		}
	}

	return names
}
