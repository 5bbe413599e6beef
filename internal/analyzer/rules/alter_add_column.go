package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// AddColumnRule flags ADD COLUMN definitions that fail on populated tables
// or use defaults some platforms reject.
type AddColumnRule struct{}

// NewAddColumnRule creates a new AddColumnRule.
func NewAddColumnRule() *AddColumnRule { return &AddColumnRule{} }

// ID returns the rule identifier.
func (r *AddColumnRule) ID() string { return "add-column" }

// Check examines a statement for risky ADD COLUMN definitions.
func (r *AddColumnRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AddColumn)

	var findings []analyzer.Finding

	for _, cmd := range cmds {
		col := cmd.GetDef().GetColumnDef()
		if col == nil {
			continue
		}

		table := analyzer.TableName(alt.GetRelation())
		def := columnConstraint(col, pg_query.ConstrType_CONSTR_DEFAULT)
		notNull := col.GetIsNotNull() || columnConstraint(col, pg_query.ConstrType_CONSTR_NOTNULL) != nil

		switch {
		case notNull && def == nil:
			findings = append(findings, analyzer.Finding{
				Rule:       r.ID(),
				Severity:   analyzer.High,
				Table:      table,
				Message:    "ADD COLUMN " + col.GetColname() + " NOT NULL without DEFAULT fails once the table has rows",
				Suggestion: "Give the column a constant DEFAULT, or add it nullable and backfill",
				Platforms:  allPlatforms,
				StmtIndex:  ctx.StmtIndex,
			})
		case def != nil && isVolatileDefault(def.GetRawExpr()):
			findings = append(findings, analyzer.Finding{
				Rule:       r.ID(),
				Severity:   analyzer.Medium,
				Table:      table,
				Message:    "ADD COLUMN " + col.GetColname() + " with a non-constant DEFAULT is rejected by SQLite and needs parentheses on MySQL",
				Suggestion: "Use a constant DEFAULT and backfill computed values with UPDATE",
				Platforms:  nonPostgres,
				StmtIndex:  ctx.StmtIndex,
			})
		}
	}

	return findings
}

// isVolatileDefault reports whether a DEFAULT expression is anything other
// than a literal or a cast of one. Function calls such as now() count as
// volatile.
func isVolatileDefault(node *pg_query.Node) bool {
	if node == nil {
		return false
	}

	switch n := node.GetNode().(type) {
	case *pg_query.Node_AConst:
		return false
	case *pg_query.Node_TypeCast:
		return n.TypeCast.GetArg().GetAConst() == nil
	default:
		return true
	}
}
