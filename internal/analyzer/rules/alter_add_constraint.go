package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// AddConstraintRule flags ALTER TABLE ... ADD CONSTRAINT, which SQLite
// cannot do at all.
type AddConstraintRule struct{}

// NewAddConstraintRule creates a new AddConstraintRule.
func NewAddConstraintRule() *AddConstraintRule { return &AddConstraintRule{} }

// ID returns the rule identifier.
func (r *AddConstraintRule) ID() string { return "add-constraint" }

// Check examines a statement for ADD CONSTRAINT.
func (r *AddConstraintRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AddConstraint)

	var findings []analyzer.Finding

	for _, cmd := range cmds {
		constraint := cmd.GetDef().GetConstraint()
		if constraint == nil {
			continue
		}

		f := analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.High,
			Table:      analyzer.TableName(alt.GetRelation()),
			Message:    "SQLite cannot add a constraint to an existing table",
			Suggestion: "Declare constraints in CREATE TABLE",
			Platforms:  sqliteOnly,
			StmtIndex:  ctx.StmtIndex,
		}

		if constraint.GetSkipValidation() {
			f.Message = "NOT VALID is PostgreSQL-only, and SQLite cannot add a constraint to an existing table"
			f.Platforms = nonPostgres
		}

		findings = append(findings, f)
	}

	return findings
}
