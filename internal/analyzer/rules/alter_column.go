package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// AlterColumnTypeRule flags ALTER COLUMN ... TYPE, which SQLite lacks and
// MySQL spells MODIFY COLUMN.
type AlterColumnTypeRule struct{}

// NewAlterColumnTypeRule creates a new AlterColumnTypeRule.
func NewAlterColumnTypeRule() *AlterColumnTypeRule { return &AlterColumnTypeRule{} }

// ID returns the rule identifier.
func (r *AlterColumnTypeRule) ID() string { return "alter-column-type" }

// Check examines a statement for ALTER COLUMN TYPE.
func (r *AlterColumnTypeRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_AlterColumnType)

	findings := make([]analyzer.Finding, 0, len(cmds))

	for _, cmd := range cmds {
		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.High,
			Table:      analyzer.TableName(alt.GetRelation()),
			Message:    "ALTER COLUMN " + cmd.GetName() + " TYPE fails on SQLite and MySQL",
			Suggestion: "Add a new column, copy the data across, then drop the old column",
			Platforms:  nonPostgres,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}

// SetNotNullRule flags ALTER COLUMN ... SET NOT NULL.
type SetNotNullRule struct{}

// NewSetNotNullRule creates a new SetNotNullRule.
func NewSetNotNullRule() *SetNotNullRule { return &SetNotNullRule{} }

// ID returns the rule identifier.
func (r *SetNotNullRule) ID() string { return "set-not-null" }

// Check examines a statement for SET NOT NULL.
func (r *SetNotNullRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	alt, cmds := alterCmds(stmt, pg_query.AlterTableType_AT_SetNotNull)

	findings := make([]analyzer.Finding, 0, len(cmds))

	for _, cmd := range cmds {
		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.High,
			Table:      analyzer.TableName(alt.GetRelation()),
			Message:    "SET NOT NULL on " + cmd.GetName() + " fails on SQLite and MySQL, and scans every row on PostgreSQL",
			Suggestion: "Declare the column NOT NULL with a DEFAULT when it is created",
			Platforms:  nonPostgres,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}
