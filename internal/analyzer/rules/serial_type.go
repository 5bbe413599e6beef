package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

//nolint:gochecknoglobals // read-only lookup
var serialTypes = map[string]bool{
	"serial": true, "serial2": true, "serial4": true, "serial8": true,
	"smallserial": true, "bigserial": true,
}

// SerialTypeRule flags the PostgreSQL SERIAL pseudo-types in CREATE TABLE.
type SerialTypeRule struct{}

// NewSerialTypeRule creates a new SerialTypeRule.
func NewSerialTypeRule() *SerialTypeRule { return &SerialTypeRule{} }

// ID returns the rule identifier.
func (r *SerialTypeRule) ID() string { return "serial-type" }

// Check examines CREATE TABLE column types.
func (r *SerialTypeRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	create := stmt.GetStmt().GetCreateStmt()
	if create == nil {
		return nil
	}

	var findings []analyzer.Finding

	for _, elt := range create.GetTableElts() {
		col := elt.GetColumnDef()
		if col == nil || !serialTypes[typeName(col)] {
			continue
		}

		findings = append(findings, analyzer.Finding{
			Rule:       r.ID(),
			Severity:   analyzer.Medium,
			Table:      analyzer.TableName(create.GetRelation()),
			Message:    "column " + col.GetColname() + " uses " + typeName(col) + ", which only PostgreSQL understands",
			Suggestion: "Use INTEGER or BIGINT and assign ids in the application",
			Platforms:  nonPostgres,
			StmtIndex:  ctx.StmtIndex,
		})
	}

	return findings
}
