package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

// VacuumRule flags VACUUM, which no platform runs inside the migration
// transaction.
type VacuumRule struct{}

// NewVacuumRule creates a new VacuumRule.
func NewVacuumRule() *VacuumRule { return &VacuumRule{} }

// ID returns the rule identifier.
func (r *VacuumRule) ID() string { return "vacuum" }

// Check examines a statement for VACUUM.
func (r *VacuumRule) Check(stmt *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	vacuum := stmt.GetStmt().GetVacuumStmt()
	if vacuum == nil || !vacuum.GetIsVacuumcmd() {
		return nil
	}

	f := analyzer.Finding{
		Rule:       r.ID(),
		Severity:   analyzer.Medium,
		Table:      vacuumTable(vacuum),
		Message:    "VACUUM cannot run in a transaction on SQLite and does not exist on MySQL",
		Suggestion: "Run maintenance outside migrations",
		Platforms:  nonPostgres,
		StmtIndex:  ctx.StmtIndex,
	}

	if isVacuumFull(vacuum) {
		f.Severity = analyzer.High
		f.Message = "VACUUM FULL rewrites the table under an exclusive lock, and the statement fails on SQLite and MySQL"
		f.Platforms = allPlatforms
	}

	return []analyzer.Finding{f}
}

func isVacuumFull(v *pg_query.VacuumStmt) bool {
	for _, opt := range v.GetOptions() {
		if opt.GetDefElem().GetDefname() == "full" {
			return true
		}
	}

	return false
}

func vacuumTable(v *pg_query.VacuumStmt) string {
	for _, rel := range v.GetRels() {
		if rv := rel.GetVacuumRelation().GetRelation(); rv != nil {
			return analyzer.TableName(rv)
		}
	}

	return "<all tables>"
}
