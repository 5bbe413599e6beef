package analyzer

import "github.com/fossabot/person-db-skeleton/internal/migration"

// Finding is a single portability or safety problem in a migration script.
type Finding struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Table      string   `json:"table,omitempty"`
	Statement  string   `json:"statement,omitempty"` // truncated for display
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Platforms  []string `json:"platforms,omitempty"` // platforms the problem shows up on
	StmtIndex  int      `json:"stmt_index"`          // index into schema.Split(UpSQL)
}

// AnalysisResult holds all findings for a single migration.
type AnalysisResult struct {
	Migration   *migration.Migration
	Findings    []Finding
	MaxSeverity Severity // Highest severity across all findings
}

// HasHighOrCritical returns true if any finding is High or Critical severity.
func (r *AnalysisResult) HasHighOrCritical() bool {
	return r.MaxSeverity >= High
}

// TruncateSQL truncates a SQL string to maxLen characters for display.
func TruncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen || maxLen < 4 { //nolint:mnd // room for the ellipsis
		return sql
	}

	return sql[:maxLen-3] + "..."
}
