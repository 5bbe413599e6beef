package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/analyzer/rules"
	"github.com/fossabot/person-db-skeleton/internal/schema"
)

func TestLockTableRule_Check(t *testing.T) {
	t.Parallel()

	rule := rules.NewLockTableRule()
	assert.Equal(t, "lock-table", rule.ID())

	runRuleCases(t, rule, []ruleCase{
		{
			name:          "LOCK TABLE",
			sql:           "LOCK TABLE people IN ACCESS EXCLUSIVE MODE;",
			wantCount:     1,
			wantSeverity:  analyzer.High,
			wantTable:     "people",
			wantPlatforms: []string{schema.PlatformMySQL, schema.PlatformSQLite},
		},
		{name: "one finding per table", sql: "LOCK TABLE people, emails;", wantCount: 2, wantSeverity: analyzer.High},
		{name: "SELECT is not flagged", sql: "SELECT * FROM people;"},
	})
}
