package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/analyzer/rules"
	"github.com/fossabot/person-db-skeleton/internal/schema"
)

func TestAlterColumnTypeRule_Check(t *testing.T) {
	t.Parallel()

	rule := rules.NewAlterColumnTypeRule()
	assert.Equal(t, "alter-column-type", rule.ID())

	runRuleCases(t, rule, []ruleCase{
		{
			name:          "ALTER COLUMN TYPE",
			sql:           "ALTER TABLE people ALTER COLUMN given_name TYPE VARCHAR(200);",
			wantCount:     1,
			wantSeverity:  analyzer.High,
			wantTable:     "people",
			wantPlatforms: []string{schema.PlatformMySQL, schema.PlatformSQLite},
		},
		{
			name:      "two columns",
			sql:       "ALTER TABLE people ALTER COLUMN given_name TYPE TEXT, ALTER COLUMN family_name TYPE TEXT;",
			wantCount: 2, wantSeverity: analyzer.High,
		},
		{name: "ADD COLUMN is not flagged", sql: "ALTER TABLE people ADD COLUMN nickname VARCHAR(50);"},
		{name: "non-ALTER statement", sql: "SELECT 1;"},
	})
}

func TestAlterColumnTypeRule_namesColumn(t *testing.T) {
	t.Parallel()

	findings := check(t, rules.NewAlterColumnTypeRule(), "ALTER TABLE people ALTER COLUMN birthday TYPE TIMESTAMP;")
	assert.Contains(t, findings[0].Message, "birthday")
}

func TestSetNotNullRule_Check(t *testing.T) {
	t.Parallel()

	rule := rules.NewSetNotNullRule()
	assert.Equal(t, "set-not-null", rule.ID())

	runRuleCases(t, rule, []ruleCase{
		{
			name:          "SET NOT NULL",
			sql:           "ALTER TABLE people ALTER COLUMN family_name SET NOT NULL;",
			wantCount:     1,
			wantSeverity:  analyzer.High,
			wantTable:     "people",
			wantPlatforms: []string{schema.PlatformMySQL, schema.PlatformSQLite},
		},
		{name: "DROP NOT NULL is not flagged", sql: "ALTER TABLE people ALTER COLUMN family_name DROP NOT NULL;"},
		{name: "SET DEFAULT is not flagged", sql: "ALTER TABLE people ALTER COLUMN family_name SET DEFAULT '';"},
	})
}
