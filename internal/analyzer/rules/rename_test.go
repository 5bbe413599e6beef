package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/analyzer/rules"
)

func TestRenameRule_Check(t *testing.T) {
	t.Parallel()

	rule := rules.NewRenameRule()
	assert.Equal(t, "rename", rule.ID())

	runRuleCases(t, rule, []ruleCase{
		{name: "RENAME TABLE is MEDIUM", sql: "ALTER TABLE people RENAME TO persons;", wantCount: 1, wantSeverity: analyzer.Medium, wantTable: "people"},
		{name: "RENAME COLUMN is LOW", sql: "ALTER TABLE people RENAME COLUMN birthday TO born_on;", wantCount: 1, wantSeverity: analyzer.Low, wantTable: "people"},
		{name: "RENAME INDEX is not flagged", sql: "ALTER INDEX idx_p_family_name RENAME TO idx_people_family_name;"},
		{name: "non-RENAME statement", sql: "CREATE TABLE people (id BIGINT);"},
	})
}

func TestRenameRule_noPlatformRestriction(t *testing.T) {
	t.Parallel()

	findings := check(t, rules.NewRenameRule(), "ALTER TABLE people RENAME COLUMN birthday TO born_on;")
	assert.Empty(t, findings[0].Platforms)
	assert.Contains(t, findings[0].Message, "birthday")
}
