package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/parser"
)

// ruleCase is one statement and what a rule should say about it.
type ruleCase struct {
	name          string
	sql           string
	wantCount     int
	wantSeverity  analyzer.Severity
	wantTable     string
	wantPlatforms []string
}

// check runs rule against the single statement in sql.
func check(t *testing.T, rule analyzer.Rule, sql string) []analyzer.Finding {
	t.Helper()

	result, err := parser.Parse(sql)
	require.NoError(t, err)
	require.Len(t, result.Stmts, 1)

	return rule.Check(result.Stmts[0], &analyzer.RuleContext{StmtIndex: 3, Statement: sql})
}

func runRuleCases(t *testing.T, rule analyzer.Rule, tests []ruleCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			findings := check(t, rule, tt.sql)
			require.Len(t, findings, tt.wantCount)

			if tt.wantCount == 0 {
				return
			}

			f := findings[0]
			require.Equal(t, rule.ID(), f.Rule)
			require.Equal(t, tt.wantSeverity, f.Severity)
			require.Equal(t, 3, f.StmtIndex)

			if tt.wantTable != "" {
				require.Equal(t, tt.wantTable, f.Table)
			}

			if tt.wantPlatforms != nil {
				require.ElementsMatch(t, tt.wantPlatforms, f.Platforms)
			}
		})
	}
}
