package analyzer_test

import (
	"context"
	"errors"
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/analyzer/rules"
	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/parser"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/skeleton"
)

// stubRule is a test rule that always returns a finding.
type stubRule struct{}

func (r *stubRule) ID() string { return "test-stub" }

func (r *stubRule) Check(_ *pg_query.RawStmt, ctx *analyzer.RuleContext) []analyzer.Finding {
	return []analyzer.Finding{{
		Rule:      r.ID(),
		Severity:  analyzer.High,
		Message:   "stub finding",
		StmtIndex: ctx.StmtIndex,
	}}
}

func stubAnalyzer() *analyzer.Analyzer {
	registry := analyzer.NewRegistry()
	registry.Register(&stubRule{})

	return analyzer.New(analyzer.WithRegistry(registry))
}

func TestAnalyze_noRules_noFindings(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "create_people",
		UpSQL:   "CREATE TABLE people (id BIGINT NOT NULL, PRIMARY KEY (id));",
	}

	result := analyzer.New().Analyze(m)
	assert.Empty(t, result.Findings)
	assert.Equal(t, analyzer.Safe, result.MaxSeverity)
	assert.Same(t, m, result.Migration)
}

func TestAnalyze_withStubRule_returnsFindings(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "create_people",
		UpSQL:   "CREATE TABLE people (id BIGINT);",
	}

	result := stubAnalyzer().Analyze(m)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, analyzer.High, result.MaxSeverity)
	assert.Equal(t, "test-stub", result.Findings[0].Rule)
	assert.Equal(t, "CREATE TABLE people (id BIGINT)", result.Findings[0].Statement)
}

func TestAnalyze_multiStatement_indexesFollowBatcher(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "multi",
		UpSQL:   "CREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);",
	}

	result := stubAnalyzer().Analyze(m)
	require.Len(t, result.Findings, 2)
	assert.Equal(t, 0, result.Findings[0].StmtIndex)
	assert.Equal(t, 1, result.Findings[1].StmtIndex)
}

func TestAnalyze_emptyMigration_noFindings(t *testing.T) {
	t.Parallel()

	result := stubAnalyzer().Analyze(&migration.Migration{Version: "001", Name: "empty"})
	assert.Empty(t, result.Findings)
	assert.Equal(t, analyzer.Safe, result.MaxSeverity)
}

func TestAnalyze_codeMigration_skipped(t *testing.T) {
	t.Parallel()

	m := migration.FromCode(schema.Func{
		Version: "002",
		UpFn:    func(context.Context, schema.Connection) error { return nil },
	}, "seed", "DROP TABLE people;")

	result := stubAnalyzer().Analyze(&m)
	assert.Empty(t, result.Findings)
}

func TestAnalyze_mysqlOnlyStatement_reportedNotFailed(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "mysql_engine",
		UpSQL:   "CREATE TABLE a (id INT) ENGINE=InnoDB;\nCREATE TABLE b (id INT);",
	}

	result := stubAnalyzer().Analyze(m)
	require.Len(t, result.Findings, 2)

	f := result.Findings[0]
	assert.Equal(t, analyzer.RulePostgresSyntax, f.Rule)
	assert.Equal(t, analyzer.Medium, f.Severity)
	assert.Equal(t, []string{schema.PlatformPostgres}, f.Platforms)
	assert.Equal(t, 0, f.StmtIndex)

	assert.Equal(t, "test-stub", result.Findings[1].Rule)
	assert.Equal(t, 1, result.Findings[1].StmtIndex)
}

func TestAnalyze_separatorInLiteral_flagged(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "seed",
		UpSQL:   "INSERT INTO genders (id, name) VALUES (1, 'a;b');",
	}

	result := analyzer.New().Analyze(m)
	require.NotEmpty(t, result.Findings)

	f := result.Findings[0]
	assert.Equal(t, analyzer.RuleStatementSplit, f.Rule)
	assert.Equal(t, analyzer.High, f.Severity)
	assert.Contains(t, f.Message, "2 statement(s)")
	assert.Contains(t, f.Message, "parses as 1")
	assert.True(t, result.HasHighOrCritical())
}

func TestAnalyze_trailingComment_flagged(t *testing.T) {
	t.Parallel()

	m := &migration.Migration{
		Version: "001",
		Name:    "commented",
		UpSQL:   "CREATE TABLE a (id INT);\n-- done",
	}

	result := analyzer.New().Analyze(m)
	require.NotEmpty(t, result.Findings)
	assert.Equal(t, analyzer.RuleStatementSplit, result.Findings[0].Rule)
}

func TestAnalyze_customParser(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	calls := 0

	a := analyzer.New(analyzer.WithParser(func(string) (*parser.ParseResult, error) {
		calls++
		return nil, errBoom
	}))

	result := a.Analyze(&migration.Migration{Version: "001", UpSQL: "SELECT 1; SELECT 2;"})

	// One call for the whole script, one per statement.
	assert.Equal(t, 3, calls)
	require.Len(t, result.Findings, 2)
	assert.Contains(t, result.Findings[0].Message, "boom")
}

func TestAnalyzeAll_multipleMigrations_correctResultCount(t *testing.T) {
	t.Parallel()

	migrations := []migration.Migration{
		{Version: "001", Name: "first", UpSQL: "CREATE TABLE a (id INT);"},
		{Version: "002", Name: "second", UpSQL: "DROP TABLE a;"},
	}

	results := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry())).AnalyzeAll(migrations)
	require.Len(t, results, 2)
	assert.Equal(t, analyzer.Safe, results[0].MaxSeverity)
	assert.Equal(t, analyzer.Critical, results[1].MaxSeverity)
	assert.Equal(t, "002", results[1].Migration.Version)
}

func TestAnalyze_bundledSkeleton_isPortable(t *testing.T) {
	t.Parallel()

	migrations, err := skeleton.Migrations()
	require.NoError(t, err)

	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry()))

	for _, r := range a.AnalyzeAll(migrations) {
		assert.Empty(t, r.Findings, "%s_%s", r.Migration.Version, r.Migration.Name)
	}
}
