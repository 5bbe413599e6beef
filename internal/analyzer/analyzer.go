// Package analyzer checks migration up scripts for statements that are
// unsafe or behave differently across MySQL, PostgreSQL and SQLite.
package analyzer

import (
	"fmt"

	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/parser"
	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// Analyzer-level rule IDs.
const (
	RuleStatementSplit = "statement-split"
	RulePostgresSyntax = "postgres-syntax"
)

const statementDisplayLen = 80

// Option configures the Analyzer.
type Option func(*Analyzer)

// Analyzer runs registered rules against each statement the batcher would
// send for a migration.
type Analyzer struct {
	registry *Registry
	parseFn  func(string) (*parser.ParseResult, error)
}

// New creates a new Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: NewRegistry(),
		parseFn:  parser.Parse,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithRegistry sets a custom rule registry.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithParser overrides the SQL parser function (useful for testing).
func WithParser(fn func(string) (*parser.ParseResult, error)) Option {
	return func(a *Analyzer) { a.parseFn = fn }
}

// Analyze checks the up script of m. Go-coded migrations have no script
// and always come back clean. A statement the PostgreSQL grammar rejects
// is reported as a finding, not an error, since MySQL-only scripts are
// legitimate.
func (a *Analyzer) Analyze(m *migration.Migration) *AnalysisResult {
	result := &AnalysisResult{Migration: m, MaxSeverity: Safe}

	if m.Code != nil {
		return result
	}

	stmts := schema.Split(m.UpSQL)

	if f := a.checkSplit(m.UpSQL, len(stmts)); f != nil {
		result.add(*f)
	}

	for i, stmt := range stmts {
		parsed, err := a.parseFn(stmt)
		if err != nil {
			result.add(Finding{
				Rule:       RulePostgresSyntax,
				Severity:   Medium,
				Statement:  TruncateSQL(stmt, statementDisplayLen),
				Message:    fmt.Sprintf("statement is not valid PostgreSQL: %v", err),
				Suggestion: "Keep dialect-specific statements out of scripts meant for every platform",
				Platforms:  []string{schema.PlatformPostgres},
				StmtIndex:  i,
			})

			continue
		}

		ctx := &RuleContext{Migration: m, StmtIndex: i, Statement: stmt}

		for _, raw := range parsed.Stmts {
			for _, rule := range a.registry.Rules() {
				for _, f := range rule.Check(raw, ctx) {
					if f.Statement == "" {
						f.Statement = TruncateSQL(stmt, statementDisplayLen)
					}

					result.add(f)
				}
			}
		}
	}

	return result
}

// checkSplit compares the batcher's naive split with the PostgreSQL
// grammar. A mismatch means a separator sits inside a literal, a comment
// or a routine body, and the batcher will send broken fragments.
func (a *Analyzer) checkSplit(script string, split int) *Finding {
	parsed, err := a.parseFn(script)
	if err != nil || len(parsed.Stmts) == split {
		return nil
	}

	return &Finding{
		Rule:     RuleStatementSplit,
		Severity: High,
		Message: fmt.Sprintf("script splits into %d statement(s) on %q but parses as %d",
			split, schema.Separator, len(parsed.Stmts)),
		Suggestion: "Move the separator out of literals and comments, or use a Go migration",
		Platforms:  []string{schema.PlatformMySQL, schema.PlatformPostgres, schema.PlatformSQLite},
	}
}

func (r *AnalysisResult) add(f Finding) {
	if f.Severity > r.MaxSeverity {
		r.MaxSeverity = f.Severity
	}

	r.Findings = append(r.Findings, f)
}

// AnalyzeAll analyzes multiple migrations and returns results for each.
func (a *Analyzer) AnalyzeAll(migrations []migration.Migration) []AnalysisResult {
	results := make([]AnalysisResult, 0, len(migrations))

	for i := range migrations {
		results = append(results, *a.Analyze(&migrations[i]))
	}

	return results
}
