package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

func TestRunCheck_bundledSkeleton_clean(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	useSQLite(t, "")

	out, err := run(t, runCheck, map[string]string{"fail-on-high": "true"})
	require.NoError(t, err)
	assert.Contains(t, out, "No unsafe or non-portable statements detected.")
}

func TestRunCheck_dropTable_failOnHigh(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	dir := t.TempDir()
	writeMigration(t, dir, "V001_create_people", "CREATE TABLE people (id BIGINT);", "DROP TABLE people;")
	writeMigration(t, dir, "V002_drop_people", "DROP TABLE people;", "")
	useSQLite(t, dir)

	out, err := run(t, runCheck, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "=== 002_drop_people ===")
	assert.NotContains(t, out, "=== 001_create_people ===")
	assert.Contains(t, out, "[CRITICAL]")
	assert.Contains(t, out, "Rule:      drop-table")
	assert.Contains(t, out, "Platforms: mysql, postgres, sqlite")
	assert.Contains(t, out, "Found 1 finding(s) across 1 migration(s).")

	_, err = run(t, runCheck, map[string]string{"fail-on-high": "true"})
	require.ErrorIs(t, err, errHighSeverityFindings)
}

func TestRunCheck_argOverridesDirectory(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	dir := t.TempDir()
	writeMigration(t, dir, "V001_lock", "LOCK TABLE people;", "")
	useSQLite(t, "")

	out, err := run(t, runCheck, nil, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "lock-table")
}

func TestRunCheck_json(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	dir := t.TempDir()
	writeMigration(t, dir, "V001_people", "CREATE TABLE people (id BIGSERIAL);", "")
	writeMigration(t, dir, "V002_emails", "CREATE TABLE emails (id BIGINT);", "")
	useSQLite(t, dir)

	out, err := run(t, runCheck, map[string]string{"format": "json"})
	require.NoError(t, err)

	var reports []struct {
		Version     string `json:"version"`
		MaxSeverity string `json:"max_severity"`
		Findings    []struct {
			Rule      string   `json:"rule"`
			Platforms []string `json:"platforms"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "001", reports[0].Version)
	assert.Equal(t, analyzer.Medium.String(), reports[0].MaxSeverity)
	require.Len(t, reports[0].Findings, 1)
	assert.Equal(t, "serial-type", reports[0].Findings[0].Rule)
	assert.Equal(t, []string{"mysql", "sqlite"}, reports[0].Findings[0].Platforms)
}

func TestRunCheck_unknownFormat(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	useSQLite(t, "")

	_, err := run(t, runCheck, map[string]string{"format": "yaml"})
	require.Error(t, err)
}

func TestRunPlan_printsFindings(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	dir := t.TempDir()
	writeMigration(t, dir, "V001_people", "CREATE TABLE people (id SERIAL)", "DROP TABLE people")
	useSQLite(t, dir)

	out, err := run(t, runPlan, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE people (id SERIAL);")
	assert.Contains(t, out, "! [MEDIUM] column id uses serial")
	assert.Contains(t, out, "(mysql, sqlite)")
}
