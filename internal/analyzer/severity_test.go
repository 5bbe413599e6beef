package analyzer_test

import (
	"encoding/json"
	"testing"

	"github.com/logrusorgru/aurora/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
)

func TestSeverity_String_allLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity analyzer.Severity
		expected string
	}{
		{analyzer.Safe, "SAFE"},
		{analyzer.Low, "LOW"},
		{analyzer.Medium, "MEDIUM"},
		{analyzer.High, "HIGH"},
		{analyzer.Critical, "CRITICAL"},
		{analyzer.Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestSeverity_Colorize(t *testing.T) {
	t.Parallel()

	colored := aurora.NewAurora(true)
	plain := aurora.NewAurora(false)

	assert.Equal(t, aurora.Red("HIGH").String(), analyzer.High.Colorize(colored).String())
	assert.Equal(t, aurora.Green("SAFE").String(), analyzer.Safe.Colorize(colored).String())
	assert.NotEqual(t, "CRITICAL", analyzer.Critical.Colorize(colored).String())

	for _, s := range []analyzer.Severity{analyzer.Safe, analyzer.Low, analyzer.Medium, analyzer.High, analyzer.Critical} {
		assert.Equal(t, s.String(), s.Colorize(plain).String())
	}
}

func TestSeverity_MarshalJSON_usesLabel(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(analyzer.Finding{Rule: "drop-table", Severity: analyzer.Critical, Message: "m"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"severity":"CRITICAL"`)
}
