package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora/v3"
	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/analyzer/rules"
	"github.com/fossabot/person-db-skeleton/internal/config"
)

var checkCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "check [migrations-dir]",
	Short: "Check migrations for unsafe or non-portable statements",
	Long: `Check the up scripts of every migration for statements that lose data,
fail on one of MySQL, PostgreSQL or SQLite, or are split badly by the
statement batcher. No database connection is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	checkCmd.Flags().String("format", config.DefaultFormat, "output format (text, json)")
	checkCmd.Flags().Bool("fail-on-high", false, "exit with non-zero code if high/critical findings exist")
	rootCmd.AddCommand(checkCmd)
}

// errHighSeverityFindings is returned when --fail-on-high is set and high/critical findings exist.
var errHighSeverityFindings = errors.New("high or critical severity findings detected")

// checkReport is the JSON shape of one migration's findings.
type checkReport struct {
	Version     string             `json:"version"`
	Name        string             `json:"name"`
	MaxSeverity analyzer.Severity  `json:"max_severity"`
	Findings    []analyzer.Finding `json:"findings"`
}

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry()))
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := AppConfig.MigrationsDir
	if len(args) > 0 {
		dir = args[0]
	}

	format := AppConfig.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}

	out := cmd.OutOrStdout()

	sorted, err := loadAndSortMigrations(dir, out)
	if err != nil || sorted == nil {
		return err
	}

	results := newAnalyzer().AnalyzeAll(sorted)

	var hasHighOrCritical bool

	switch format {
	case config.FormatJSON:
		hasHighOrCritical, err = printCheckJSON(out, results)
		if err != nil {
			return err
		}
	case config.FormatText:
		noColor, _ := cmd.Flags().GetBool("no-color")
		hasHighOrCritical = printCheckResults(out, aurora.NewAurora(!noColor && isTerminal(out)), results)
	default:
		return fmt.Errorf("%w: unknown format %q", config.ErrInvalidConfig, format)
	}

	failOnHigh, _ := cmd.Flags().GetBool("fail-on-high")
	if failOnHigh && hasHighOrCritical {
		return errHighSeverityFindings
	}

	return nil
}

func printCheckResults(out io.Writer, au aurora.Aurora, results []analyzer.AnalysisResult) bool {
	totalFindings := 0
	hasHighOrCritical := false

	for _, r := range results {
		if len(r.Findings) == 0 {
			continue
		}

		fmt.Fprintf(out, "\n=== %s_%s ===\n", r.Migration.Version, r.Migration.Name)

		for _, f := range r.Findings {
			fmt.Fprintf(out, "  [%s] %s\n", f.Severity.Colorize(au), f.Message)

			if f.Table != "" {
				fmt.Fprintf(out, "    Table:     %s\n", f.Table)
			}

			fmt.Fprintf(out, "    Rule:      %s\n", f.Rule)

			if len(f.Platforms) > 0 {
				fmt.Fprintf(out, "    Platforms: %s\n", strings.Join(f.Platforms, ", "))
			}

			if f.Statement != "" {
				fmt.Fprintf(out, "    SQL:       %s\n", f.Statement)
			}

			fmt.Fprintf(out, "    Fix:       %s\n\n", f.Suggestion)
		}

		totalFindings += len(r.Findings)

		if r.HasHighOrCritical() {
			hasHighOrCritical = true
		}
	}

	if totalFindings == 0 {
		fmt.Fprintln(out, "No unsafe or non-portable statements detected.")
	} else {
		fmt.Fprintf(out, "Found %d finding(s) across %d migration(s).\n", totalFindings, countMigrationsWithFindings(results))
	}

	return hasHighOrCritical
}

func printCheckJSON(out io.Writer, results []analyzer.AnalysisResult) (bool, error) {
	reports := make([]checkReport, 0, len(results))
	hasHighOrCritical := false

	for _, r := range results {
		if len(r.Findings) == 0 {
			continue
		}

		reports = append(reports, checkReport{
			Version:     r.Migration.Version,
			Name:        r.Migration.Name,
			MaxSeverity: r.MaxSeverity,
			Findings:    r.Findings,
		})

		if r.HasHighOrCritical() {
			hasHighOrCritical = true
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(reports); err != nil {
		return false, fmt.Errorf("encoding findings: %w", err)
	}

	return hasHighOrCritical, nil
}

func countMigrationsWithFindings(results []analyzer.AnalysisResult) int {
	count := 0

	for _, r := range results {
		if len(r.Findings) > 0 {
			count++
		}
	}

	return count
}
