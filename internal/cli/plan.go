package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/analyzer"
	"github.com/fossabot/person-db-skeleton/internal/executor"
)

var planCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "plan",
	Short: "Show execution plan for pending migrations",
	Long: `Display the pending migrations in execution order together with the
session statements, the exact statements that apply would send, and any
unsafe or non-portable statement check would report.`,
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	out := cmd.OutOrStdout()

	sorted, err := loadAndSortMigrations(cfg.MigrationsDir, out)
	if err != nil || sorted == nil {
		return err
	}

	ctx := commandContext(cmd)
	log := newLogger(cmd)

	conn, err := connectDB(ctx, cfg, out, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	steps, err := conn.executor(cfg, log).Plan(ctx, sorted)
	if err != nil {
		return err
	}

	printPlan(out, steps, newAnalyzer())

	return nil
}

func printPlan(w io.Writer, steps []executor.PlanStep, a *analyzer.Analyzer) {
	if len(steps) == 0 {
		fmt.Fprintln(w, "Nothing to apply.")
		return
	}

	for i, s := range steps {
		fmt.Fprintf(w, "\n%d. %s_%s", i+1, s.Migration.Version, s.Migration.Name)

		if s.OutsideTransaction {
			fmt.Fprint(w, " (outside transaction)")
		}

		fmt.Fprintln(w)

		for _, stmt := range s.Session {
			fmt.Fprintf(w, "   session: %s\n", stmt)
		}

		if s.Migration.Code != nil {
			fmt.Fprintln(w, "   (Go migration, statements determined at run time)")
			continue
		}

		for _, stmt := range s.Statements {
			fmt.Fprintf(w, "   %s;\n", stmt)
		}

		for _, f := range a.Analyze(s.Migration).Findings {
			printPlanFinding(w, f)
		}
	}

	fmt.Fprintf(w, "\n%d migration(s) pending.\n", len(steps))
}

func printPlanFinding(w io.Writer, f analyzer.Finding) {
	fmt.Fprintf(w, "   ! [%s] %s", f.Severity, f.Message)

	if len(f.Platforms) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(f.Platforms, ", "))
	}

	fmt.Fprintln(w)
}
