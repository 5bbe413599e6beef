package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/executor"
)

var rollbackCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "rollback",
	Short: "Roll back applied migrations",
	Long: `Roll back previously applied migrations, newest version first, using
their down scripts. Use --target 0 to revert every applied version.`,
	RunE: runRollback,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rollbackCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	rollbackCmd.Flags().String("target", "", "roll back to a specific migration version (0 reverts all)")
	rollbackCmd.Flags().Bool("dry-run", false, "show what would be reverted without executing")
	rollbackCmd.Flags().Duration("lock-wait", 0, "how long to wait for another run to release the migration lock")
	rollbackCmd.MarkFlagsMutuallyExclusive("steps", "target")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	steps, _ := cmd.Flags().GetInt("steps")
	target, _ := cmd.Flags().GetString("target")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	overrideDurations(cmd, cfg)

	if target == "" && steps < 1 {
		return fmt.Errorf("%w: --steps must be at least 1", executor.ErrInvalidSteps)
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

	reverted := 0

	exec := conn.executor(cfg, log,
		executor.WithDryRun(dryRun),
		executor.WithProgressCallback(func(event executor.ProgressEvent) {
			switch event.Status {
			case executor.StatusStarting:
				fmt.Fprintf(out, "  Reverting %s_%s ... ", event.Migration.Version, event.Migration.Name)
			case executor.StatusCompleted:
				fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
				reverted++
			case executor.StatusPlanned:
				fmt.Fprintf(out, "  Would revert %s_%s\n", event.Migration.Version, event.Migration.Name)
				reverted++
			case executor.StatusFailed:
				fmt.Fprintf(out, "FAILED\n")
				fmt.Fprintf(out, "    Error: %v\n", event.Error)
			}
		}),
	)

	if target != "" {
		err = exec.RollbackToVersion(ctx, sorted, target)
	} else {
		err = exec.Rollback(ctx, sorted, steps)
	}

	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "\nDry run complete: %d migration(s) would be reverted.\n", reverted)
	} else {
		fmt.Fprintf(out, "\nRollback complete: %d reverted.\n", reverted)
	}

	return nil
}
