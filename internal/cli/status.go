package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/config"
	"github.com/fossabot/person-db-skeleton/internal/executor"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display every known version as applied, pending, modified (applied with
a different checksum) or missing (applied but absent from the migration set).`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	statusCmd.Flags().String("format", config.DefaultFormat, "output format (text, json)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	format := cfg.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}

	out := cmd.OutOrStdout()

	sorted, err := loadAndSortMigrations(cfg.MigrationsDir, io.Discard)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	log := newLogger(cmd)

	// Keep stdout clean for JSON consumers.
	conn, err := connectDB(ctx, cfg, cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}
	defer conn.Close()

	entries, err := conn.executor(cfg, log).Status(ctx, sorted)
	if err != nil {
		return err
	}

	switch format {
	case config.FormatJSON:
		return printStatusJSON(out, entries)
	case config.FormatText:
		return printStatusText(out, entries)
	default:
		return fmt.Errorf("%w: unknown format %q", config.ErrInvalidConfig, format)
	}
}

func printStatusJSON(w io.Writer, entries []executor.StatusEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}

	return nil
}

func printStatusText(w io.Writer, entries []executor.StatusEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No migrations found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATE\tAPPLIED AT\tDURATION")

	pending := 0

	for _, e := range entries {
		appliedAt, duration := "-", "-"
		if e.AppliedAt != nil {
			appliedAt = e.AppliedAt.UTC().Format(time.RFC3339)
			duration = (time.Duration(e.DurationMs) * time.Millisecond).String()
		}

		if e.State == executor.StatePending {
			pending++
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Version, e.Name, e.State, appliedAt, duration)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}

	fmt.Fprintf(w, "\n%d of %d migration(s) pending.\n", pending, len(entries))

	return nil
}
