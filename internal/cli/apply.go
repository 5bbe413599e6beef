package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/config"
	"github.com/fossabot/person-db-skeleton/internal/database"
	"github.com/fossabot/person-db-skeleton/internal/executor"
	"github.com/fossabot/person-db-skeleton/internal/logger"
	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/schema"
	"github.com/fossabot/person-db-skeleton/internal/skeleton"
	"github.com/fossabot/person-db-skeleton/internal/tracker"
)

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New( //nolint:gochecknoglobals // sentinel error
	"database URL is required (set --database-url, " + config.EnvDatabaseURL + ", or database_url in config)",
)

var applyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "apply",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations in version order. Each version runs its
session bootstrap, then its forward script inside a transaction together with
its ledger row.`,
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	applyCmd.Flags().Bool("dry-run", false, "show what would be applied without executing")
	applyCmd.Flags().Duration("lock-wait", 0, "how long to wait for another run to release the migration lock")
	applyCmd.Flags().Duration("lock-timeout", 0, "override lock timeout (PostgreSQL, e.g. 10s)")
	applyCmd.Flags().Duration("statement-timeout", 0, "override statement timeout (PostgreSQL, e.g. 5m)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	overrideDurations(cmd, cfg)

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

	applied := 0
	skipped := 0
	planned := 0

	exec := conn.executor(cfg, log,
		executor.WithDryRun(dryRun),
		executor.WithProgressCallback(func(event executor.ProgressEvent) {
			switch event.Status {
			case executor.StatusStarting:
				fmt.Fprintf(out, "  Applying %s_%s ... ", event.Migration.Version, event.Migration.Name)
			case executor.StatusCompleted:
				fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
				applied++
			case executor.StatusSkipped:
				skipped++
			case executor.StatusPlanned:
				fmt.Fprintf(out, "  Would apply %s_%s\n", event.Migration.Version, event.Migration.Name)
				planned++
			case executor.StatusFailed:
				fmt.Fprintf(out, "FAILED\n")
				fmt.Fprintf(out, "    Error: %v\n", event.Error)
			}
		}),
	)

	if dryRun {
		fmt.Fprintln(out, "\n--- DRY RUN (no changes will be made) ---")
	}

	if err := exec.Apply(ctx, sorted); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "\nDry run complete: %d migration(s) would be applied, %d already applied.\n",
			planned, skipped)
	} else {
		fmt.Fprintf(out, "\nApply complete: %d applied, %d skipped.\n", applied, skipped)
	}

	return nil
}

// overrideDurations applies the per-command duration flags that were set.
// Commands without a flag leave the config untouched.
func overrideDurations(cmd *cobra.Command, cfg *config.Config) {
	for name, dst := range map[string]*time.Duration{
		"lock-wait":         &cfg.LockWait,
		"lock-timeout":      &cfg.LockTimeout,
		"statement-timeout": &cfg.StatementTimeout,
	} {
		if cmd.Flags().Lookup(name) != nil && cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetDuration(name)
		}
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// loadAndSortMigrations loads dir, or the bundled skeleton when dir is empty.
// It returns nil, nil when there is nothing to run.
func loadAndSortMigrations(dir string, out io.Writer) ([]migration.Migration, error) {
	var (
		migrations []migration.Migration
		err        error
	)

	if dir == "" {
		migrations, err = skeleton.Migrations()
	} else {
		migrations, err = migration.LoadFromDir(dir)
	}

	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	if len(migrations) == 0 {
		fmt.Fprintln(out, "No migration files found.")
		return nil, nil //nolint:nilnil // nil,nil signals "no migrations, no error"
	}

	return migration.Sort(migrations), nil
}

// dbConn is one open database with the pinned session migrations run on.
type dbConn struct {
	db      *database.DB
	session *database.Session
	tracker *tracker.Tracker
}

func connectDB(ctx context.Context, cfg *config.Config, out io.Writer, log logger.Logger) (*dbConn, error) {
	fmt.Fprintf(out, "Connecting to %s\n", config.RedactURL(cfg.DatabaseURL))

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sess, err := db.Session(ctx, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &dbConn{
		db:      db,
		session: sess,
		tracker: tracker.New(sess.Conn(), sess.PlatformName(), tracker.WithTable(cfg.HistoryTable)),
	}, nil
}

// executor builds an Executor on the session with the configured timeouts
// and session profiles.
func (c *dbConn) executor(cfg *config.Config, log logger.Logger, opts ...executor.Option) *executor.Executor {
	base := []executor.Option{
		executor.WithLockWait(cfg.LockWait),
		executor.WithLockTimeout(cfg.LockTimeout),
		executor.WithStatementTimeout(cfg.StatementTimeout),
		executor.WithProfiles(schema.DefaultProfiles().Merge(cfg.SessionProfiles)),
		executor.WithLogger(log),
	}

	return executor.New(c.session, c.tracker, append(base, opts...)...)
}

func (c *dbConn) Close() {
	_ = c.session.Close()
	_ = c.db.Close()
}
