package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/fossabot/person-db-skeleton/internal/config"
	"github.com/fossabot/person-db-skeleton/internal/logger"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// rootCmd is the base command for the persondb CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "persondb",
	Version: version,
	Short:   "Versioned schema migrations for the person/contact database skeleton",
	Long: `persondb applies and reverses the person/contact schema skeleton
(people, emails, addresses, phone numbers and their lookup tables) against
MySQL, PostgreSQL or SQLite, or any directory of versioned SQL migrations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "path to configuration file (.yml, .yaml or .toml)")
	rootCmd.PersistentFlags().String("database-url", "", "mysql://, postgres:// or sqlite:// connection URL")
	rootCmd.PersistentFlags().String("migrations-dir", "", "path to migration files (default: bundled skeleton)")
	rootCmd.PersistentFlags().String("history-table", "", "ledger table name")
	rootCmd.PersistentFlags().Bool("verbose", false, "echo every statement and debug output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// Execute runs the root command and returns the process exit code.
// Called from main.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "persondb:", err)
		return 1
	}

	return 0
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "database-url":
			cfg.DatabaseURL = f.Value.String()
		case "migrations-dir":
			cfg.MigrationsDir = f.Value.String()
		case "history-table":
			cfg.HistoryTable = f.Value.String()
		}
	})
}

// newLogger builds the logger for cmd: colored when stderr is a terminal
// and --no-color is unset, statement echo and debug output with --verbose.
func newLogger(cmd *cobra.Command) logger.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	w := cmd.ErrOrStderr()

	return logger.New(log.New(w, "", 0), !noColor && isTerminal(w), verbose, verbose)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
