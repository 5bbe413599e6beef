package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fossabot/person-db-skeleton/internal/config"
	"github.com/fossabot/person-db-skeleton/internal/migration"
)

// errMigrationsDirRequired is returned by create when only the bundled skeleton is configured.
var errMigrationsDirRequired = errors.New( //nolint:gochecknoglobals // sentinel error
	"migrations directory is required (set --migrations-dir, " + config.EnvMigrationsDir + ", or migrations_dir in config)",
)

// now is replaced in tests.
var now = time.Now //nolint:gochecknoglobals // test seam

var createCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "create <name>",
	Short: "Create an empty up/down migration pair",
	Long: `Create <timestamp>_<name>.up.sql and <timestamp>_<name>.down.sql in the
migrations directory. Existing files are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	dir := AppConfig.MigrationsDir
	if dir == "" {
		return errMigrationsDirRequired
	}

	res, err := migration.Create(dir, args[0], now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", res.UpPath)
	fmt.Fprintf(out, "Created %s\n", res.DownPath)

	return nil
}
