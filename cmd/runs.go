package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/iocache"
	"github.com/huangsam/timelapse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup() error {
	if err := runsMigrateSetup(); err != nil {
		return err
	}

	// No parse caching for runs commands
	if err := iocache.InitStores(schema.NoneBackend, "", cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup resolves the run backend without opening the store, so
// migrations can run against a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := storeBackend("run-backend")
	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for the migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// requireRunStore returns the configured run store or exits when tracking is off.
func requireRunStore(action string) contract.RunStore {
	store := iocache.Manager.GetRunStore()
	if store == nil {
		contract.LogFatal(action, errors.New("run tracking is disabled. Set --run-backend to sqlite, mysql or postgresql"))
	}
	return store
}

// runsCmd focused on run tracking.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded replay runs and their exports",
	Long: `Manage the history of recorded runs.

When a run backend is set, every replay, stats, files, commits, select and narrative
invocation records:
- Run metadata (input, configuration, start and end time)
- The cursor it ended on
- The commits visible at that cursor

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs to Parquet
  clear   - Remove all recorded runs
  migrate - Run database schema migrations`,
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all recorded runs and their commits. This cannot be undone; consider
exporting first.`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseCaching()
		path := sqliteFilePath(cfg.RunDBConnect, contract.GetRunDBFilePath())
		if err := iocache.ClearRuns(cfg.RunBackend, path, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	Long:    `Show the backend, run count, run timestamps and recorded commit count of the run store.`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := requireRunStore("Failed to get run status").GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet",
	Long: `Export all recorded runs and run commits to two Parquet files named after --output-file.

Examples:
  # Writes history.runs.parquet and history.run_commits.parquet
  timelapse runs export --run-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.runs.parquet')"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := requireRunStore("Failed to export run data")
		if err := iocache.ExecuteRunsExport(os.Stdout, store, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  timelapse runs migrate --run-backend sqlite

  # Rollback to the initial state
  timelapse runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
