// Package cmd defines the command-line interface for timelapse.
package cmd

import (
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(narrativeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("input", "", "Path to the line table (csv or parquet); defaults to "+contract.DefaultInputFile)
	rootCmd.PersistentFlags().String("url-prefix", contract.DefaultURLPrefix, "Prefix prepended to commit ids to build commit URLs")
	rootCmd.PersistentFlags().String("at", "", "Cursor position: progress 0-100, ISO8601, or 'N units ago' from the newest commit")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of file rows to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("strict", false, "Fail on the first malformed row instead of skipping it")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostics such as rejected rows and cache hits")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Parse cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of selectCmd to Viper
	selectCmd.Flags().String("brush", "", "Brush rectangle in plot coordinates: x0,y0,x1,y1")
	if err := viper.BindPFlags(selectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding select flags", err)
	}

	// Bind all flags of filesCmd to Viper
	filesCmd.Flags().Bool("units", false, "Include the per-line units of each file row")
	if err := viper.BindPFlags(filesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding files flags", err)
	}

	// Bind all flags of narrativeCmd to Viper
	narrativeCmd.Flags().Int("step", -1, "Narrative step to enter (-1 lists all steps)")
	if err := viper.BindPFlags(narrativeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding narrative flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
