package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// convertCmd rewrites a line table as Parquet.
var convertCmd = &cobra.Command{
	Use:   "convert [input] --output-file lines.parquet",
	Short: "Convert a line table to Parquet.",
	Long: `Load a line table and write its valid records to a Parquet file.

The result can be passed back as input to every other command, and loads faster
than the CSV for large histories. Rows rejected while loading are not written.

Examples:
  timelapse convert loc.csv --output-file loc.parquet
  timelapse stats loc.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot convert input", core.ExecuteConvert)
	},
}
