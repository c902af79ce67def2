package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// statsCmd prints corpus and snapshot summary metrics.
var statsCmd = &cobra.Command{
	Use:   "stats [input]",
	Short: "Summarize the whole history and, with --at, one snapshot of it.",
	Long: `Print summary metrics over the loaded line table.

Corpus stats always cover every loaded record:
- Total commits, files and lines
- Longest and average line length
- Largest and average file length, and average file depth
- The busiest period of day and the busiest weekday

When --at is given, the same metrics are also printed for the snapshot at that cursor.

Examples:
  # Stats for ./loc.csv
  timelapse stats

  # Compare the corpus with its state a month before the newest commit
  timelapse stats --at "1 month ago"

  # Machine-readable output
  timelapse stats data/loc.csv --at 25 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot compute stats", core.ExecuteStats)
	},
}
