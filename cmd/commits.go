package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// commitsCmd prints the commits visible at the cursor.
var commitsCmd = &cobra.Command{
	Use:   "commits [input]",
	Short: "List the commits visible at the cursor with their plot positions.",
	Long: `List every commit at or before the cursor, oldest first.

Each row shows the commit id, author, datetime, hour of day and line count,
together with the position and radius of its mark on the scatter plot.

Examples:
  # All commits
  timelapse commits

  # Commits in the first quarter of the history, as CSV
  timelapse commits --at 25 --output csv --output-file commits.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot list commits", core.ExecuteCommits)
	},
}
