package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// filesCmd prints the file composition of a snapshot.
var filesCmd = &cobra.Command{
	Use:   "files [input]",
	Short: "Show the files and line counts visible at the cursor.",
	Long: `List every file that has at least one line at the cursor position.

Files are ordered by line count, largest first, and each row carries its dominant
language. With --units, each row also lists its lines with their language color,
in the same order the replay view draws them.

The cursor defaults to the end of the history.

Examples:
  # Files as of the latest commit
  timelapse files

  # Files halfway through the history
  timelapse files --at 50

  # Files two weeks before the newest commit, with per-line units
  timelapse files --at "2 weeks ago" --units --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot list files", core.ExecuteFiles)
	},
}
