package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// selectCmd brushes a rectangle of the scatter plot.
var selectCmd = &cobra.Command{
	Use:   "select [input] --brush x0,y0,x1,y1",
	Short: "Select the commits inside a rectangle of the scatter plot.",
	Long: `Apply a brush rectangle to the scatter plot at the cursor and summarize the selection.

The rectangle is given in plot coordinates, where x runs along time and y along the
hour of day. Only commits visible at the cursor can be selected.

Prints:
- The selection count
- The language breakdown of the selected lines
- Stats over the selected commits

Examples:
  # Everything in the plot
  timelapse select --brush 0,0,10000,10000

  # A region, as of the middle of the history
  timelapse select --at 50 --brush 100,40,400,200 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot select commits", core.ExecuteSelect)
	},
}
