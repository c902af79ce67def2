package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// replayCmd starts the interactive replay.
var replayCmd = &cobra.Command{
	Use:   "replay [input]",
	Short: "Replay the history interactively in the terminal.",
	Long: `Open an interactive view of the history with a time slider, a commit scatter
plot, summary stats and the file composition at the cursor.

Controls:
  left/right (h/l)    move the slider by 1
  pgup/pgdown (H/L)   move the slider by 10
  home/end (g/G)      jump to the start or the end
  up/down (k/j)       step through the narrative, one commit per step
  n                   show or hide the narrative panel
  mouse drag          brush a region of the scatter plot
  esc                 clear the brush
  ?                   toggle help
  q                   quit

Examples:
  # Replay ./loc.csv from the end of the history
  timelapse replay

  # Start halfway through, without colors
  timelapse replay data/loc.csv --at 50 --color no`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot run replay", core.ExecuteReplay)
	},
}
