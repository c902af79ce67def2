package cmd

import (
	"github.com/huangsam/timelapse/core"
	"github.com/spf13/cobra"
)

// narrativeCmd lists or enters the narrative steps.
var narrativeCmd = &cobra.Command{
	Use:   "narrative [input]",
	Short: "Walk through the history one commit per step.",
	Long: `Print the narrative steps, one per commit in chronological order.

Without --step, every step is listed with its commit datetime and text.
With --step N, the cursor moves to the datetime of step N and the synchronized
progress and snapshot stats are printed.

Examples:
  # List all steps
  timelapse narrative

  # Enter the first step
  timelapse narrative --step 0 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("Cannot run narrative", core.ExecuteNarrative)
	},
}
