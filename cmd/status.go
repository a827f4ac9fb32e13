package cmd

import (
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/report"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/spf13/cobra"
)

// statusCmd shows store diagnostics.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the snapshot store.

Displays:
- Database path and file size
- Total stored responses, cohorts, and cohort members
- Row counts per endpoint
- Timestamp of the most recent snapshot

Examples:
  propsnap status
  propsnap status --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := snapstore.Active().Status()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		w, closer, err := outputWriter()
		if err != nil {
			contract.LogFatal("Failed to open output", err)
		}
		defer closer()
		if err := report.WriteStatus(w, status, cfg.Output); err != nil {
			contract.LogFatal("Failed to write status", err)
		}
	},
}
