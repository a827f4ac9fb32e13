package cmd

import (
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/provider"
	"github.com/rentfold/propsnap/internal/report"
	"github.com/rentfold/propsnap/internal/runner"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/rentfold/propsnap/internal/throttle"
	"github.com/spf13/cobra"
)

// fetchCmd pulls fresh snapshots from the provider API.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch snapshots from the provider API for a set of postcodes",
	Long: `Fetch JSON snapshots from the property-data provider for every
(endpoint, postcode) pair in the batch and store them with dedup.

Postcode selection, in priority order:
- --postcodes, an explicit comma-separated list
- --cohort, the members of a synced cohort (see 'propsnap cohorts sync')
- --default-postcodes, a fallback list

Each response is fingerprinted over its stable content, so re-running the
same batch against unchanged provider data inserts nothing new. Calls are
rate limited (default 4 calls per 10s) and a single failed call never
aborts the rest of the batch.

Examples:
  # Fetch all endpoints for two postcodes
  propsnap fetch --postcodes "NR1 1EF,NR2 2AB" --api-key $KEY

  # Fetch prices only for a synced cohort
  propsnap fetch -e prices --cohort norwich-core --api-key $KEY

  # Tag the run for later filtering
  propsnap fetch -p "NR1 1EF" --run-id weekly-2026-08 --estimated-cost 0.02`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := snapstore.Active()
		r := runner.New(
			store,
			store,
			provider.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.FetchTimeout),
			throttle.New(cfg.RateCalls, cfg.RateWindow),
			cfg,
		)
		summary, err := r.Run(rootCtx)
		if err != nil {
			contract.LogFatal("Fetch run failed", err)
		}
		w, closer, err := outputWriter()
		if err != nil {
			contract.LogFatal("Failed to open output", err)
		}
		defer closer()
		if err := report.WriteRunSummary(w, summary, cfg.Output, cfg.UseColors); err != nil {
			contract.LogFatal("Failed to write run summary", err)
		}
	},
}
