package cmd

import (
	"fmt"

	"github.com/rentfold/propsnap/internal/cohort"
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/report"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/spf13/cobra"
)

// cohortsCmd groups cohort management subcommands.
var cohortsCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Manage named postcode cohorts",
	Long: `Manage named groups of postcodes used to drive fetch batches.

Cohorts are defined in a YAML file and synced into the store. Syncing is
additive: members removed from the file are kept in the store so that
historical fetch runs stay reproducible.

Subcommands:
  sync - Load a cohort definition file into the store
  list - Show stored cohorts and their member counts

Examples:
  # Sync definitions, then fetch a cohort
  propsnap cohorts sync cohorts.yaml
  propsnap fetch --cohort norwich-core --api-key $KEY`,
}

// cohortsSyncCmd loads a YAML cohort definition file into the store.
var cohortsSyncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Sync a YAML cohort definition file into the store",
	Long: `Read cohort definitions from a YAML file and upsert them.

Existing cohorts are updated in place, new members are added, and
members no longer present in the file are left untouched. Re-running
sync with an unchanged file reports zero new members.

Example definition file:
  cohorts:
    - id: norwich-core
      name: Norwich core postcodes
      members:
        - key: "NR1 1EF"
        - key: "NR2 2AB"

Examples:
  propsnap cohorts sync cohorts.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		defs, err := cohort.Load(args[0])
		if err != nil {
			contract.LogFatal("Failed to load cohort definitions", err)
		}
		result, err := snapstore.Active().SyncCohorts(defs)
		if err != nil {
			contract.LogFatal("Failed to sync cohorts", err)
		}
		fmt.Printf("Synced %d cohorts: %d members upserted, %d new.\n",
			result.CohortsUpserted, result.MembersUpserted, result.MembersNew)
	},
}

// cohortsListCmd lists the cohorts stored in the database.
var cohortsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cohorts and their member counts",
	Long: `Show every cohort known to the store with its member count.

Examples:
  propsnap cohorts list
  propsnap cohorts list --output json`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		cohorts, err := snapstore.Active().ListCohorts()
		if err != nil {
			contract.LogFatal("Failed to list cohorts", err)
		}
		w, closer, err := outputWriter()
		if err != nil {
			contract.LogFatal("Failed to open output", err)
		}
		defer closer()
		if err := report.WriteCohorts(w, cohorts, cfg.Output); err != nil {
			contract.LogFatal("Failed to write cohort list", err)
		}
	},
}
