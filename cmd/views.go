package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/report"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// viewsCmd queries the per-endpoint SQL views.
var viewsCmd = &cobra.Command{
	Use:   "views [view]",
	Short: "Query the per-endpoint views over stored snapshots",
	Long: `Query one of the SQL views the store maintains over raw snapshots.

Each endpoint has a view projecting the snapshot timestamp, postcode,
a headline metric extracted from the payload, and quality metadata:
  v_prices - average_price
  v_rents  - average_rent
  v_demand - total_for_sale
  v_crime  - crimes_last_12m

With no argument, lists the available views.

Examples:
  # Price history for one postcode
  propsnap views v_prices --postcode "NR1 1EF"

  # Recent rent rows as CSV
  propsnap views v_rents --since 2026-06-01T00:00:00Z --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("Available views: %s\n", strings.Join(snapstore.ViewNames(), ", "))
			return
		}
		view := args[0]

		headline, err := snapstore.HeadlineColumn(view)
		if err != nil {
			contract.LogFatal("Unknown view", err)
		}

		filter := snapstore.ViewFilter{
			Postcode: viper.GetString("postcode"),
			Limit:    viper.GetInt("limit"),
		}
		if since := viper.GetString("since"); since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				contract.LogFatal("Invalid --since value, want ISO8601", err)
			}
			filter.Since = t
		}

		rows, err := snapstore.Active().QueryView(view, filter)
		if err != nil {
			contract.LogFatal("View query failed", err)
		}

		w, closer, err := outputWriter()
		if err != nil {
			contract.LogFatal("Failed to open output", err)
		}
		defer closer()
		if err := report.WriteViewRows(w, headline, rows, cfg.Output); err != nil {
			contract.LogFatal("Failed to write view rows", err)
		}
	},
}
