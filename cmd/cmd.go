// Package cmd defines the command-line interface for propsnap.
package cmd

import (
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(cohortsCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cohorts subcommands to the parent cohorts command
	cohortsCmd.AddCommand(cohortsSyncCmd)
	cohortsCmd.AddCommand(cohortsListCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database file (default ~/.propsnap.db)")
	rootCmd.PersistentFlags().StringP("endpoints", "e", "", "Comma-separated endpoints: prices, rents, demand, crime (default all)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("run-id", "", "Run identifier to stamp on stored rows (default random)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().StringP("postcodes", "p", "", "Comma-separated postcodes to fetch (overrides cohort)")
	fetchCmd.Flags().StringP("cohort", "c", "", "Cohort id whose members should be fetched")
	fetchCmd.Flags().String("default-postcodes", "", "Comma-separated fallback postcodes")
	fetchCmd.Flags().Int("batch-size", 0, "Maximum postcodes per run (0 = no cap)")
	fetchCmd.Flags().Float64("estimated-cost", 0, "Estimated provider cost per call, stamped on stored rows")
	fetchCmd.Flags().String("api-key", "", "Provider API key")
	fetchCmd.Flags().String("api-url", "", "Provider base URL")
	fetchCmd.Flags().String("fetch-timeout", "", "Per-call HTTP timeout (e.g. 30s)")
	fetchCmd.Flags().Int("rate-calls", contract.DefaultRateCalls, "Calls allowed per rate window")
	fetchCmd.Flags().String("rate-window", "10s", "Rate limit window (e.g. 10s)")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("inbox", contract.DefaultInboxDir, "Directory of JSON snapshot files to ingest")
	ingestCmd.Flags().String("archive", contract.DefaultArchiveDir, "Directory to move processed files into")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of viewsCmd to Viper
	viewsCmd.Flags().StringP("postcode", "p", "", "Filter rows to a single postcode")
	viewsCmd.Flags().String("since", "", "Only include rows at or after this time (ISO8601)")
	viewsCmd.Flags().IntP("limit", "l", 0, "Maximum rows to display (0 = no cap)")
	if err := viper.BindPFlags(viewsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding views flags", err)
	}
}
