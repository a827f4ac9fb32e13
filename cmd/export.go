package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/parquet"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/rentfold/propsnap/schema"
	"github.com/spf13/cobra"
)

// exportCmd exports stored snapshots to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored snapshots to Parquet for analytics",
	Long: `Export stored snapshot rows to Parquet format for analytics tools.

One file is written per endpoint under the --output-file path, which is
treated as a directory (e.g. prices.parquet, rents.parquet). Parquet
files load directly into DuckDB, pandas, and Spark.

Requires: --output-file parameter

Examples:
  # Export everything
  propsnap export --output-file snapshots

  # Query with DuckDB
  duckdb -c "SELECT postcode, ts FROM read_parquet('snapshots/prices.parquet') LIMIT 10"`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.OutputFile == "" {
			contract.LogFatal("Export requires an output path", errors.New("set --output-file"))
		}
		if err := os.MkdirAll(cfg.OutputFile, 0o755); err != nil {
			contract.LogFatal("Failed to create export directory", err)
		}
		store := snapstore.Active()
		for _, ep := range schema.AllEndpoints {
			records, err := store.AllResponses(ep)
			if err != nil {
				contract.LogFatal("Failed to read stored responses", err)
			}
			if len(records) == 0 {
				continue
			}
			path := fmt.Sprintf("%s/%s.parquet", cfg.OutputFile, ep)
			if err := parquet.WriteResponsesParquet(parquet.ConvertResponseRecords(records), path); err != nil {
				contract.LogFatal("Failed to write Parquet file", err)
			}
			fmt.Printf("Wrote %d rows to %s\n", len(records), path)
		}
	},
}
