package cmd

import (
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/ingest"
	"github.com/rentfold/propsnap/internal/report"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/spf13/cobra"
)

// ingestCmd loads snapshot files from a local inbox directory.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest JSON snapshot files from an inbox directory",
	Long: `Load previously captured JSON snapshots from a local directory and
store them with the same fingerprint dedup the fetch path uses.

Files are processed in name order. Each file is classified by its name
(<endpoint>_<postcode-with-dashes>_<stamp>.json) or, failing that, by
the shape of its payload. Processed files move to the archive directory,
duplicates included; malformed or unclassifiable files stay in the inbox
and are reported.

Examples:
  # Ingest the default inbox/ into the store
  propsnap ingest

  # Custom directories, tagged run
  propsnap ingest --inbox /data/drops --archive /data/done --run-id backfill-q3`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ing := ingest.New(snapstore.Active(), cfg.InboxDir, cfg.ArchiveDir, cfg.RunID)
		summary, err := ing.Ingest(rootCtx)
		if err != nil {
			contract.LogFatal("Ingest run failed", err)
		}
		w, closer, err := outputWriter()
		if err != nil {
			contract.LogFatal("Failed to open output", err)
		}
		defer closer()
		if err := report.WriteIngestSummary(w, summary, cfg.Output, cfg.UseColors); err != nil {
			contract.LogFatal("Failed to write ingest summary", err)
		}
	},
}
