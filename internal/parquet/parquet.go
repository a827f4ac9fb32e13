// Package parquet exports persisted snapshot data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rentfold/propsnap/schema"
)

// ResponseRow maps the api_responses fact table to a Parquet schema.
type ResponseRow struct {
	// ID is the fact table primary key
	ID int64 `parquet:"id,snappy"`

	// Timestamp is when the snapshot was taken
	Timestamp time.Time `parquet:"ts,snappy"`

	// Endpoint is the provider endpoint family
	Endpoint string `parquet:"endpoint_name,snappy"`

	// Source is the ingestion path (api or file)
	Source string `parquet:"source,snappy"`

	// Postcode is the location the snapshot was taken for
	Postcode string `parquet:"postcode,snappy"`

	// Fingerprint is the content-stable dedup hash
	Fingerprint string `parquet:"fingerprint,snappy"`

	// RunID tags the orchestration run that produced the record (nullable)
	RunID *string `parquet:"run_id,optional,snappy"`

	// SourceFile is the inbox file the record was replayed from (nullable)
	SourceFile *string `parquet:"source_file,optional,snappy"`

	// EstimatedCost is the per-call cost tag carried from the run
	EstimatedCost float64 `parquet:"estimated_cost,snappy"`

	// ProcessedAt is when enrichment completed (nullable)
	ProcessedAt *time.Time `parquet:"processed_at,optional,snappy"`

	// ResponseBytes is the raw payload size helper (nullable)
	ResponseBytes *int64 `parquet:"response_bytes,optional,snappy"`

	// DataPoints is the stable-projection key count helper (nullable)
	DataPoints *int64 `parquet:"data_points,optional,snappy"`

	// QualityFlag is the enrich-time data quality verdict (nullable)
	QualityFlag *string `parquet:"quality_flag,optional,snappy"`

	// RawJSON is the immutable provider payload
	RawJSON string `parquet:"raw_json,snappy"`
}

// ConvertResponseRecords maps store records to their Parquet shape.
func ConvertResponseRecords(records []schema.ResponseRecord) []ResponseRow {
	rows := make([]ResponseRow, 0, len(records))
	for _, rec := range records {
		row := ResponseRow{
			ID:            rec.ID,
			Timestamp:     rec.Timestamp,
			Endpoint:      string(rec.Endpoint),
			Source:        string(rec.Source),
			Postcode:      rec.Postcode,
			Fingerprint:   rec.Fingerprint,
			EstimatedCost: rec.EstimatedCost,
			ProcessedAt:   rec.ProcessedAt,
			ResponseBytes: rec.ResponseBytes,
			DataPoints:    rec.DataPoints,
			RawJSON:       rec.RawJSON,
		}
		if rec.RunID != "" {
			runID := rec.RunID
			row.RunID = &runID
		}
		if rec.SourceFile != "" {
			sourceFile := rec.SourceFile
			row.SourceFile = &sourceFile
		}
		if rec.QualityFlag != "" {
			flag := rec.QualityFlag
			row.QualityFlag = &flag
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteResponsesParquet writes response rows to a Parquet file. The
// schema is inferred from the ResponseRow struct tags.
func WriteResponsesParquet(data []ResponseRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ResponseRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
