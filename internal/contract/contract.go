// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"encoding/json"

	"github.com/rentfold/propsnap/schema"
)

// Fetcher defines the external fetch capability. The orchestrator treats
// it as opaque: parameter validation, timeouts and retry policy all live
// behind this interface.
type Fetcher interface {
	// Fetch performs one provider call and returns the raw payload.
	Fetch(ctx context.Context, endpoint schema.Endpoint, params map[string]string) (json.RawMessage, error)
}

// RecordStore defines the store operations the ingestion paths need.
// This allows the orchestrator and file ingestor to be tested without a
// real database.
type RecordStore interface {
	// Save inserts a draft, silently skipping when the same
	// (endpoint, postcode, fingerprint) already exists. It reports
	// whether a new row was created and the id of the row that holds
	// the content either way.
	Save(draft *schema.RecordDraft) (inserted bool, id int64, err error)

	// Enrich populates the denormalized helper columns and processed_at
	// on an existing row.
	Enrich(id int64, fields *schema.Enrichment) error
}

// PostcodeSource resolves a named cohort into its member location keys.
type PostcodeSource interface {
	CohortMembers(cohortID string) ([]string, error)
}

// RateGate admits one unit of outbound work per call. Acquire blocks
// until a permit is available or the context is done.
type RateGate interface {
	Acquire(ctx context.Context) error
}
