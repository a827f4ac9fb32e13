// Package runner expands a work request into throttled fetch calls and
// routes the results to the store.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfold/propsnap/internal/contract"
	"github.com/rentfold/propsnap/internal/enrich"
	"github.com/rentfold/propsnap/internal/fingerprint"
	"github.com/rentfold/propsnap/internal/snapstore"
	"github.com/rentfold/propsnap/schema"
)

// Runner orchestrates one batch of (endpoint, postcode) work items.
type Runner struct {
	store     contract.RecordStore
	postcodes contract.PostcodeSource
	fetcher   contract.Fetcher
	gate      contract.RateGate
	cfg       *contract.Config
}

// New wires a runner from its collaborators.
func New(store contract.RecordStore, postcodes contract.PostcodeSource, fetcher contract.Fetcher, gate contract.RateGate, cfg *contract.Config) *Runner {
	return &Runner{store: store, postcodes: postcodes, fetcher: fetcher, gate: gate, cfg: cfg}
}

// Run executes the batch: endpoints x postcodes, in order, one rate
// permit per fetch. A single item's failure never aborts the batch;
// store write failures do, since they signal a broken schema or disk.
// Re-running the identical batch against unchanged upstream content
// yields zero newly saved rows (all duplicates).
func (r *Runner) Run(ctx context.Context) (*schema.RunSummary, error) {
	postcodes, err := r.resolvePostcodes()
	if err != nil {
		return nil, err
	}
	if len(postcodes) == 0 {
		return nil, errors.New("no postcodes to fetch: set an override, a cohort, or a default pool")
	}

	runID := r.cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	summary := schema.NewRunSummary(runID)
	for _, ep := range r.cfg.Endpoints {
		for _, pc := range postcodes {
			// A batch may be interrupted between items; already
			// completed items stay persisted and a re-run dedups.
			if err := ctx.Err(); err != nil {
				summary.FinishedAt = time.Now().UTC()
				return summary, err
			}

			item, err := r.processItem(ctx, ep, pc, runID)
			tally := summary.Tally(ep)
			switch {
			case item.State == schema.FetchFailedState:
				tally.Failures++
			case item.State == schema.DoneState && item.Duplicate:
				tally.Fetched++
				tally.Duplicates++
			case item.State == schema.DoneState:
				tally.Fetched++
				tally.Saved++
			}
			summary.Items = append(summary.Items, item)
			if err != nil {
				summary.FinishedAt = time.Now().UTC()
				return summary, err
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()
	return summary, nil
}

// processItem walks one work item through its lifecycle. The returned
// error is non-nil only for batch-fatal conditions (store write failure
// or cancellation); per-item failures are folded into the item state.
func (r *Runner) processItem(ctx context.Context, ep schema.Endpoint, pc string, runID string) (schema.ItemResult, error) {
	item := schema.ItemResult{Endpoint: ep, Postcode: pc, State: schema.PendingState}

	if err := r.gate.Acquire(ctx); err != nil {
		item.State = schema.FetchFailedState
		item.Error = err.Error()
		if ctx.Err() != nil {
			return item, ctx.Err()
		}
		return item, nil
	}

	item.State = schema.FetchingState
	params := map[string]string{"postcode": pc}
	raw, err := r.fetcher.Fetch(ctx, ep, params)
	if err != nil {
		item.State = schema.FetchFailedState
		item.Error = err.Error()
		return item, nil
	}
	item.State = schema.FetchedState

	fp, err := fingerprint.Compute(ep, raw)
	if err != nil {
		item.State = schema.FetchFailedState
		item.Error = err.Error()
		return item, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return item, fmt.Errorf("failed to encode request params: %w", err)
	}
	draft := &schema.RecordDraft{
		Timestamp:     time.Now().UTC(),
		Endpoint:      ep,
		Source:        schema.APISource,
		RawJSON:       raw,
		Fingerprint:   fp,
		RequestParams: string(paramsJSON),
		Postcode:      pc,
		RunID:         runID,
		EstimatedCost: r.cfg.EstimatedCost,
	}

	inserted, id, err := r.store.Save(draft)
	if err != nil {
		item.Error = err.Error()
		return item, fmt.Errorf("store write failed for %s/%s: %w", ep, pc, err)
	}
	item.RecordID = id

	if !inserted {
		item.State = schema.DuplicateState
		item.Duplicate = true
	} else {
		item.State = schema.SavedState
		if err := r.store.Enrich(id, enrich.Fields(ep, raw, params)); err != nil {
			if errors.Is(err, snapstore.ErrRecordNotFound) {
				// Enriching a row we just inserted cannot miss; this is
				// an integration error and must surface.
				return item, err
			}
			// Enrichment is best effort; leave the failure on the row.
			_ = r.store.Enrich(id, &schema.Enrichment{ProcessError: err.Error()})
		}
	}

	item.State = schema.DoneState
	return item, nil
}

// resolvePostcodes picks the first non-empty location source: explicit
// override, then cohort members, then the configured default pool. The
// batch-size cap applies after resolution.
func (r *Runner) resolvePostcodes() ([]string, error) {
	pool := r.cfg.Postcodes
	if len(pool) == 0 && r.cfg.Cohort != "" {
		members, err := r.postcodes.CohortMembers(r.cfg.Cohort)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cohort %q: %w", r.cfg.Cohort, err)
		}
		pool = members
	}
	if len(pool) == 0 {
		pool = r.cfg.DefaultPostcodes
	}
	if r.cfg.BatchSize > 0 && len(pool) > r.cfg.BatchSize {
		pool = pool[:r.cfg.BatchSize]
	}
	return pool, nil
}
