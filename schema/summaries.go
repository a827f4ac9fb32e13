package schema

import "time"

// EndpointTally holds per-endpoint outcome counts for one run.
type EndpointTally struct {
	Fetched    int `json:"fetched"`
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Failures   int `json:"failures"`
}

// ItemResult records the final state of one (endpoint, postcode) work
// item. Duplicate marks items that passed through the duplicate-skip
// state on their way to done.
type ItemResult struct {
	Endpoint  Endpoint  `json:"endpoint"`
	Postcode  string    `json:"postcode"`
	State     ItemState `json:"state"`
	Duplicate bool      `json:"duplicate,omitempty"`
	RecordID  int64     `json:"record_id,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// RunSummary is the end-of-batch report for one orchestration run.
// Every run ends with one, even when nothing new was saved.
type RunSummary struct {
	RunID      string                      `json:"run_id"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	ByEndpoint map[Endpoint]*EndpointTally `json:"by_endpoint"`
	Items      []ItemResult                `json:"items"`
}

// NewRunSummary returns an empty summary for the given run identifier.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:      runID,
		StartedAt:  time.Now().UTC(),
		ByEndpoint: make(map[Endpoint]*EndpointTally),
	}
}

// Tally returns the counter bucket for an endpoint, creating it on first use.
func (s *RunSummary) Tally(ep Endpoint) *EndpointTally {
	t, ok := s.ByEndpoint[ep]
	if !ok {
		t = &EndpointTally{}
		s.ByEndpoint[ep] = t
	}
	return t
}

// Totals sums the per-endpoint tallies.
func (s *RunSummary) Totals() EndpointTally {
	var total EndpointTally
	for _, t := range s.ByEndpoint {
		total.Fetched += t.Fetched
		total.Saved += t.Saved
		total.Duplicates += t.Duplicates
		total.Failures += t.Failures
	}
	return total
}

// IngestFailure records one file that could not be processed.
type IngestFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// IngestSummary is the end-of-batch report for one file replay pass.
type IngestSummary struct {
	Processed  int             `json:"processed"`
	Saved      int             `json:"saved"`
	Duplicates int             `json:"duplicates"`
	Archived   int             `json:"archived"`
	Failures   []IngestFailure `json:"failures"`
}

// StoreStatus reports the state of the backing store for diagnostics.
type StoreStatus struct {
	Path           string             `json:"path"`
	SizeBytes      int64              `json:"size_bytes"`
	ResponseRows   int64              `json:"response_rows"`
	CohortRows     int64              `json:"cohort_rows"`
	MemberRows     int64              `json:"member_rows"`
	LastSnapshot   *time.Time         `json:"last_snapshot,omitempty"`
	RowsByEndpoint map[Endpoint]int64 `json:"rows_by_endpoint"`
}
