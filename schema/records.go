package schema

import "time"

// RecordDraft is the unit handed to the store for persistence. The
// fingerprint is computed by the caller; the store only enforces the
// uniqueness rule on (endpoint, postcode, fingerprint).
type RecordDraft struct {
	Timestamp     time.Time
	Endpoint      Endpoint
	Source        Source
	RawJSON       []byte
	Fingerprint   string
	RequestParams string // JSON-encoded request parameters
	Postcode      string
	RunID         string
	SourceFile    string
	EstimatedCost float64
}

// ResponseRecord is one fully persisted fact row, as read back from the store.
type ResponseRecord struct {
	ID            int64
	Timestamp     time.Time
	Endpoint      Endpoint
	Source        Source
	RawJSON       string
	Fingerprint   string
	RequestParams string
	Postcode      string
	RunID         string
	SourceFile    string
	EstimatedCost float64
	ProcessedAt   *time.Time
	ProcessError  string
	Bedrooms      *int64
	RequestType   string
	ResponseBytes *int64
	DataPoints    *int64
	QualityFlag   string
}

// Enrichment holds the denormalized helper fields populated after a
// successful save. It never carries raw payload or fingerprint data.
type Enrichment struct {
	Bedrooms      *int64
	RequestType   string
	ResponseBytes int64
	DataPoints    int64
	QualityFlag   string
	ProcessError  string
}

// ViewRow is one row of a read-only endpoint view. Every view projects
// the same shape: timestamp, postcode, the endpoint's headline metric,
// size helpers, and the data-quality flag.
type ViewRow struct {
	Timestamp     time.Time `json:"timestamp"`
	Postcode      string    `json:"postcode"`
	Headline      *float64  `json:"headline_metric"`
	ResponseBytes *int64    `json:"response_bytes"`
	DataPoints    *int64    `json:"data_points"`
	QualityFlag   string    `json:"quality_flag"`
}

// CohortDefinition is one externally authored location grouping. It is
// the source of truth that sync mirrors into the dimension tables.
type CohortDefinition struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Members     []CohortMember `yaml:"members"`
}

// CohortMember is one location inside a cohort definition.
type CohortMember struct {
	Type string `yaml:"type"` // defaults to "postcode" when empty
	Key  string `yaml:"key"`
}

// CohortSyncResult summarizes one reconciliation pass.
type CohortSyncResult struct {
	CohortsUpserted int `json:"cohorts_upserted"`
	MembersUpserted int `json:"members_upserted"`
	MembersNew      int `json:"members_new"`
}

// CohortInfo is a read-back summary of one persisted cohort.
type CohortInfo struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	MemberCount int
	UpdatedAt   time.Time
}
