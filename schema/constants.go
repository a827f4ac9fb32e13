package schema

// Custom string types for type safety.
type (
	// Endpoint represents a provider endpoint family.
	Endpoint string

	// Source represents the ingestion path a record arrived through.
	Source string

	// ItemState represents the processing state of one batch work item.
	ItemState string

	// OutputMode represents the format of the output.
	OutputMode string
)

// All focus endpoint families supported.
const (
	PricesEndpoint Endpoint = "prices"
	RentsEndpoint  Endpoint = "rents"
	DemandEndpoint Endpoint = "demand"
	CrimeEndpoint  Endpoint = "crime"
)

// All ingestion sources supported.
const (
	APISource  Source = "api"  // live fetch from the provider
	FileSource Source = "file" // replay from the inbox directory
)

// All work item states, in lifecycle order.
const (
	PendingState     ItemState = "pending"
	FetchingState    ItemState = "fetching"
	FetchedState     ItemState = "fetched"
	FetchFailedState ItemState = "fetch_failed"
	SavedState       ItemState = "saved"
	DuplicateState   ItemState = "duplicate"
	DoneState        ItemState = "done"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// DefaultLocationType is the location type assumed for cohort members
// that do not declare one.
const DefaultLocationType = "postcode"

// AllEndpoints returns the focus endpoint families in their canonical order.
var AllEndpoints = []Endpoint{PricesEndpoint, RentsEndpoint, DemandEndpoint, CrimeEndpoint}

// ValidEndpoints lists all valid endpoint families.
var ValidEndpoints = map[Endpoint]struct{}{
	PricesEndpoint: {},
	RentsEndpoint:  {},
	DemandEndpoint: {},
	CrimeEndpoint:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}
