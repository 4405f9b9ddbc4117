package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI       RequestSource = "API"
	RequestSourceWebClient RequestSource = "WEB_CLIENT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAircraftModel CachePrefix = "ACMODEL_"
	CachePrefixScorecard     CachePrefix = "SCORECARD_"
	CachePrefixSimpleAggs    CachePrefix = "SIMPLE_AGGS_"
)

// Upload limits, enforced before any file is processed
const (
	MaxUploadFiles    = 10
	MaxUploadFileSize = 15 << 20 // 15MB per file
)

// MaxDistinctAircraft caps the distinct aircraft types in one save request.
const MaxDistinctAircraft = 100

// HeaderScanLines is how many leading lines are scanned for a header row.
const HeaderScanLines = 5

// SuggestionSampleRows is how many data rows are sent (with the header) to
// the external classifier when asking for rename/removal suggestions.
const SuggestionSampleRows = 5

// Excess-hour floors used by the scorecard
const (
	TotalTimeExcessFloor = 1500
	PICExcessFloor       = 1000
)
