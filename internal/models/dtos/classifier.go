package dtos

// DTOs for the external classification service (LLM/OCR). The service is a
// single-attempt collaborator; malformed responses are fatal for the call.

// ExtractTableResponse carries a scanned document converted to a
// tab-delimited table.
type ExtractTableResponse struct {
	Table string `json:"table"`
}

// KeyColumnGuess locates the two mandatory columns in a table whose header
// did not advertise them, plus the date layout to try first.
type KeyColumnGuess struct {
	DateIndex     int    `json:"date_index"`
	AircraftIndex int    `json:"aircraft_index"`
	DateFormat    string `json:"date_format,omitempty"`
}

// SuggestColumnsRequest is the header + sample payload sent when asking for
// rename/removal suggestions.
type SuggestColumnsRequest struct {
	Headers []string   `json:"headers"`
	Sample  [][]string `json:"sample"`
	Catalog []string   `json:"catalog"`
}

type SuggestColumnsResponse struct {
	Suggestions []ColumnSuggestion `json:"suggestions"`
}

// AircraftClassification is the classifier's verdict for one unknown
// aircraft identifier. Attribute fields are pointers so a missing boolean is
// distinguishable from false; entries with missing attributes are dropped.
type AircraftClassification struct {
	Identifier   string `json:"identifier"`
	ModelName    string `json:"model_name"`
	SingleEngine *bool  `json:"single_engine"`
	FixedWing    *bool  `json:"fixed_wing"`
	Turbine      *bool  `json:"turbine"`
	Helicopter   *bool  `json:"helicopter"`
	Military     *bool  `json:"military"`
}

type ClassifyAircraftResponse struct {
	Results []AircraftClassification `json:"results"`
}
