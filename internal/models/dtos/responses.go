package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// ---- UPLOAD ----

// ColumnSuggestion is an advisory rename/removal hint for one source column.
// It pre-fills the review UI and is never auto-applied.
type ColumnSuggestion struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name,omitempty"`
	Remove  bool   `json:"remove"`
}

type UploadResponse struct {
	Headers     []string           `json:"headers"`
	Rows        [][]string         `json:"rows"`
	Suggestions []ColumnSuggestion `json:"suggestions"`
	Catalog     []string           `json:"catalog"`
	FromOCR     bool               `json:"from_ocr"`
	DroppedRows int                `json:"dropped_rows"`
}

// ---- SAVE ----

type SaveLogbookResponse struct {
	Inserted int `json:"inserted"`
}

// ---- AGGREGATES ----

// SimpleFlightAggregates backs the all-flights table.
type SimpleFlightAggregates struct {
	TotalTime    float64 `json:"total_time"`
	PIC          float64 `json:"pic"`
	SIC          float64 `json:"sic"`
	Night        float64 `json:"night"`
	Instrument   float64 `json:"instrument"`
	CrossCountry float64 `json:"cross_country"`
}

// AircraftAggregates is the per-aircraft slice of the scorecard breakdown.
type AircraftAggregates struct {
	AircraftType string             `json:"aircraft_type"`
	Sums         map[string]float64 `json:"sums"`
}

// FlightAggregates backs the printable scorecard.
type FlightAggregates struct {
	Totals              map[string]float64   `json:"totals"`
	TotalTimeExcess1500 float64              `json:"total_time_excess_1500"`
	PICExcess1000       float64              `json:"pic_excess_1000"`
	EarliestFlight      *time.Time           `json:"earliest_flight,omitempty"`
	LatestFlight        *time.Time           `json:"latest_flight,omitempty"`
	ByAircraft          []AircraftAggregates `json:"by_aircraft"`
}

// LogRowResponse is one persisted row echoed back from edit operations.
type LogRowResponse struct {
	ID           string             `json:"id"`
	FlightDate   time.Time          `json:"flight_date"`
	AircraftType string             `json:"aircraft_type"`
	Columns      map[string]float64 `json:"columns"`
}
