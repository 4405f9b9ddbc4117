package constants

// Pipeline Error Codes
// These constants define specific error scenarios for the upload, save and
// aggregation pipeline

// Upload / file-level errors
const (
	ErrCodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrCodeTooManyFiles        = "TOO_MANY_FILES"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
	ErrCodeEmptyUpload         = "EMPTY_UPLOAD"
)

// Table / header errors
const (
	ErrCodeNoHeaderRow       = "NO_HEADER_ROW"
	ErrCodeMissingDateColumn = "MISSING_DATE_COLUMN"
	ErrCodeMissingAircraft   = "MISSING_AIRCRAFT_COLUMN"
	ErrCodeEmptyTable        = "EMPTY_TABLE"
)

// Save / row-level errors
const (
	ErrCodeRowMissingDate     = "ROW_MISSING_DATE"
	ErrCodeRowMissingAircraft = "ROW_MISSING_AIRCRAFT"
	ErrCodeTooManyAircraft    = "TOO_MANY_AIRCRAFT_TYPES"
	ErrCodeUnknownAircraft    = "UNKNOWN_AIRCRAFT_TYPES"
	ErrCodeRowNotFound        = "ROW_NOT_FOUND"
)

// External classifier errors
const (
	ErrCodeClassifierFailed    = "CLASSIFIER_FAILED"
	ErrCodeClassifierMalformed = "CLASSIFIER_MALFORMED_RESPONSE"
)

// Infrastructure errors
const (
	ErrCodeDatabaseError = "DATABASE_ERROR"
)

var pipelineErrorMessages = map[string]string{
	ErrCodeUnsupportedFileType: "One or more files have an unsupported type. Allowed: CSV, Excel, PDF, PNG, JPEG, GIF",
	ErrCodeTooManyFiles:        "A maximum of 10 files can be uploaded at once",
	ErrCodeFileTooLarge:        "Each file must be 15MB or smaller",
	ErrCodeEmptyUpload:         "No files were supplied",

	ErrCodeNoHeaderRow:       "Could not find a header row in the uploaded table",
	ErrCodeMissingDateColumn: "The table has no recognizable date column",
	ErrCodeMissingAircraft:   "The table has no recognizable aircraft column",
	ErrCodeEmptyTable:        "The table contains no data rows",

	ErrCodeRowMissingDate:     "Every row must have a date",
	ErrCodeRowMissingAircraft: "Every row must have an aircraft type",
	ErrCodeTooManyAircraft:    "A maximum of 100 distinct aircraft types can be saved per request",
	ErrCodeUnknownAircraft:    "Some aircraft types could not be resolved",
	ErrCodeRowNotFound:        "Logbook row not found",

	ErrCodeClassifierFailed:    "The classification service could not be reached",
	ErrCodeClassifierMalformed: "The classification service returned an unusable response",

	ErrCodeDatabaseError: "An unexpected database error occurred",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, ok := pipelineErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred"
}
