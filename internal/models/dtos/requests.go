package dtos

// LogRowInput is one logbook row as submitted for saving, keyed by canonical
// column name. DATE and AIRCRAFT_TYPE are mandatory; numeric columns arrive
// as the strings shown in the review table.
type LogRowInput map[string]string

type SaveLogbookReq struct {
	Rows []LogRowInput `json:"rows"`
}

type UpdateLogRowReq struct {
	Row LogRowInput `json:"row"`
}
