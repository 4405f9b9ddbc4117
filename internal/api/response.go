package api

import (
	"errors"
	"net/http"
	"time"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/services"
)

// pipelineStatus maps a pipeline error code to its HTTP status.
func pipelineStatus(code string) int {
	switch code {
	case constants.ErrCodeRowNotFound:
		return http.StatusNotFound
	case constants.ErrCodeClassifierFailed, constants.ErrCodeClassifierMalformed,
		constants.ErrCodeDatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondPipelineError writes a PipelineError in the standard envelope,
// carrying its structured detail (for example the unresolvable aircraft
// list) when present.
func respondPipelineError(w http.ResponseWriter, initTime time.Time, err error) {
	var pErr *services.PipelineError
	if !errors.As(err, &pErr) {
		common.RespondError(w, initTime, err, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	status := pipelineStatus(pErr.Code)
	if pErr.Detail != nil {
		common.RespondErrorData(w, initTime, pErr.Message, pErr.Detail, status)
		return
	}
	common.RespondError(w, initTime, pErr, pErr.Message, status)
}
