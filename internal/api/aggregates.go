package api

import (
	"net/http"
	"time"

	"flightdeck/logbook/internal/auth"
	"flightdeck/logbook/internal/common"
)

// parseMilitaryFilter reads the tri-state ?military= query parameter:
// absent means all flights, "true"/"false" restrict to one side.
func parseMilitaryFilter(r *http.Request) *bool {
	switch r.URL.Query().Get("military") {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// GetAggregatesHandler handles GET /api/v1/logbook/aggregates.
//
// ?aggregateType=scorecard returns the full scorecard shape; anything else
// returns the simple six-number summary. ?military=true|false filters
// either shape.
func (h *Handlers) GetAggregatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		military := parseMilitaryFilter(r)

		if r.URL.Query().Get("aggregateType") == "scorecard" {
			aggs, err := h.deps.Services.Aggregates.GetScorecard(r.Context(), claims.UserID(), military)
			if err != nil {
				respondPipelineError(w, initTime, err)
				return
			}
			common.RespondSuccess(w, initTime, "Scorecard computed", aggs)
			return
		}

		aggs, err := h.deps.Services.Aggregates.GetSimpleAggregates(r.Context(), claims.UserID(), military)
		if err != nil {
			respondPipelineError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aggregates computed", aggs)
	}
}
