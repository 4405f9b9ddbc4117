package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flightdeck/logbook/internal/auth"
	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/models/dtos"
)

// SaveLogbookHandler handles POST /api/v1/logbook/rows.
//
// Persists a reviewed batch of rows all-or-nothing. Unresolvable aircraft
// types fail the whole request and are listed in the error payload.
func (h *Handlers) SaveLogbookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req dtos.SaveLogbookReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		inserted, err := h.deps.Services.Logbook.SaveRows(r.Context(), claims.UserID(), req.Rows)
		if err != nil {
			respondPipelineError(w, initTime, err)
			return
		}

		h.deps.Services.Aggregates.Invalidate(claims.UserID())
		common.RespondSuccess(w, initTime,
			fmt.Sprintf("Saved %d rows", inserted),
			dtos.SaveLogbookResponse{Inserted: inserted}, http.StatusCreated)
	}
}

// UpdateLogRowHandler handles PUT /api/v1/logbook/rows/{row_id}.
func (h *Handlers) UpdateLogRowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		rowID := chi.URLParam(r, "row_id")

		var req dtos.UpdateLogRowReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		row, err := h.deps.Services.Logbook.UpdateRow(r.Context(), claims.UserID(), rowID, req.Row)
		if err != nil {
			respondPipelineError(w, initTime, err)
			return
		}

		h.deps.Services.Aggregates.Invalidate(claims.UserID())
		common.RespondSuccess(w, initTime, "Row updated", row)
	}
}

// DeleteLogRowHandler handles DELETE /api/v1/logbook/rows/{row_id}.
func (h *Handlers) DeleteLogRowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		rowID := chi.URLParam(r, "row_id")

		if err := h.deps.Services.Logbook.DeleteRow(r.Context(), claims.UserID(), rowID); err != nil {
			respondPipelineError(w, initTime, err)
			return
		}

		h.deps.Services.Aggregates.Invalidate(claims.UserID())
		common.RespondSuccess(w, initTime, "Row deleted", nil)
	}
}

// DeleteAllRowsHandler handles DELETE /api/v1/logbook/rows.
func (h *Handlers) DeleteAllRowsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		deleted, err := h.deps.Services.Logbook.DeleteAllRows(r.Context(), claims.UserID())
		if err != nil {
			respondPipelineError(w, initTime, err)
			return
		}

		h.deps.Services.Aggregates.Invalidate(claims.UserID())
		common.RespondSuccess(w, initTime, fmt.Sprintf("Deleted %d rows", deleted), nil)
	}
}
