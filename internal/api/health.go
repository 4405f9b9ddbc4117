package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"flightdeck/logbook/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		components := make(map[string]entities.ComponentStatus)

		pgStatus := "ok"
		pgDetail := "Postgres connected"
		if err := db.Ping(); err != nil {
			pgStatus = "down"
			pgDetail = err.Error()
		}
		components["postgres"] = entities.ComponentStatus{
			Status: pgStatus,
			Detail: pgDetail,
		}

		overallStatus := "ok"
		for _, c := range components {
			if c.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Service:    "logbook",
			Status:     overallStatus,
			Components: components,
			UpSince:    upSince,
			Uptime:     time.Since(upSince).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
