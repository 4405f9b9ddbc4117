package workers

import (
	"context"
	"time"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/logging"
	"flightdeck/logbook/internal/services"
)

// AircraftCacheWorker periodically pre-loads the aircraft alias table into
// the cache so upload-time resolution stays off the database.
type AircraftCacheWorker struct {
	cache     common.CacheInterface
	modelRepo *repositories.AircraftModelRepository
}

func NewAircraftCacheWorker(c common.CacheInterface, modelRepo *repositories.AircraftModelRepository) *AircraftCacheWorker {
	return &AircraftCacheWorker{cache: c, modelRepo: modelRepo}
}

func (w *AircraftCacheWorker) Start() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	w.refill()

	for range ticker.C {
		w.refill()
	}
}

func (w *AircraftCacheWorker) refill() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	aliases, err := w.modelRepo.ListAliases(ctx)
	if err != nil {
		logging.Warn("Aircraft cache refill failed", "error", err.Error())
		return
	}

	for _, a := range aliases {
		info := services.AircraftModelInfo{
			Name:         a.Model.Name,
			SingleEngine: a.Model.SingleEngine,
			FixedWing:    a.Model.FixedWing,
			Turbine:      a.Model.Turbine,
			Helicopter:   a.Model.Helicopter,
			Military:     a.Model.Military,
		}
		w.cache.Set(string(constants.CachePrefixAircraftModel)+a.Alias, info, 24*time.Hour)
	}

	logging.Debug("Aircraft cache refilled", "aliases", len(aliases))
}
