package workers

import (
	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/db/repositories"
)

type WorkersContainer struct {
	CacheFiller *AircraftCacheWorker
}

func InitWorkers(
	c common.CacheInterface,
	modelRepo *repositories.AircraftModelRepository,
) *WorkersContainer {
	filler := NewAircraftCacheWorker(c, modelRepo)

	// Keep the aircraft alias cache warm so uploads rarely hit the database
	go filler.Start()

	return &WorkersContainer{
		CacheFiller: filler,
	}
}
