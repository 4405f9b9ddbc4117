package api

import (
	"os"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/db"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/logging"
	"flightdeck/logbook/internal/metrics"
	"flightdeck/logbook/internal/services"
)

type Repositories struct {
	UserGorm      *repositories.UserRepositoryGORM
	Keys          *repositories.KeysRepo
	FlightLog     *repositories.FlightLogRepository
	AircraftModel *repositories.AircraftModelRepository
	Aggregates    *repositories.AggregatesRepository
}

type Services struct {
	Cache      common.CacheInterface
	Classifier *common.ClassifierService
	Ingest     *services.IngestService
	Resolver   *services.AircraftResolverService
	Logbook    *services.LogbookService
	Aggregates *services.AggregatesService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		UserGorm:      repositories.NewUserRepositoryGORM(db.PgDB),
		Keys:          repositories.NewApiKeysRepo(db.DB),
		FlightLog:     repositories.NewFlightLogRepository(db.PgDB),
		AircraftModel: repositories.NewAircraftModelRepository(db.PgDB),
		Aggregates:    repositories.NewAggregatesRepo(db.DB),
	}

	// Redis when configured, in-process cache otherwise
	var cacheSvc common.CacheInterface
	if os.Getenv("REDIS_URL") != "" {
		redisSvc, err := common.NewRedisCacheService()
		if err != nil {
			logging.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
			cacheSvc = common.NewCacheService(60000, 600)
		} else {
			cacheSvc = redisSvc
		}
	} else {
		cacheSvc = common.NewCacheService(60000, 600)
	}

	classifierSvc := common.NewClassifierService(metricsReg)
	resolverSvc := services.NewAircraftResolverService(repos.AircraftModel, classifierSvc, cacheSvc, metricsReg)

	svcs := &Services{
		Cache:      cacheSvc,
		Classifier: classifierSvc,
		Ingest:     services.NewIngestService(classifierSvc, metricsReg),
		Resolver:   resolverSvc,
		Logbook:    services.NewLogbookService(repos.FlightLog, resolverSvc, metricsReg),
		Aggregates: services.NewAggregatesService(repos.Aggregates, cacheSvc),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}
