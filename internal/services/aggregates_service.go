package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/models/dtos"
)

// windowMonths are the trailing windows the scorecard reports for recency
// metrics, keyed by the suffix used in the totals map.
var windowMonths = []int{12, 24, 36}

// windowedColumns are the metrics that get trailing-window variants.
var windowedColumns = []string{
	constants.ColTotalTime,
	constants.ColPIC,
	constants.ColSorties,
}

// AggregatesService computes the two read shapes over a user's logbook:
// the simple all-flights table and the full scorecard. Results are cached
// briefly; writes go through Invalidate.
type AggregatesService struct {
	repo  *repositories.AggregatesRepository
	cache common.CacheInterface
	now   func() time.Time
}

func NewAggregatesService(repo *repositories.AggregatesRepository, cache common.CacheInterface) *AggregatesService {
	return &AggregatesService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// MilitaryFilter is the tri-state flight filter: nil means all flights,
// otherwise military-only or civilian-only.
func militaryKey(military *bool) string {
	switch {
	case military == nil:
		return "all"
	case *military:
		return "mil"
	default:
		return "civ"
	}
}

// GetSimpleAggregates returns the six headline sums for the user's flights.
func (s *AggregatesService) GetSimpleAggregates(ctx context.Context, userID string, military *bool) (*dtos.SimpleFlightAggregates, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", constants.CachePrefixSimpleAggs, userID, militaryKey(military))
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			if aggs, ok := cached.(*dtos.SimpleFlightAggregates); ok {
				return aggs, nil
			}
		}
	}

	filter := repositories.AggregateFilter{Military: military}

	aggs := &dtos.SimpleFlightAggregates{}
	targets := []struct {
		col  string
		dest *float64
	}{
		{constants.ColTotalTime, &aggs.TotalTime},
		{constants.ColPIC, &aggs.PIC},
		{constants.ColSIC, &aggs.SIC},
		{constants.ColNight, &aggs.Night},
		{constants.ColInstrument, &aggs.Instrument},
		{constants.ColCrossCountry, &aggs.CrossCountry},
	}
	for _, t := range targets {
		sum, err := s.repo.SumColumn(ctx, userID, t.col, filter)
		if err != nil {
			return nil, &PipelineError{
				Code:    constants.ErrCodeDatabaseError,
				Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
				Err:     err,
			}
		}
		*t.dest = sum
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, aggs, 5*time.Minute)
	}
	return aggs, nil
}

// GetScorecard returns the full scorecard: lifetime totals for every numeric
// column, trailing 12/24/36-month windows for the recency metrics, the
// excess-over-floor clamps, the flight date range and the per-aircraft
// breakdown sorted by aircraft type.
func (s *AggregatesService) GetScorecard(ctx context.Context, userID string, military *bool) (*dtos.FlightAggregates, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", constants.CachePrefixScorecard, userID, militaryKey(military))
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			if aggs, ok := cached.(*dtos.FlightAggregates); ok {
				return aggs, nil
			}
		}
	}

	baseFilter := repositories.AggregateFilter{Military: military}

	totals := make(map[string]float64, len(constants.NumericColumns)+len(windowedColumns)*len(windowMonths))
	for _, col := range constants.NumericColumns {
		sum, err := s.repo.SumColumn(ctx, userID, col, baseFilter)
		if err != nil {
			return nil, s.dbError(err)
		}
		totals[col] = sum
	}

	now := s.now().UTC()
	for _, months := range windowMonths {
		since := now.AddDate(0, -months, 0)
		filter := repositories.AggregateFilter{Military: military, Since: &since}
		for _, col := range windowedColumns {
			sum, err := s.repo.SumColumn(ctx, userID, col, filter)
			if err != nil {
				return nil, s.dbError(err)
			}
			totals[fmt.Sprintf("%s_%dMO", col, months)] = sum
		}
	}

	earliest, latest, err := s.repo.FlightDateRange(ctx, userID, baseFilter)
	if err != nil {
		return nil, s.dbError(err)
	}

	byAircraft, err := s.aircraftBreakdown(ctx, userID, baseFilter)
	if err != nil {
		return nil, err
	}

	aggs := &dtos.FlightAggregates{
		Totals:              totals,
		TotalTimeExcess1500: excessOver(totals[constants.ColTotalTime], constants.TotalTimeExcessFloor),
		PICExcess1000:       excessOver(totals[constants.ColPIC], constants.PICExcessFloor),
		EarliestFlight:      earliest,
		LatestFlight:        latest,
		ByAircraft:          byAircraft,
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, aggs, 5*time.Minute)
	}
	return aggs, nil
}

// Invalidate drops the cached aggregate shapes for the user. Called after
// any write to the user's logbook.
func (s *AggregatesService) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 6)
	for _, prefix := range []constants.CachePrefix{constants.CachePrefixSimpleAggs, constants.CachePrefixScorecard} {
		for _, mk := range []string{"all", "mil", "civ"} {
			keys = append(keys, fmt.Sprintf("%s%s:%s", prefix, userID, mk))
		}
	}
	s.cache.DeleteMany(keys...)
}

func (s *AggregatesService) aircraftBreakdown(ctx context.Context, userID string, filter repositories.AggregateFilter) ([]dtos.AircraftAggregates, error) {
	perAircraft := make(map[string]map[string]float64)
	for _, col := range constants.ScorecardAircraftColumns {
		sums, err := s.repo.SumColumnByAircraft(ctx, userID, col, filter)
		if err != nil {
			return nil, s.dbError(err)
		}
		for aircraft, sum := range sums {
			if perAircraft[aircraft] == nil {
				perAircraft[aircraft] = make(map[string]float64, len(constants.ScorecardAircraftColumns))
			}
			perAircraft[aircraft][col] = sum
		}
	}

	types := make([]string, 0, len(perAircraft))
	for t := range perAircraft {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]dtos.AircraftAggregates, 0, len(types))
	for _, t := range types {
		out = append(out, dtos.AircraftAggregates{AircraftType: t, Sums: perAircraft[t]})
	}
	return out, nil
}

func (s *AggregatesService) dbError(err error) error {
	return &PipelineError{
		Code:    constants.ErrCodeDatabaseError,
		Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
		Err:     err,
	}
}

func excessOver(total, floor float64) float64 {
	if total <= floor {
		return 0
	}
	return total - floor
}
