package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/logging"
	"flightdeck/logbook/internal/metrics"
	gormModels "flightdeck/logbook/internal/models/gorm"
)

// AircraftModelInfo is the resolved identity of an aircraft type: the
// canonical model name plus the attributes the derived columns gate on.
type AircraftModelInfo struct {
	Name         string `json:"name"`
	SingleEngine bool   `json:"single_engine"`
	FixedWing    bool   `json:"fixed_wing"`
	Turbine      bool   `json:"turbine"`
	Helicopter   bool   `json:"helicopter"`
	Military     bool   `json:"military"`
}

// AircraftResolverService maps raw aircraft-identifier strings to canonical
// models: cache, then the alias table, then a batched classifier call for
// whatever is left. Classified models are written back to the lookup table
// so the next upload resolves them locally.
type AircraftResolverService struct {
	repo       *repositories.AircraftModelRepository
	classifier Classifier
	cache      common.CacheInterface
	metrics    *metrics.MetricsRegistry
	group      singleflight.Group
}

func NewAircraftResolverService(
	repo *repositories.AircraftModelRepository,
	classifier Classifier,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *AircraftResolverService {
	return &AircraftResolverService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		metrics:    metricsReg,
	}
}

// NormalizeAircraftIdentifier trims, uppercases and strips everything that
// is not a letter or digit. Idempotent.
func NormalizeAircraftIdentifier(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve maps every distinct identifier in the batch to its model info.
// The second return lists identifiers that resolved nowhere (no alias match
// and dropped or missing from the classifier result); resolving them is the
// caller's problem. The attribute map is built once per batch so no
// identifier triggers more than one external call.
func (s *AircraftResolverService) Resolve(ctx context.Context, identifiers []string) (map[string]AircraftModelInfo, []string, error) {
	byNorm := make(map[string][]string)
	for _, raw := range identifiers {
		norm := NormalizeAircraftIdentifier(raw)
		if norm == "" {
			continue
		}
		byNorm[norm] = append(byNorm[norm], raw)
	}

	resolved := make(map[string]AircraftModelInfo, len(byNorm))

	// Cache pass
	var missing []string
	for norm := range byNorm {
		if info, ok := s.cacheGet(norm); ok {
			resolved[norm] = info
			s.countResolution("cache")
			continue
		}
		missing = append(missing, norm)
	}
	sort.Strings(missing)

	// Alias table pass
	if len(missing) > 0 {
		matches, err := s.repo.FindByAliases(ctx, missing)
		if err != nil {
			return nil, nil, &PipelineError{
				Code:    constants.ErrCodeDatabaseError,
				Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
				Err:     err,
			}
		}

		var unmatched []string
		for _, norm := range missing {
			model, ok := matches[norm]
			if !ok {
				unmatched = append(unmatched, norm)
				continue
			}
			info := modelToInfo(model)
			resolved[norm] = info
			s.cacheSet(norm, info)
			s.countResolution("db")
		}
		missing = unmatched
	}

	// Classifier pass for whatever the database did not know
	if len(missing) > 0 {
		classified, err := s.classifyBatch(ctx, missing)
		if err != nil {
			return nil, nil, err
		}
		for norm, info := range classified {
			resolved[norm] = info
			s.cacheSet(norm, info)
			s.countResolution("classifier")
		}
	}

	out := make(map[string]AircraftModelInfo, len(identifiers))
	var unresolved []string
	for norm, raws := range byNorm {
		info, ok := resolved[norm]
		for _, raw := range raws {
			if ok {
				out[raw] = info
			} else {
				unresolved = append(unresolved, raw)
			}
		}
	}
	sort.Strings(unresolved)

	return out, unresolved, nil
}

// classifyBatch submits the unmatched identifiers in one call, collapsed
// across concurrent requests asking for the same batch. Entries whose
// attributes fail validation are dropped from the result, not retried.
func (s *AircraftResolverService) classifyBatch(ctx context.Context, norms []string) (map[string]AircraftModelInfo, error) {
	key := strings.Join(norms, "|")

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		results, err := s.classifier.ClassifyAircraft(ctx, norms)
		if err != nil {
			return nil, &PipelineError{
				Code:    constants.ErrCodeClassifierFailed,
				Message: constants.GetErrorMessage(constants.ErrCodeClassifierFailed),
				Err:     err,
			}
		}

		classified := make(map[string]AircraftModelInfo, len(results))
		for _, res := range results {
			norm := NormalizeAircraftIdentifier(res.Identifier)
			if norm == "" || res.ModelName == "" {
				continue
			}
			if res.SingleEngine == nil || res.FixedWing == nil || res.Turbine == nil || res.Helicopter == nil || res.Military == nil {
				logging.Warn("Classifier returned incomplete aircraft attributes", "identifier", res.Identifier)
				continue
			}

			info := AircraftModelInfo{
				Name:         res.ModelName,
				SingleEngine: *res.SingleEngine,
				FixedWing:    *res.FixedWing,
				Turbine:      *res.Turbine,
				Helicopter:   *res.Helicopter,
				Military:     *res.Military,
			}
			classified[norm] = info

			s.writeBack(ctx, norm, info)
		}
		return classified, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]AircraftModelInfo), nil
}

// writeBack persists a newly classified model so future lookups hit the
// alias table instead of the classifier. Failures are logged, not fatal:
// the in-flight batch already has its answer.
func (s *AircraftResolverService) writeBack(ctx context.Context, norm string, info AircraftModelInfo) {
	model := &gormModels.AircraftModel{
		ID:           uuid.NewString(),
		Name:         info.Name,
		SingleEngine: info.SingleEngine,
		FixedWing:    info.FixedWing,
		Turbine:      info.Turbine,
		Helicopter:   info.Helicopter,
		Military:     info.Military,
	}

	aliases := []string{norm}
	if selfAlias := NormalizeAircraftIdentifier(info.Name); selfAlias != "" && selfAlias != norm {
		aliases = append(aliases, selfAlias)
	}

	if err := s.repo.CreateWithAliases(ctx, model, aliases); err != nil {
		logging.Warn("Failed to persist classified aircraft model", "model", info.Name, "error", err.Error())
	}
}

func (s *AircraftResolverService) cacheGet(norm string) (AircraftModelInfo, bool) {
	val, found := s.cache.Get(string(constants.CachePrefixAircraftModel) + norm)
	if !found {
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixAircraftModel)).Inc()
		}
		return AircraftModelInfo{}, false
	}
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixAircraftModel)).Inc()
	}
	info, ok := val.(AircraftModelInfo)
	return info, ok
}

func (s *AircraftResolverService) cacheSet(norm string, info AircraftModelInfo) {
	s.cache.Set(string(constants.CachePrefixAircraftModel)+norm, info, 24*time.Hour)
}

func (s *AircraftResolverService) countResolution(source string) {
	if s.metrics != nil {
		s.metrics.AircraftResolvedTotal.WithLabelValues(source).Inc()
	}
}

func modelToInfo(m gormModels.AircraftModel) AircraftModelInfo {
	return AircraftModelInfo{
		Name:         m.Name,
		SingleEngine: m.SingleEngine,
		FixedWing:    m.FixedWing,
		Turbine:      m.Turbine,
		Helicopter:   m.Helicopter,
		Military:     m.Military,
	}
}
