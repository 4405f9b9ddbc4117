package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/models/dtos"
	gormModels "flightdeck/logbook/internal/models/gorm"
)

func newTestORM(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&gormModels.User{},
		&gormModels.AircraftModel{},
		&gormModels.AircraftModelAlias{},
		&gormModels.FlightLogRow{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func boolPtr(b bool) *bool { return &b }

func TestNormalizeAircraftIdentifier_Idempotent(t *testing.T) {
	inputs := []string{" c-172 ", "C172", "uh 60m", "PA-28-181", "B737-800", "  Bell 206B III "}
	for _, in := range inputs {
		once := NormalizeAircraftIdentifier(in)
		twice := NormalizeAircraftIdentifier(once)
		if once != twice {
			t.Errorf("Normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeAircraftIdentifier_StripsPunctuation(t *testing.T) {
	if got := NormalizeAircraftIdentifier(" c-172 "); got != "C172" {
		t.Errorf("Expected C172, got %q", got)
	}
	if got := NormalizeAircraftIdentifier("UH-60M (Black Hawk)"); got != "UH60MBLACKHAWK" {
		t.Errorf("Unexpected normalization: %q", got)
	}
}

func TestResolve_AliasTableHit(t *testing.T) {
	orm := newTestORM(t)
	repo := repositories.NewAircraftModelRepository(orm)

	model := &gormModels.AircraftModel{
		Name:         "Cessna 172",
		SingleEngine: true,
		FixedWing:    true,
	}
	if err := repo.CreateWithAliases(context.Background(), model, []string{"C172", "CESSNA172"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	resolver := NewAircraftResolverService(repo, &mockClassifier{}, common.NewCacheService(60, 60), nil)

	// Both raw spellings normalize to an alias already in the table
	resolved, unresolved, err := resolver.Resolve(context.Background(), []string{" c-172 ", "Cessna 172"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("Expected no unresolved, got %v", unresolved)
	}
	if info := resolved[" c-172 "]; info.Name != "Cessna 172" || !info.SingleEngine {
		t.Errorf("Unexpected resolution: %+v", info)
	}
}

func TestResolve_ClassifierFallbackWritesBack(t *testing.T) {
	orm := newTestORM(t)
	repo := repositories.NewAircraftModelRepository(orm)

	calls := 0
	mock := &mockClassifier{
		classifyAircraftFunc: func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
			calls++
			return []dtos.AircraftClassification{
				{
					Identifier:   "UH60",
					ModelName:    "Sikorsky UH-60",
					SingleEngine: boolPtr(false),
					FixedWing:    boolPtr(false),
					Turbine:      boolPtr(true),
					Helicopter:   boolPtr(true),
					Military:     boolPtr(true),
				},
			}, nil
		},
	}

	resolver := NewAircraftResolverService(repo, mock, common.NewCacheService(60, 60), nil)

	resolved, unresolved, err := resolver.Resolve(context.Background(), []string{"UH-60"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("Expected no unresolved, got %v", unresolved)
	}
	if info := resolved["UH-60"]; !info.Helicopter || !info.Military || info.Name != "Sikorsky UH-60" {
		t.Errorf("Unexpected resolution: %+v", info)
	}
	if calls != 1 {
		t.Errorf("Expected 1 classifier call, got %d", calls)
	}

	// A fresh resolver with no cache and a dead classifier must now resolve
	// the same identifier from the alias table alone.
	dead := &mockClassifier{
		classifyAircraftFunc: func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
			return nil, errors.New("unreachable")
		},
	}
	second := NewAircraftResolverService(repo, dead, common.NewCacheService(60, 60), nil)
	resolved, unresolved, err = second.Resolve(context.Background(), []string{"uh 60"})
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("Write-back did not persist, unresolved: %v", unresolved)
	}
	if resolved["uh 60"].Name != "Sikorsky UH-60" {
		t.Errorf("Unexpected second resolution: %+v", resolved["uh 60"])
	}
}

func TestResolve_IncompleteClassificationStaysUnresolved(t *testing.T) {
	orm := newTestORM(t)
	repo := repositories.NewAircraftModelRepository(orm)

	mock := &mockClassifier{
		classifyAircraftFunc: func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
			return []dtos.AircraftClassification{
				{Identifier: "MYSTERY", ModelName: "Mystery Craft"}, // attributes missing
			}, nil
		},
	}

	resolver := NewAircraftResolverService(repo, mock, common.NewCacheService(60, 60), nil)

	resolved, unresolved, err := resolver.Resolve(context.Background(), []string{"Mystery"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Expected nothing resolved, got %v", resolved)
	}
	if len(unresolved) != 1 || unresolved[0] != "Mystery" {
		t.Errorf("Expected original spelling in unresolved list, got %v", unresolved)
	}
}

func TestResolve_ClassifierFailure(t *testing.T) {
	orm := newTestORM(t)
	repo := repositories.NewAircraftModelRepository(orm)

	mock := &mockClassifier{
		classifyAircraftFunc: func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
			return nil, errors.New("timeout")
		},
	}
	resolver := NewAircraftResolverService(repo, mock, common.NewCacheService(60, 60), nil)

	_, _, err := resolver.Resolve(context.Background(), []string{"Unknown 99"})
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeClassifierFailed {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeClassifierFailed, err)
	}
}

func TestResolve_CacheShortCircuitsDatabase(t *testing.T) {
	orm := newTestORM(t)
	repo := repositories.NewAircraftModelRepository(orm)
	cache := common.NewCacheService(60, 60)

	model := &gormModels.AircraftModel{Name: "Piper PA-28", SingleEngine: true, FixedWing: true}
	if err := repo.CreateWithAliases(context.Background(), model, []string{"PA28"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	resolver := NewAircraftResolverService(repo, &mockClassifier{}, cache, nil)
	if _, _, err := resolver.Resolve(context.Background(), []string{"PA-28"}); err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}

	// Wipe the table; the cached entry must still answer.
	if err := orm.Exec("DELETE FROM aircraft_model_aliases").Error; err != nil {
		t.Fatalf("Failed to clear aliases: %v", err)
	}

	resolved, unresolved, err := resolver.Resolve(context.Background(), []string{"PA-28"})
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if len(unresolved) != 0 || resolved["PA-28"].Name != "Piper PA-28" {
		t.Errorf("Cache did not serve the repeat lookup: %v %v", resolved, unresolved)
	}
}
