package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/models/dtos"
	gormModels "flightdeck/logbook/internal/models/gorm"
)

type logbookFixture struct {
	orm      *gorm.DB
	logbook  *LogbookService
	resolver *AircraftResolverService
}

func newLogbookFixture(t *testing.T, classifier Classifier) *logbookFixture {
	t.Helper()
	orm := newTestORM(t)

	modelRepo := repositories.NewAircraftModelRepository(orm)
	c172 := &gormModels.AircraftModel{Name: "Cessna 172", SingleEngine: true, FixedWing: true}
	if err := modelRepo.CreateWithAliases(context.Background(), c172, []string{"C172", "CESSNA172"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	uh60 := &gormModels.AircraftModel{Name: "Sikorsky UH-60", Turbine: true, Helicopter: true, Military: true}
	if err := modelRepo.CreateWithAliases(context.Background(), uh60, []string{"UH60"}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	resolver := NewAircraftResolverService(modelRepo, classifier, common.NewCacheService(60, 60), nil)
	logbook := NewLogbookService(repositories.NewFlightLogRepository(orm), resolver, nil)

	return &logbookFixture{orm: orm, logbook: logbook, resolver: resolver}
}

func (f *logbookFixture) rowCount(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	if err := f.orm.Model(&gormModels.FlightLogRow{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

func TestSaveRows_PersistsWithDerivedColumns(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := []dtos.LogRowInput{
		{
			constants.ColDate:         "2024-03-01",
			constants.ColAircraftType: "C-172",
			constants.ColTotalTime:    "1.5",
			constants.ColPIC:          "1.5",
		},
		{
			constants.ColDate:         "2024-03-02",
			constants.ColAircraftType: "UH-60",
			constants.ColTotalTime:    "3.0",
			constants.ColSorties:      "2",
		},
	}

	inserted, err := f.logbook.SaveRows(context.Background(), "user-1", inputs)
	if err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("Expected 2 inserted, got %d", inserted)
	}

	var rows []gormModels.FlightLogRow
	if err := f.orm.Order("flight_date").Find(&rows).Error; err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if rows[0].AircraftType != "Cessna 172" {
		t.Errorf("Expected canonical model name, got %q", rows[0].AircraftType)
	}
	if rows[0].SingleEngine != 1.5 || rows[0].FixedWingPIC != 1.5 {
		t.Errorf("Derived columns wrong for fixed wing: %+v", rows[0])
	}
	if rows[1].Helo != 3.0 || rows[1].Military != 3.0 || rows[1].Sorties != 2 {
		t.Errorf("Derived columns wrong for helicopter: %+v", rows[1])
	}
}

func TestSaveRows_UnknownAircraftRejectsWholeBatch(t *testing.T) {
	noMatch := &mockClassifier{
		classifyAircraftFunc: func(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error) {
			return nil, nil
		},
	}
	f := newLogbookFixture(t, noMatch)

	inputs := []dtos.LogRowInput{
		{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172", constants.ColTotalTime: "1.0"},
		{constants.ColDate: "2024-03-02", constants.ColAircraftType: "Zephyr X", constants.ColTotalTime: "1.0"},
		{constants.ColDate: "2024-03-03", constants.ColAircraftType: "Aurora 9", constants.ColTotalTime: "1.0"},
	}

	_, err := f.logbook.SaveRows(context.Background(), "user-1", inputs)
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeUnknownAircraft {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeUnknownAircraft, err)
	}

	unresolved, ok := pErr.Detail.([]string)
	if !ok {
		t.Fatalf("Expected unresolved list in error detail, got %T", pErr.Detail)
	}
	if len(unresolved) != 2 || unresolved[0] != "Aurora 9" || unresolved[1] != "Zephyr X" {
		t.Errorf("Expected sorted unresolved identifiers, got %v", unresolved)
	}

	if n := f.rowCount(t, "user-1"); n != 0 {
		t.Errorf("Expected no rows persisted on rejection, got %d", n)
	}
}

func TestSaveRows_MissingDateRejected(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := []dtos.LogRowInput{
		{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172"},
		{constants.ColAircraftType: "C172"},
	}

	_, err := f.logbook.SaveRows(context.Background(), "user-1", inputs)
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeRowMissingDate {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeRowMissingDate, err)
	}
	if n := f.rowCount(t, "user-1"); n != 0 {
		t.Errorf("Expected no rows persisted, got %d", n)
	}
}

func TestSaveRows_MissingAircraftRejected(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := []dtos.LogRowInput{
		{constants.ColDate: "2024-03-01", constants.ColAircraftType: "  "},
	}

	_, err := f.logbook.SaveRows(context.Background(), "user-1", inputs)
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeRowMissingAircraft {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeRowMissingAircraft, err)
	}
}

func TestSaveRows_TooManyAircraftTypes(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := make([]dtos.LogRowInput, constants.MaxDistinctAircraft+1)
	for i := range inputs {
		inputs[i] = dtos.LogRowInput{
			constants.ColDate:         "2024-03-01",
			constants.ColAircraftType: "Type" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
		}
	}

	_, err := f.logbook.SaveRows(context.Background(), "user-1", inputs)
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeTooManyAircraft {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeTooManyAircraft, err)
	}
}

func TestUpdateRow_RecomputesDerivedColumns(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := []dtos.LogRowInput{
		{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172", constants.ColTotalTime: "2.0", constants.ColPIC: "2.0"},
	}
	if _, err := f.logbook.SaveRows(context.Background(), "user-1", inputs); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}

	var row gormModels.FlightLogRow
	if err := f.orm.First(&row).Error; err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	updated, err := f.logbook.UpdateRow(context.Background(), "user-1", row.ID, dtos.LogRowInput{
		constants.ColAircraftType: "UH-60",
	})
	if err != nil {
		t.Fatalf("UpdateRow failed: %v", err)
	}

	if updated.AircraftType != "Sikorsky UH-60" {
		t.Errorf("Expected re-resolved model, got %q", updated.AircraftType)
	}
	if updated.Columns[constants.ColHelo] != 2.0 {
		t.Errorf("Expected HELO recomputed to 2.0, got %v", updated.Columns[constants.ColHelo])
	}
	if updated.Columns[constants.ColSingleEngine] != 0 {
		t.Errorf("Expected SINGLE_ENGINE cleared, got %v", updated.Columns[constants.ColSingleEngine])
	}
}

func TestUpdateRow_WrongUserIsNotFound(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	inputs := []dtos.LogRowInput{
		{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172"},
	}
	if _, err := f.logbook.SaveRows(context.Background(), "user-1", inputs); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}

	var row gormModels.FlightLogRow
	if err := f.orm.First(&row).Error; err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	_, err := f.logbook.UpdateRow(context.Background(), "someone-else", row.ID, dtos.LogRowInput{})
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeRowNotFound {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeRowNotFound, err)
	}
}

func TestDeleteRow_NotFound(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	err := f.logbook.DeleteRow(context.Background(), "user-1", "nonexistent")
	var pErr *PipelineError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeRowNotFound {
		t.Fatalf("Expected %s, got %v", constants.ErrCodeRowNotFound, err)
	}
}

func TestDeleteAllRows_ScopedToUser(t *testing.T) {
	f := newLogbookFixture(t, &mockClassifier{})

	for _, user := range []string{"user-1", "user-1", "user-2"} {
		inputs := []dtos.LogRowInput{
			{constants.ColDate: "2024-03-01", constants.ColAircraftType: "C172"},
		}
		if _, err := f.logbook.SaveRows(context.Background(), user, inputs); err != nil {
			t.Fatalf("SaveRows failed: %v", err)
		}
	}

	deleted, err := f.logbook.DeleteAllRows(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DeleteAllRows failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if n := f.rowCount(t, "user-2"); n != 1 {
		t.Errorf("Other user's rows must survive, got %d", n)
	}
}
