package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/metrics"
	"flightdeck/logbook/internal/models/dtos"
	gormModels "flightdeck/logbook/internal/models/gorm"
)

// LogbookService owns the save pipeline: per-row validation, aircraft
// resolution, derived-column generation and the all-or-nothing bulk insert.
// It also handles row-level edit and delete.
type LogbookService struct {
	repo     *repositories.FlightLogRepository
	resolver *AircraftResolverService
	metrics  *metrics.MetricsRegistry
}

func NewLogbookService(
	repo *repositories.FlightLogRepository,
	resolver *AircraftResolverService,
	metricsReg *metrics.MetricsRegistry,
) *LogbookService {
	return &LogbookService{
		repo:     repo,
		resolver: resolver,
		metrics:  metricsReg,
	}
}

// SaveRows validates and persists a reviewed batch. The batch is rejected
// whole when any row is missing its mandatory fields, when more than 100
// distinct aircraft types appear, or when any aircraft type resolves
// nowhere - in which case the offending identifiers are reported back.
func (s *LogbookService) SaveRows(ctx context.Context, userID string, inputs []dtos.LogRowInput) (int, error) {
	if len(inputs) == 0 {
		return 0, &PipelineError{
			Code:    constants.ErrCodeEmptyTable,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyTable),
		}
	}

	dates := make([]time.Time, len(inputs))
	aircraftSet := make(map[string]struct{})
	for i, input := range inputs {
		dateStr := strings.TrimSpace(input[constants.ColDate])
		if dateStr == "" {
			return 0, &PipelineError{
				Code:    constants.ErrCodeRowMissingDate,
				Message: fmt.Sprintf("row %d: %s", i+1, constants.GetErrorMessage(constants.ErrCodeRowMissingDate)),
			}
		}
		parsed, ok := parseFlightDate(dateStr, "")
		if !ok {
			return 0, &PipelineError{
				Code:    constants.ErrCodeRowMissingDate,
				Message: fmt.Sprintf("row %d: unparseable date %q", i+1, dateStr),
			}
		}
		dates[i] = parsed

		aircraft := strings.TrimSpace(input[constants.ColAircraftType])
		if aircraft == "" {
			return 0, &PipelineError{
				Code:    constants.ErrCodeRowMissingAircraft,
				Message: fmt.Sprintf("row %d: %s", i+1, constants.GetErrorMessage(constants.ErrCodeRowMissingAircraft)),
			}
		}
		aircraftSet[aircraft] = struct{}{}
	}

	if len(aircraftSet) > constants.MaxDistinctAircraft {
		return 0, &PipelineError{
			Code:    constants.ErrCodeTooManyAircraft,
			Message: constants.GetErrorMessage(constants.ErrCodeTooManyAircraft),
		}
	}

	identifiers := make([]string, 0, len(aircraftSet))
	for a := range aircraftSet {
		identifiers = append(identifiers, a)
	}

	resolved, unresolved, err := s.resolver.Resolve(ctx, identifiers)
	if err != nil {
		return 0, err
	}
	if len(unresolved) > 0 {
		return 0, &PipelineError{
			Code:    constants.ErrCodeUnknownAircraft,
			Message: constants.GetErrorMessage(constants.ErrCodeUnknownAircraft),
			Detail:  unresolved,
		}
	}

	rows := make([]gormModels.FlightLogRow, 0, len(inputs))
	for i, input := range inputs {
		info := resolved[strings.TrimSpace(input[constants.ColAircraftType])]

		row := gormModels.FlightLogRow{
			ID:           uuid.NewString(),
			UserID:       userID,
			FlightDate:   dates[i],
			AircraftType: info.Name,
		}
		for _, col := range constants.InputColumns {
			row.SetNumericValue(col, parseNumericCell(input[col]))
		}

		ApplyDerivedColumns(&row, info)
		rows = append(rows, row)
	}

	if err := s.repo.InsertBatch(ctx, rows); err != nil {
		return 0, &PipelineError{
			Code:    constants.ErrCodeDatabaseError,
			Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
			Err:     err,
		}
	}

	if s.metrics != nil {
		s.metrics.RowsSavedTotal.Add(float64(len(rows)))
	}

	return len(rows), nil
}

// UpdateRow applies a partial edit to one row. A changed aircraft type is
// re-resolved, and the derived columns are recomputed either way.
func (s *LogbookService) UpdateRow(ctx context.Context, userID, rowID string, input dtos.LogRowInput) (*dtos.LogRowResponse, error) {
	row, err := s.repo.GetByID(ctx, userID, rowID)
	if err != nil {
		return nil, &PipelineError{
			Code:    constants.ErrCodeRowNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeRowNotFound),
			Err:     err,
		}
	}

	if dateStr, ok := input[constants.ColDate]; ok {
		parsed, valid := parseFlightDate(dateStr, "")
		if !valid {
			return nil, &PipelineError{
				Code:    constants.ErrCodeRowMissingDate,
				Message: fmt.Sprintf("unparseable date %q", dateStr),
			}
		}
		row.FlightDate = parsed
	}

	aircraft := row.AircraftType
	if a, ok := input[constants.ColAircraftType]; ok {
		if strings.TrimSpace(a) == "" {
			return nil, &PipelineError{
				Code:    constants.ErrCodeRowMissingAircraft,
				Message: constants.GetErrorMessage(constants.ErrCodeRowMissingAircraft),
			}
		}
		aircraft = a
	}

	resolved, unresolved, err := s.resolver.Resolve(ctx, []string{aircraft})
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		return nil, &PipelineError{
			Code:    constants.ErrCodeUnknownAircraft,
			Message: constants.GetErrorMessage(constants.ErrCodeUnknownAircraft),
			Detail:  unresolved,
		}
	}
	info := resolved[aircraft]
	row.AircraftType = info.Name

	for _, col := range constants.InputColumns {
		if v, ok := input[col]; ok {
			row.SetNumericValue(col, parseNumericCell(v))
		}
	}

	ApplyDerivedColumns(row, info)

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, &PipelineError{
			Code:    constants.ErrCodeDatabaseError,
			Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
			Err:     err,
		}
	}

	return rowToResponse(row), nil
}

// DeleteRow removes one row owned by the user.
func (s *LogbookService) DeleteRow(ctx context.Context, userID, rowID string) error {
	if err := s.repo.DeleteByID(ctx, userID, rowID); err != nil {
		return &PipelineError{
			Code:    constants.ErrCodeRowNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeRowNotFound),
			Err:     err,
		}
	}
	return nil
}

// DeleteAllRows removes every row owned by the user and reports how many.
func (s *LogbookService) DeleteAllRows(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, &PipelineError{
			Code:    constants.ErrCodeDatabaseError,
			Message: constants.GetErrorMessage(constants.ErrCodeDatabaseError),
			Err:     err,
		}
	}
	return n, nil
}

// parseNumericCell converts a review-table cell to a number. Blank or
// malformed cells count as zero rather than failing the batch.
func parseNumericCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func rowToResponse(row *gormModels.FlightLogRow) *dtos.LogRowResponse {
	cols := make(map[string]float64, len(constants.NumericColumns))
	for _, col := range constants.NumericColumns {
		cols[col] = row.NumericValue(col)
	}
	return &dtos.LogRowResponse{
		ID:           row.ID,
		FlightDate:   row.FlightDate,
		AircraftType: row.AircraftType,
		Columns:      cols,
	}
}
