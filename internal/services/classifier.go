package services

import (
	"context"

	"flightdeck/logbook/internal/models/dtos"
)

// Classifier is the external LLM/OCR collaborator. The production
// implementation is common.ClassifierService; tests stub it.
type Classifier interface {
	ExtractTable(ctx context.Context, filename, mimeType string, data []byte) (string, error)
	GuessKeyColumns(ctx context.Context, headers []string, sample [][]string) (*dtos.KeyColumnGuess, error)
	SuggestColumns(ctx context.Context, headers []string, sample [][]string, catalog []string) ([]dtos.ColumnSuggestion, error)
	ClassifyAircraft(ctx context.Context, identifiers []string) ([]dtos.AircraftClassification, error)
}
