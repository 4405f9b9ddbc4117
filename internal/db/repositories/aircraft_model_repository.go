package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormModels "flightdeck/logbook/internal/models/gorm"
)

type AircraftModelRepository struct {
	db *gorm.DB
}

// NewAircraftModelRepository creates a new GORM-based aircraft model repository
func NewAircraftModelRepository(db *gorm.DB) *AircraftModelRepository {
	return &AircraftModelRepository{db: db}
}

// FindByAliases resolves a set of normalized identifiers through the alias
// table in one query. The returned map is keyed by the matched alias;
// identifiers with no match are simply absent.
func (r *AircraftModelRepository) FindByAliases(ctx context.Context, aliases []string) (map[string]gormModels.AircraftModel, error) {
	if len(aliases) == 0 {
		return map[string]gormModels.AircraftModel{}, nil
	}

	var matches []gormModels.AircraftModelAlias
	err := r.db.WithContext(ctx).
		Preload("Model").
		Where("alias IN ?", aliases).
		Find(&matches).Error

	if err != nil {
		return nil, fmt.Errorf("failed to look up aircraft aliases: %w", err)
	}

	result := make(map[string]gormModels.AircraftModel, len(matches))
	for _, m := range matches {
		result[m.Alias] = m.Model
	}
	return result, nil
}

// ListAliases returns every alias with its model preloaded. Used by the
// cache warmer.
func (r *AircraftModelRepository) ListAliases(ctx context.Context) ([]gormModels.AircraftModelAlias, error) {
	var aliases []gormModels.AircraftModelAlias
	err := r.db.WithContext(ctx).
		Preload("Model").
		Find(&aliases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list aircraft aliases: %w", err)
	}
	return aliases, nil
}

// CreateWithAliases persists a newly classified model together with its
// normalized aliases (the canonical name seeded as a self-alias). Conflicts
// on an existing alias are ignored so concurrent write-backs stay safe.
func (r *AircraftModelRepository) CreateWithAliases(ctx context.Context, model *gormModels.AircraftModel, aliases []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.ID == "" {
			model.ID = uuid.NewString()
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(model).Error
		if err != nil {
			return fmt.Errorf("failed to create aircraft model: %w", err)
		}

		// The insert may have hit the conflict path; re-read for the id.
		var stored gormModels.AircraftModel
		if err := tx.Where("name = ?", model.Name).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to re-read aircraft model: %w", err)
		}
		model.ID = stored.ID

		rows := make([]gormModels.AircraftModelAlias, 0, len(aliases))
		for _, alias := range aliases {
			rows = append(rows, gormModels.AircraftModelAlias{
				ID:      uuid.NewString(),
				ModelID: stored.ID,
				Alias:   alias,
			})
		}
		if len(rows) == 0 {
			return nil
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alias"}},
			DoNothing: true,
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to create aircraft aliases: %w", err)
		}
		return nil
	})
}
