package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gormModels "flightdeck/logbook/internal/models/gorm"
)

type FlightLogRepository struct {
	db *gorm.DB
}

// NewFlightLogRepository creates a new GORM-based flight log repository
func NewFlightLogRepository(db *gorm.DB) *FlightLogRepository {
	return &FlightLogRepository{db: db}
}

// InsertBatch persists a validated batch inside one transaction. The batch
// is all-or-nothing: a failure on any row rolls back every insert.
func (r *FlightLogRepository) InsertBatch(ctx context.Context, rows []gormModels.FlightLogRow) error {
	if len(rows) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})

	if err != nil {
		return fmt.Errorf("failed to insert flight log rows: %w", err)
	}

	return nil
}

// GetByID fetches one row scoped to its owning user.
func (r *FlightLogRepository) GetByID(ctx context.Context, userID, rowID string) (*gormModels.FlightLogRow, error) {
	var row gormModels.FlightLogRow

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		First(&row).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch flight log row: %w", err)
	}

	return &row, nil
}

// Update saves a full row after an edit/recompute.
func (r *FlightLogRepository) Update(ctx context.Context, row *gormModels.FlightLogRow) error {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("failed to update flight log row: %w", err)
	}
	return nil
}

// DeleteByID removes one row scoped to its owning user. Returns
// gorm.ErrRecordNotFound when nothing matched.
func (r *FlightLogRepository) DeleteByID(ctx context.Context, userID, rowID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", rowID, userID).
		Delete(&gormModels.FlightLogRow{})

	if res.Error != nil {
		return fmt.Errorf("failed to delete flight log row: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllForUser bulk-deletes every row owned by the user and returns the
// number removed.
func (r *FlightLogRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&gormModels.FlightLogRow{})

	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete flight log rows: %w", res.Error)
	}
	return res.RowsAffected, nil
}
