package gorm

import "time"

// AircraftModel is the canonical identity for an aircraft type, with the
// five boolean attributes the derived-column generator gates on.
type AircraftModel struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	Name         string    `gorm:"column:name;uniqueIndex"`
	SingleEngine bool      `gorm:"column:single_engine;default:false"`
	FixedWing    bool      `gorm:"column:fixed_wing;default:false"`
	Turbine      bool      `gorm:"column:turbine;default:false"`
	Helicopter   bool      `gorm:"column:helicopter;default:false"`
	Military     bool      `gorm:"column:military;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Aliases []AircraftModelAlias `gorm:"foreignKey:ModelID"`
}

// TableName specifies the table name for GORM
func (AircraftModel) TableName() string {
	return "aircraft_models"
}

// AircraftModelAlias indexes a normalized identifier (the canonical name
// itself included) back to its model. Lookups always go through this table.
type AircraftModelAlias struct {
	ID      string `gorm:"column:id;primaryKey;type:uuid"`
	ModelID string `gorm:"column:model_id;type:uuid;index"`
	Alias   string `gorm:"column:alias;uniqueIndex"`

	Model AircraftModel `gorm:"foreignKey:ModelID"`
}

// TableName specifies the table name for GORM
func (AircraftModelAlias) TableName() string {
	return "aircraft_model_aliases"
}
