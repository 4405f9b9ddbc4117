package gorm

import "time"

type User struct {
	ID         string    `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	ExternalID string    `gorm:"column:external_id;uniqueIndex"`
	UserName   *string   `gorm:"column:username"`
	IsActive   bool      `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	FlightLogRows []FlightLogRow `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
