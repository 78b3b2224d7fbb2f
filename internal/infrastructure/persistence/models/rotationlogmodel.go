package models

import "time"

// RotationLogModel represents the database persistence model for rotation
// logs. Rows are append-only and never updated.
type RotationLogModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriptionID uint   `gorm:"not null;index:idx_rotation_logs_subscription"`
	FromServerID   uint   `gorm:"not null;index:idx_rotation_logs_from_server"`
	ToServerID     *uint
	Outcome        string `gorm:"not null;size:20;index:idx_rotation_logs_outcome"`
	ErrorMessage   string `gorm:"size:500"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (RotationLogModel) TableName() string {
	return "rotation_logs"
}
