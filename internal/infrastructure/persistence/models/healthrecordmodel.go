package models

import "time"

// HealthRecordModel represents the database persistence model for health
// records. Rows are append-only snapshots and never updated.
type HealthRecordModel struct {
	ID                uint    `gorm:"primarykey"`
	ServerID          uint    `gorm:"not null;index:idx_health_records_server"`
	CPUPercent        float64 `gorm:"not null;default:0"`
	MemoryPercent     float64 `gorm:"not null;default:0"`
	DiskPercent       float64 `gorm:"not null;default:0"`
	UptimeSeconds     uint64  `gorm:"not null;default:0"`
	ActiveConnections uint    `gorm:"not null;default:0"`
	Status            string  `gorm:"not null;size:20;index:idx_health_records_status"`
	CheckedAt         time.Time `gorm:"not null;index:idx_health_records_checked_at"`
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM
func (HealthRecordModel) TableName() string {
	return "health_records"
}
