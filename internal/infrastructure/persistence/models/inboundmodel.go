package models

import (
	"time"

	"gorm.io/datatypes"
)

// InboundModel represents the database persistence model for inbounds.
// Rows mirror remote panel state and are written only by reconciliation.
type InboundModel struct {
	ID         uint   `gorm:"primarykey"`
	ServerID   uint   `gorm:"not null;uniqueIndex:idx_inbounds_server_port"`
	RemoteID   int    `gorm:"not null"`
	Port       uint16 `gorm:"not null;uniqueIndex:idx_inbounds_server_port"`
	Protocol   string `gorm:"not null;size:20;index:idx_inbounds_protocol"`
	Tag        string `gorm:"size:100"`
	Listen     string `gorm:"size:255"`
	Settings   datatypes.JSON
	Enabled    bool      `gorm:"not null;default:true"`
	LastSeenAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (InboundModel) TableName() string {
	return "inbounds"
}
