// Package models holds the database persistence models, the
// anti-corruption layer between the domain and the relational store.
package models

import (
	"time"
)

// ServerModel represents the database persistence model for servers
type ServerModel struct {
	ID                  uint   `gorm:"primarykey"`
	Name                string `gorm:"uniqueIndex;not null;size:100"`
	APIURL              string `gorm:"not null;size:255"`
	APIPort             uint16 `gorm:"not null"`
	Username            string `gorm:"not null;size:100"`
	Password            string `gorm:"not null;size:255"`
	MaxUsers            uint   `gorm:"not null;default:0"`
	CurrentUsers        uint   `gorm:"not null;default:0"`
	IsActive            bool   `gorm:"not null;default:true;index:idx_servers_active"`
	IsSynced            bool   `gorm:"not null;default:false"`
	LastSyncAt          *time.Time
	IsHealthy           bool   `gorm:"not null;default:true;index:idx_servers_healthy"`
	ConsecutiveFailures int    `gorm:"not null;default:0"`
	TrafficUp           uint64 `gorm:"not null;default:0"`
	TrafficDown         uint64 `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName specifies the table name for GORM
func (ServerModel) TableName() string {
	return "servers"
}
