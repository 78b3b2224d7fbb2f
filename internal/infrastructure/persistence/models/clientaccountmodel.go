package models

import "time"

// ClientAccountModel represents the database persistence model for client
// accounts. Rows mirror remote panel state and are written only by
// reconciliation.
type ClientAccountModel struct {
	ID            uint   `gorm:"primarykey"`
	InboundID     uint   `gorm:"not null;uniqueIndex:idx_clients_inbound_email"`
	Email         string `gorm:"not null;size:255;uniqueIndex:idx_clients_inbound_email"`
	UUID          string `gorm:"size:64"`
	UploadBytes   uint64 `gorm:"not null;default:0"`
	DownloadBytes uint64 `gorm:"not null;default:0"`
	TotalBytes    uint64 `gorm:"not null;default:0"`
	ExpiresAt     *time.Time
	Enabled       bool      `gorm:"not null;default:true"`
	LastSeenAt    time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (ClientAccountModel) TableName() string {
	return "client_accounts"
}
