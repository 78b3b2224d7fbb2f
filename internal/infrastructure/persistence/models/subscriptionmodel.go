package models

import "time"

// SubscriptionModel represents the database persistence model for
// subscriptions. The table is owned by billing; the engine reads quota and
// expiry and rewrites the server/inbound/client reference during rotation.
type SubscriptionModel struct {
	ID                uint   `gorm:"primarykey"`
	UserID            uint   `gorm:"not null;index:idx_subscriptions_user"`
	Status            string `gorm:"not null;size:20;index:idx_subscriptions_status"`
	ServerID          uint   `gorm:"not null;index:idx_subscriptions_server"`
	InboundID         uint   `gorm:"not null"`
	ClientEmail       string `gorm:"not null;size:255"`
	ClientUUID        string `gorm:"size:64"`
	TrafficLimitBytes uint64 `gorm:"not null;default:0"`
	TrafficUsedBytes  uint64 `gorm:"not null;default:0"`
	ExpiresAt         time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
