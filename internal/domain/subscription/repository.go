package subscription

import "context"

// Repository defines the engine's persistence operations on subscriptions.
// The engine only lists active subscriptions and rewrites bindings; creation
// and lifecycle changes belong to billing.
type Repository interface {
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	ListActiveByServer(ctx context.Context, serverID uint) ([]*Subscription, error)
	UpdateBinding(ctx context.Context, sub *Subscription) error
}

// RotationLogRepository persists append-only rotation records.
type RotationLogRepository interface {
	Create(ctx context.Context, log *RotationLog) error
	ListBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*RotationLog, error)
}
