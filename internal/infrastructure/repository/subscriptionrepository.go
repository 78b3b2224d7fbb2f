package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"averon/internal/domain/subscription"
	"averon/internal/infrastructure/persistence/mappers"
	"averon/internal/infrastructure/persistence/models"
	apperrors "averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

// SubscriptionRepositoryImpl implements the subscription.Repository interface.
// The engine touches only the binding columns; everything else on the table
// belongs to billing.
type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB, log logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: log,
	}
}

// GetByID retrieves a subscription by its ID
func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListActiveByServer retrieves active subscriptions currently bound to a server
func (r *SubscriptionRepositoryImpl) ListActiveByServer(ctx context.Context, serverID uint) ([]*subscription.Subscription, error) {
	var modelList []*models.SubscriptionModel

	err := r.db.WithContext(ctx).
		Where("server_id = ? AND status = ?", serverID, string(subscription.StatusActive)).
		Order("id").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// UpdateBinding rewrites only the server/inbound/client reference columns
func (r *SubscriptionRepositoryImpl) UpdateBinding(ctx context.Context, sub *subscription.Subscription) error {
	if sub.ID() == 0 {
		return apperrors.NewValidationError("subscription ID is required for update")
	}

	result := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID()).
		Updates(map[string]interface{}{
			"server_id":    sub.ServerID(),
			"inbound_id":   sub.InboundID(),
			"client_email": sub.ClientEmail(),
			"client_uuid":  sub.ClientUUID(),
			"updated_at":   sub.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription binding", "subscription_id", sub.ID(), "error", result.Error)
		return fmt.Errorf("failed to update subscription binding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("subscription not found")
	}
	return nil
}
