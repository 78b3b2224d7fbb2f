package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"averon/internal/domain/subscription"
	"averon/internal/infrastructure/persistence/mappers"
	"averon/internal/infrastructure/persistence/models"
	"averon/internal/shared/logger"
)

// RotationLogRepositoryImpl implements the subscription.RotationLogRepository
// interface. Rows are append-only; there is no update path.
type RotationLogRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.RotationLogMapper
	logger logger.Interface
}

// NewRotationLogRepository creates a new rotation log repository instance
func NewRotationLogRepository(db *gorm.DB, log logger.Interface) subscription.RotationLogRepository {
	return &RotationLogRepositoryImpl{
		db:     db,
		mapper: mappers.NewRotationLogMapper(),
		logger: log,
	}
}

// Create appends a rotation log row
func (r *RotationLogRepositoryImpl) Create(ctx context.Context, log *subscription.RotationLog) error {
	model, err := r.mapper.ToModel(log)
	if err != nil {
		return fmt.Errorf("failed to map rotation log entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create rotation log", "subscription_id", model.SubscriptionID, "error", err)
		return fmt.Errorf("failed to create rotation log: %w", err)
	}

	if err := log.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set rotation log ID: %w", err)
	}
	return nil
}

// ListBySubscription retrieves the most recent rotation attempts for a subscription
func (r *RotationLogRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*subscription.RotationLog, error) {
	var modelList []*models.RotationLogModel

	query := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list rotation logs: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
