package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"averon/internal/domain/server"
	"averon/internal/infrastructure/persistence/mappers"
	"averon/internal/infrastructure/persistence/models"
	"averon/internal/shared/logger"
)

// HealthRecordRepositoryImpl implements the server.HealthRecordRepository
// interface. Records are append-only; there is no update path.
type HealthRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.HealthRecordMapper
	logger logger.Interface
}

// NewHealthRecordRepository creates a new health record repository instance
func NewHealthRecordRepository(db *gorm.DB, log logger.Interface) server.HealthRecordRepository {
	return &HealthRecordRepositoryImpl{
		db:     db,
		mapper: mappers.NewHealthRecordMapper(),
		logger: log,
	}
}

// Create appends a health record
func (r *HealthRecordRepositoryImpl) Create(ctx context.Context, record *server.HealthRecord) error {
	model, err := r.mapper.ToModel(record)
	if err != nil {
		return fmt.Errorf("failed to map health record entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create health record", "server_id", model.ServerID, "error", err)
		return fmt.Errorf("failed to create health record: %w", err)
	}

	if err := record.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set health record ID: %w", err)
	}
	return nil
}

// ListByServer retrieves the most recent health records for a server
func (r *HealthRecordRepositoryImpl) ListByServer(ctx context.Context, serverID uint, limit int) ([]*server.HealthRecord, error) {
	var modelList []*models.HealthRecordModel

	query := r.db.WithContext(ctx).
		Where("server_id = ?", serverID).
		Order("checked_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
