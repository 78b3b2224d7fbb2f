package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"averon/internal/domain/panel"
	"averon/internal/infrastructure/persistence/mappers"
	"averon/internal/infrastructure/persistence/models"
	apperrors "averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

// InboundRepositoryImpl implements the panel.InboundRepository interface
type InboundRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.InboundMapper
	logger logger.Interface
}

// NewInboundRepository creates a new inbound repository instance
func NewInboundRepository(db *gorm.DB, log logger.Interface) panel.InboundRepository {
	return &InboundRepositoryImpl{
		db:     db,
		mapper: mappers.NewInboundMapper(),
		logger: log,
	}
}

// Upsert inserts or overwrites the inbound row keyed by (server, port).
// Remote truth fully replaces stored attributes; only the row identity and
// creation time survive.
func (r *InboundRepositoryImpl) Upsert(ctx context.Context, inbound *panel.Inbound) error {
	model, err := r.mapper.ToModel(inbound)
	if err != nil {
		return fmt.Errorf("failed to map inbound entity: %w", err)
	}

	var existing models.InboundModel
	err = r.db.WithContext(ctx).
		Where("server_id = ? AND port = ?", model.ServerID, model.Port).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			r.logger.Errorw("failed to create inbound", "server_id", model.ServerID, "port", model.Port, "error", err)
			return fmt.Errorf("failed to create inbound: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up inbound: %w", err)
	default:
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Model(&models.InboundModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"remote_id":    model.RemoteID,
				"protocol":     model.Protocol,
				"tag":          model.Tag,
				"listen":       model.Listen,
				"settings":     model.Settings,
				"enabled":      model.Enabled,
				"last_seen_at": model.LastSeenAt,
				"updated_at":   model.UpdatedAt,
			}).Error; err != nil {
			r.logger.Errorw("failed to update inbound", "inbound_id", existing.ID, "error", err)
			return fmt.Errorf("failed to update inbound: %w", err)
		}
	}

	if inbound.ID() == 0 {
		if err := inbound.SetID(model.ID); err != nil {
			return fmt.Errorf("failed to set inbound ID: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an inbound by its ID
func (r *InboundRepositoryImpl) GetByID(ctx context.Context, id uint) (*panel.Inbound, error) {
	var model models.InboundModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("inbound not found")
		}
		return nil, fmt.Errorf("failed to get inbound: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByServerAndPort retrieves an inbound by its natural key
func (r *InboundRepositoryImpl) GetByServerAndPort(ctx context.Context, serverID uint, port uint16) (*panel.Inbound, error) {
	var model models.InboundModel

	err := r.db.WithContext(ctx).
		Where("server_id = ? AND port = ?", serverID, port).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("inbound not found")
		}
		return nil, fmt.Errorf("failed to get inbound: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByServer retrieves all inbounds for a server
func (r *InboundRepositoryImpl) ListByServer(ctx context.Context, serverID uint) ([]*panel.Inbound, error) {
	var modelList []*models.InboundModel

	if err := r.db.WithContext(ctx).Where("server_id = ?", serverID).Order("port").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list inbounds: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// ListEnabledByServer retrieves enabled inbounds for a server in port order
func (r *InboundRepositoryImpl) ListEnabledByServer(ctx context.Context, serverID uint) ([]*panel.Inbound, error) {
	var modelList []*models.InboundModel

	err := r.db.WithContext(ctx).
		Where("server_id = ? AND enabled = ?", serverID, true).
		Order("port").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled inbounds: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}
