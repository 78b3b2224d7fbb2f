// Package repository provides gorm-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"averon/internal/domain/server"
	"averon/internal/infrastructure/persistence/mappers"
	"averon/internal/infrastructure/persistence/models"
	apperrors "averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

// ServerRepositoryImpl implements the server.Repository interface
type ServerRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ServerMapper
	logger logger.Interface
}

// NewServerRepository creates a new server repository instance
func NewServerRepository(db *gorm.DB, log logger.Interface) server.Repository {
	return &ServerRepositoryImpl{
		db:     db,
		mapper: mappers.NewServerMapper(),
		logger: log,
	}
}

// Create creates a new server in the database
func (r *ServerRepositoryImpl) Create(ctx context.Context, srv *server.Server) error {
	model, err := r.mapper.ToModel(srv)
	if err != nil {
		return fmt.Errorf("failed to map server entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("server with this name already exists")
		}
		r.logger.Errorw("failed to create server", "error", err)
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set server ID: %w", err)
	}
	return nil
}

// GetByID retrieves a server by its ID
func (r *ServerRepositoryImpl) GetByID(ctx context.Context, id uint) (*server.Server, error) {
	var model models.ServerModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("server not found")
		}
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// List retrieves all servers
func (r *ServerRepositoryImpl) List(ctx context.Context) ([]*server.Server, error) {
	var modelList []*models.ServerModel

	if err := r.db.WithContext(ctx).Order("id").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// ListActive retrieves all active servers
func (r *ServerRepositoryImpl) ListActive(ctx context.Context) ([]*server.Server, error) {
	var modelList []*models.ServerModel

	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list active servers: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// Update persists the server's current state
func (r *ServerRepositoryImpl) Update(ctx context.Context, srv *server.Server) error {
	if srv.ID() == 0 {
		return apperrors.NewValidationError("server ID is required for update")
	}

	model, err := r.mapper.ToModel(srv)
	if err != nil {
		return fmt.Errorf("failed to map server entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.ServerModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":                 model.Name,
			"api_url":              model.APIURL,
			"api_port":             model.APIPort,
			"username":             model.Username,
			"password":             model.Password,
			"max_users":            model.MaxUsers,
			"current_users":        model.CurrentUsers,
			"is_active":            model.IsActive,
			"is_synced":            model.IsSynced,
			"last_sync_at":         model.LastSyncAt,
			"is_healthy":           model.IsHealthy,
			"consecutive_failures": model.ConsecutiveFailures,
			"traffic_up":           model.TrafficUp,
			"traffic_down":         model.TrafficDown,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update server", "server_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update server: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("server not found")
	}
	return nil
}
