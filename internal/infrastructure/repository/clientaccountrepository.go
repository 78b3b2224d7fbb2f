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

// ClientAccountRepositoryImpl implements the panel.ClientAccountRepository interface
type ClientAccountRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ClientAccountMapper
	logger logger.Interface
}

// NewClientAccountRepository creates a new client account repository instance
func NewClientAccountRepository(db *gorm.DB, log logger.Interface) panel.ClientAccountRepository {
	return &ClientAccountRepositoryImpl{
		db:     db,
		mapper: mappers.NewClientAccountMapper(),
		logger: log,
	}
}

// Upsert inserts or overwrites the client account row keyed by
// (inbound, email). Traffic totals, expiry and enable flag always reflect
// the last remote listing.
func (r *ClientAccountRepositoryImpl) Upsert(ctx context.Context, account *panel.ClientAccount) error {
	model, err := r.mapper.ToModel(account)
	if err != nil {
		return fmt.Errorf("failed to map client account entity: %w", err)
	}

	var existing models.ClientAccountModel
	err = r.db.WithContext(ctx).
		Where("inbound_id = ? AND email = ?", model.InboundID, model.Email).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			r.logger.Errorw("failed to create client account", "inbound_id", model.InboundID, "email", model.Email, "error", err)
			return fmt.Errorf("failed to create client account: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up client account: %w", err)
	default:
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Model(&models.ClientAccountModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"uuid":           model.UUID,
				"upload_bytes":   model.UploadBytes,
				"download_bytes": model.DownloadBytes,
				"total_bytes":    model.TotalBytes,
				"expires_at":     model.ExpiresAt,
				"enabled":        model.Enabled,
				"last_seen_at":   model.LastSeenAt,
				"updated_at":     model.UpdatedAt,
			}).Error; err != nil {
			r.logger.Errorw("failed to update client account", "account_id", existing.ID, "error", err)
			return fmt.Errorf("failed to update client account: %w", err)
		}
	}

	if account.ID() == 0 {
		if err := account.SetID(model.ID); err != nil {
			return fmt.Errorf("failed to set client account ID: %w", err)
		}
	}
	return nil
}

// GetByInboundAndEmail retrieves a client account by its natural key
func (r *ClientAccountRepositoryImpl) GetByInboundAndEmail(ctx context.Context, inboundID uint, email string) (*panel.ClientAccount, error) {
	var model models.ClientAccountModel

	err := r.db.WithContext(ctx).
		Where("inbound_id = ? AND email = ?", inboundID, email).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("client account not found")
		}
		return nil, fmt.Errorf("failed to get client account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByInbound retrieves all client accounts under an inbound
func (r *ClientAccountRepositoryImpl) ListByInbound(ctx context.Context, inboundID uint) ([]*panel.ClientAccount, error) {
	var modelList []*models.ClientAccountModel

	if err := r.db.WithContext(ctx).Where("inbound_id = ?", inboundID).Order("email").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list client accounts: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// CountByServer counts client accounts across all of a server's inbounds
func (r *ClientAccountRepositoryImpl) CountByServer(ctx context.Context, serverID uint) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.ClientAccountModel{}).
		Joins("JOIN inbounds ON inbounds.id = client_accounts.inbound_id").
		Where("inbounds.server_id = ?", serverID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count client accounts: %w", err)
	}
	return count, nil
}
