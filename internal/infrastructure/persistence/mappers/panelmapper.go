package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"averon/internal/domain/panel"
	"averon/internal/infrastructure/persistence/models"
)

// InboundMapper handles the conversion between inbound entities and persistence models
type InboundMapper interface {
	ToEntity(model *models.InboundModel) (*panel.Inbound, error)
	ToModel(entity *panel.Inbound) (*models.InboundModel, error)
	ToEntities(modelList []*models.InboundModel) ([]*panel.Inbound, error)
}

type inboundMapperImpl struct{}

// NewInboundMapper creates a new inbound mapper
func NewInboundMapper() InboundMapper {
	return &inboundMapperImpl{}
}

func (m *inboundMapperImpl) ToEntity(model *models.InboundModel) (*panel.Inbound, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := panel.ReconstructInbound(
		model.ID,
		model.ServerID,
		model.RemoteID,
		model.Port,
		model.Protocol,
		model.Tag,
		model.Listen,
		string(model.Settings),
		model.Enabled,
		model.LastSeenAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct inbound: %w", err)
	}
	return entity, nil
}

func (m *inboundMapperImpl) ToModel(entity *panel.Inbound) (*models.InboundModel, error) {
	if entity == nil {
		return nil, nil
	}

	var settings datatypes.JSON
	if entity.Settings() != "" {
		settings = datatypes.JSON(entity.Settings())
	}

	return &models.InboundModel{
		ID:         entity.ID(),
		ServerID:   entity.ServerID(),
		RemoteID:   entity.RemoteID(),
		Port:       entity.Port(),
		Protocol:   entity.Protocol(),
		Tag:        entity.Tag(),
		Listen:     entity.Listen(),
		Settings:   settings,
		Enabled:    entity.Enabled(),
		LastSeenAt: entity.LastSeenAt(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}, nil
}

func (m *inboundMapperImpl) ToEntities(modelList []*models.InboundModel) ([]*panel.Inbound, error) {
	entities := make([]*panel.Inbound, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// ClientAccountMapper handles the conversion between client account entities
// and persistence models
type ClientAccountMapper interface {
	ToEntity(model *models.ClientAccountModel) (*panel.ClientAccount, error)
	ToModel(entity *panel.ClientAccount) (*models.ClientAccountModel, error)
	ToEntities(modelList []*models.ClientAccountModel) ([]*panel.ClientAccount, error)
}

type clientAccountMapperImpl struct{}

// NewClientAccountMapper creates a new client account mapper
func NewClientAccountMapper() ClientAccountMapper {
	return &clientAccountMapperImpl{}
}

func (m *clientAccountMapperImpl) ToEntity(model *models.ClientAccountModel) (*panel.ClientAccount, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := panel.ReconstructClientAccount(
		model.ID,
		model.InboundID,
		model.Email,
		model.UUID,
		model.UploadBytes,
		model.DownloadBytes,
		model.TotalBytes,
		model.ExpiresAt,
		model.Enabled,
		model.LastSeenAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct client account: %w", err)
	}
	return entity, nil
}

func (m *clientAccountMapperImpl) ToModel(entity *panel.ClientAccount) (*models.ClientAccountModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.ClientAccountModel{
		ID:            entity.ID(),
		InboundID:     entity.InboundID(),
		Email:         entity.Email(),
		UUID:          entity.UUID(),
		UploadBytes:   entity.UploadBytes(),
		DownloadBytes: entity.DownloadBytes(),
		TotalBytes:    entity.TotalBytes(),
		ExpiresAt:     entity.ExpiresAt(),
		Enabled:       entity.Enabled(),
		LastSeenAt:    entity.LastSeenAt(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

func (m *clientAccountMapperImpl) ToEntities(modelList []*models.ClientAccountModel) ([]*panel.ClientAccount, error) {
	entities := make([]*panel.ClientAccount, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
