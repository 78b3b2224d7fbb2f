// Package mappers handles the conversion between domain entities and
// persistence models.
package mappers

import (
	"fmt"

	"averon/internal/domain/server"
	"averon/internal/infrastructure/persistence/models"
)

// ServerMapper handles the conversion between server entities and persistence models
type ServerMapper interface {
	ToEntity(model *models.ServerModel) (*server.Server, error)
	ToModel(entity *server.Server) (*models.ServerModel, error)
	ToEntities(modelList []*models.ServerModel) ([]*server.Server, error)
}

type serverMapperImpl struct{}

// NewServerMapper creates a new server mapper
func NewServerMapper() ServerMapper {
	return &serverMapperImpl{}
}

func (m *serverMapperImpl) ToEntity(model *models.ServerModel) (*server.Server, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := server.ReconstructServer(
		model.ID,
		model.Name,
		model.APIURL,
		model.APIPort,
		model.Username,
		model.Password,
		model.MaxUsers,
		model.CurrentUsers,
		model.IsActive,
		model.IsSynced,
		model.LastSyncAt,
		model.IsHealthy,
		model.ConsecutiveFailures,
		model.TrafficUp,
		model.TrafficDown,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct server: %w", err)
	}
	return entity, nil
}

func (m *serverMapperImpl) ToModel(entity *server.Server) (*models.ServerModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.ServerModel{
		ID:                  entity.ID(),
		Name:                entity.Name(),
		APIURL:              entity.APIURL(),
		APIPort:             entity.APIPort(),
		Username:            entity.Username(),
		Password:            entity.Password(),
		MaxUsers:            entity.MaxUsers(),
		CurrentUsers:        entity.CurrentUsers(),
		IsActive:            entity.IsActive(),
		IsSynced:            entity.IsSynced(),
		LastSyncAt:          entity.LastSyncAt(),
		IsHealthy:           entity.IsHealthy(),
		ConsecutiveFailures: entity.ConsecutiveFailures(),
		TrafficUp:           entity.TrafficUp(),
		TrafficDown:         entity.TrafficDown(),
		CreatedAt:           entity.CreatedAt(),
		UpdatedAt:           entity.UpdatedAt(),
	}, nil
}

func (m *serverMapperImpl) ToEntities(modelList []*models.ServerModel) ([]*server.Server, error) {
	entities := make([]*server.Server, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
