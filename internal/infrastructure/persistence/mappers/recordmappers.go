package mappers

import (
	"fmt"

	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/infrastructure/persistence/models"
)

// HealthRecordMapper handles the conversion between health record entities
// and persistence models
type HealthRecordMapper interface {
	ToEntity(model *models.HealthRecordModel) (*server.HealthRecord, error)
	ToModel(entity *server.HealthRecord) (*models.HealthRecordModel, error)
	ToEntities(modelList []*models.HealthRecordModel) ([]*server.HealthRecord, error)
}

type healthRecordMapperImpl struct{}

// NewHealthRecordMapper creates a new health record mapper
func NewHealthRecordMapper() HealthRecordMapper {
	return &healthRecordMapperImpl{}
}

func (m *healthRecordMapperImpl) ToEntity(model *models.HealthRecordModel) (*server.HealthRecord, error) {
	if model == nil {
		return nil, nil
	}

	status, err := server.NewHealthStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to parse health status: %w", err)
	}

	entity, err := server.ReconstructHealthRecord(
		model.ID,
		model.ServerID,
		model.CPUPercent,
		model.MemoryPercent,
		model.DiskPercent,
		model.UptimeSeconds,
		model.ActiveConnections,
		status,
		model.CheckedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct health record: %w", err)
	}
	return entity, nil
}

func (m *healthRecordMapperImpl) ToModel(entity *server.HealthRecord) (*models.HealthRecordModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.HealthRecordModel{
		ID:                entity.ID(),
		ServerID:          entity.ServerID(),
		CPUPercent:        entity.CPUPercent(),
		MemoryPercent:     entity.MemoryPercent(),
		DiskPercent:       entity.DiskPercent(),
		UptimeSeconds:     entity.UptimeSeconds(),
		ActiveConnections: entity.ActiveConnections(),
		Status:            entity.Status().String(),
		CheckedAt:         entity.CheckedAt(),
	}, nil
}

func (m *healthRecordMapperImpl) ToEntities(modelList []*models.HealthRecordModel) ([]*server.HealthRecord, error) {
	entities := make([]*server.HealthRecord, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// RotationLogMapper handles the conversion between rotation log entities
// and persistence models
type RotationLogMapper interface {
	ToEntity(model *models.RotationLogModel) (*subscription.RotationLog, error)
	ToModel(entity *subscription.RotationLog) (*models.RotationLogModel, error)
	ToEntities(modelList []*models.RotationLogModel) ([]*subscription.RotationLog, error)
}

type rotationLogMapperImpl struct{}

// NewRotationLogMapper creates a new rotation log mapper
func NewRotationLogMapper() RotationLogMapper {
	return &rotationLogMapperImpl{}
}

func (m *rotationLogMapperImpl) ToEntity(model *models.RotationLogModel) (*subscription.RotationLog, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := subscription.ReconstructRotationLog(
		model.ID,
		model.SubscriptionID,
		model.FromServerID,
		model.ToServerID,
		subscription.RotationOutcome(model.Outcome),
		model.ErrorMessage,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct rotation log: %w", err)
	}
	return entity, nil
}

func (m *rotationLogMapperImpl) ToModel(entity *subscription.RotationLog) (*models.RotationLogModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.RotationLogModel{
		ID:             entity.ID(),
		SubscriptionID: entity.SubscriptionID(),
		FromServerID:   entity.FromServerID(),
		ToServerID:     entity.ToServerID(),
		Outcome:        string(entity.Outcome()),
		ErrorMessage:   entity.ErrorMessage(),
		CreatedAt:      entity.CreatedAt(),
	}, nil
}

func (m *rotationLogMapperImpl) ToEntities(modelList []*models.RotationLogModel) ([]*subscription.RotationLog, error) {
	entities := make([]*subscription.RotationLog, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
