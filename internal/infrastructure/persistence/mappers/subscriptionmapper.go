package mappers

import (
	"fmt"

	"averon/internal/domain/subscription"
	"averon/internal/infrastructure/persistence/models"
)

// SubscriptionMapper handles the conversion between subscription entities
// and persistence models
type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(modelList []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type subscriptionMapperImpl struct{}

// NewSubscriptionMapper creates a new subscription mapper
func NewSubscriptionMapper() SubscriptionMapper {
	return &subscriptionMapperImpl{}
}

func (m *subscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := subscription.ReconstructSubscription(
		model.ID,
		model.UserID,
		subscription.Status(model.Status),
		model.ServerID,
		model.InboundID,
		model.ClientEmail,
		model.ClientUUID,
		model.TrafficLimitBytes,
		model.TrafficUsedBytes,
		model.ExpiresAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription: %w", err)
	}
	return entity, nil
}

func (m *subscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SubscriptionModel{
		ID:                entity.ID(),
		UserID:            entity.UserID(),
		Status:            string(entity.Status()),
		ServerID:          entity.ServerID(),
		InboundID:         entity.InboundID(),
		ClientEmail:       entity.ClientEmail(),
		ClientUUID:        entity.ClientUUID(),
		TrafficLimitBytes: entity.TrafficLimitBytes(),
		TrafficUsedBytes:  entity.TrafficUsedBytes(),
		ExpiresAt:         entity.ExpiresAt(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}

func (m *subscriptionMapperImpl) ToEntities(modelList []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(modelList))
	for _, model := range modelList {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
