package services

import (
	"context"

	"catalog/pkg/logger"
)

// Routing keys of the catalog events.
const (
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductLowStock = "product.low-stock"
)

// EventPublisher delivers catalog events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// deletedPayload is the body of the *.deleted events.
type deletedPayload struct {
	ID string `json:"id"`
}

// publish sends an event when a publisher is configured. Failures are logged
// and never returned: the write they describe has already happened.
func publish(ctx context.Context, pub EventPublisher, log *logger.Logger, routingKey string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, payload); err != nil {
		log.Warn().Err(err).Str("event", routingKey).Msg("failed to publish catalog event")
	}
}
