// Package messaging defines the event bus port used by the service layer.
package messaging

import (
	"context"

	"worldloom-backend/internal/domain/events"
)

// EventBus publishes domain events to interested consumers. Publishing is
// best-effort: services log failures and continue, mutations are never
// rolled back because an event could not be delivered.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error
}

// NoopBus discards every event. Used in tests and local mode.
type NoopBus struct{}

// NewNoopBus creates a NoopBus
func NewNoopBus() *NoopBus { return &NoopBus{} }

func (NoopBus) Publish(ctx context.Context, event events.DomainEvent) error { return nil }

func (NoopBus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	return nil
}
