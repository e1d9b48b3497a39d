package observability

import (
	"context"

	"worldloom-backend/internal/domain/events"
	"worldloom-backend/internal/messaging"
)

// MeteredBus decorates an event bus with Prometheus counters. Counting
// happens before delegation so disabled or failing delivery still counts
// the mutation that raised the event.
type MeteredBus struct {
	next    messaging.EventBus
	metrics *Collector
}

// NewMeteredBus wraps the given bus with metric counting
func NewMeteredBus(next messaging.EventBus, metrics *Collector) *MeteredBus {
	return &MeteredBus{next: next, metrics: metrics}
}

func (b *MeteredBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.count(event)
	return b.next.Publish(ctx, event)
}

func (b *MeteredBus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		b.count(event)
	}
	return b.next.PublishBatch(ctx, domainEvents)
}

func (b *MeteredBus) count(event events.DomainEvent) {
	switch event.GetEventType() {
	case events.EventTypeProjectCreated:
		b.metrics.ProjectsCreated.Inc()
	case events.EventTypeProjectDeleted:
		b.metrics.ProjectsDeleted.Inc()
	case events.EventTypeElementCreated:
		b.metrics.ElementsCreated.Inc()
	case events.EventTypeElementDeleted:
		b.metrics.ElementsDeleted.Inc()
	case events.EventTypeRelationshipCreated:
		b.metrics.RelationshipsCreated.Inc()
	case events.EventTypeRelationshipDeleted:
		b.metrics.RelationshipsDeleted.Inc()
	}
}
