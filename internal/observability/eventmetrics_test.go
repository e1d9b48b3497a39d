package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldloom-backend/internal/domain/events"
	"worldloom-backend/internal/messaging"
)

func TestMeteredBusCountsByEventType(t *testing.T) {
	metrics := NewCollector("worldloom")
	bus := NewMeteredBus(messaging.NewNoopBus(), metrics)

	// The collector is process-wide; measure deltas, not absolutes
	createdBefore := testutil.ToFloat64(metrics.ElementsCreated)
	deletedBefore := testutil.ToFloat64(metrics.RelationshipsDeleted)

	err := bus.Publish(context.Background(), events.NewElementCreated("el-1", "project-1", "user-1", "character", "Mira"))
	require.NoError(t, err)

	err = bus.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewRelationshipDeleted("rel-1", "project-1", "user-1"),
		events.NewRelationshipDeleted("rel-2", "project-1", "user-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, createdBefore+1, testutil.ToFloat64(metrics.ElementsCreated))
	assert.Equal(t, deletedBefore+2, testutil.ToFloat64(metrics.RelationshipsDeleted))
}
