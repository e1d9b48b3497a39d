package eventbridge

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain/events"
)

// unmarshalableEvent carries a channel, which json.Marshal rejects
type unmarshalableEvent struct {
	events.BaseEvent
	Broken chan struct{} `json:"broken"`
}

func baseEvent(eventType, aggregateID string) events.BaseEvent {
	return events.BaseEvent{
		EventID:     "ev-" + aggregateID,
		EventType:   eventType,
		AggregateID: aggregateID,
		UserID:      "user-1",
		Timestamp:   time.Now(),
	}
}

func TestBuildEntries(t *testing.T) {
	logger := zap.NewNop()

	t.Run("entries align with their events", func(t *testing.T) {
		input := []events.DomainEvent{
			baseEvent(events.EventTypeElementCreated, "el-1"),
			baseEvent(events.EventTypeRelationshipCreated, "rel-1"),
		}

		entries, batched := buildEntries(input, "worldloom-bus", "worldloom.backend", logger)

		require.Len(t, entries, 2)
		require.Len(t, batched, 2)
		for i, entry := range entries {
			assert.Equal(t, batched[i].GetEventType(), aws.ToString(entry.DetailType))
		}
	})

	t.Run("marshal failure skips the event but keeps alignment", func(t *testing.T) {
		input := []events.DomainEvent{
			baseEvent(events.EventTypeElementCreated, "el-1"),
			unmarshalableEvent{BaseEvent: baseEvent(events.EventTypeElementDeleted, "el-2"), Broken: make(chan struct{})},
			baseEvent(events.EventTypeRelationshipDeleted, "rel-1"),
		}

		entries, batched := buildEntries(input, "worldloom-bus", "worldloom.backend", logger)

		require.Len(t, entries, 2)
		require.Len(t, batched, 2)
		assert.Equal(t, events.EventTypeElementCreated, batched[0].GetEventType())
		assert.Equal(t, events.EventTypeRelationshipDeleted, batched[1].GetEventType())
		assert.Equal(t, events.EventTypeRelationshipDeleted, aws.ToString(entries[1].DetailType))
	})

	t.Run("empty input yields no entries", func(t *testing.T) {
		entries, batched := buildEntries(nil, "worldloom-bus", "worldloom.backend", logger)
		assert.Empty(t, entries)
		assert.Empty(t, batched)
	})
}
