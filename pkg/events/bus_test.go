package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribeRoundTrip(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx := context.Background()
	msgs, err := bus.Subscribe(ctx, "USER_INTERRUPT")
	require.NoError(t, err)

	evt := BaseEvent{
		Type:       "USER_INTERRUPT",
		Data:       map[string]interface{}{"session_id": "sess-1", "unit_index": float64(2)},
		OccurredAt: time.Now(),
	}
	require.NoError(t, bus.Publish(ctx, evt))

	select {
	case msg := <-msgs:
		assert.Equal(t, "USER_INTERRUPT", msg.Metadata.Get("event_type"))
		assert.Contains(t, string(msg.Payload), "sess-1")
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("expected a message on the subscribed topic")
	}
}

func TestBusTopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx := context.Background()
	other, err := bus.Subscribe(ctx, "BOT_TURN")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, BaseEvent{Type: "USER_INTERRUPT", Data: map[string]interface{}{}, OccurredAt: time.Now()}))

	select {
	case <-other:
		t.Fatal("did not expect a message on an unrelated topic")
	case <-time.After(100 * time.Millisecond):
	}
}
