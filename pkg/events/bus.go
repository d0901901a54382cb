package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process domain event bus every session executor publishes
// to: USER_INTERRUPT, BOT_TURN, STABILITY_BLOCK, and session-completed
// events, for anything downstream (dashboards, the optional audit sink)
// that wants to observe sessions without coupling to dialogue.Machine.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Publish sends one event on a topic equal to its EventType.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	if err := b.pubsub.Publish(event.EventType(), msg); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel of raw message payloads for a topic. The
// caller is responsible for draining it and ack'ing each message.
func (b *Bus) Subscribe(ctx context.Context, eventType string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, eventType)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
