package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is the in-process bus used when no NATS server is configured.
// Events published before anyone subscribes are dropped.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

func NewChannelBus(log watermill.LoggerAdapter) *ChannelBus {
	if log == nil {
		log = watermill.NopLogger{}
	}
	return &ChannelBus{pubSub: gochannel.NewGoChannel(gochannel.Config{}, log)}
}

func (b *ChannelBus) Publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(event.EventType(), msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
	}
	return nil
}

// Subscribe delivers events of eventType to handler until ctx is done.
// Undecodable messages are acked and dropped.
func (b *ChannelBus) Subscribe(ctx context.Context, eventType string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, eventType)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}

	go func() {
		for msg := range messages {
			event, err := Decode(msg.Payload)
			if err != nil {
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *ChannelBus) Close() error {
	return b.pubSub.Close()
}
