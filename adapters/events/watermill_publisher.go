package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
)

// DefaultTopic is where lifecycle events are published
const DefaultTopic = "walletlink.lifecycle"

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher. An empty topic
// selects DefaultTopic.
func NewWatermillPublisher(publisher message.Publisher, topic string) *WatermillPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishLifecycle publishes a lifecycle event as a JSON message
func (p *WatermillPublisher) PublishLifecycle(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("kind", string(event.Kind))
	if event.Data.RequestID != "" {
		msg.Metadata.Set("request_id", event.Data.RequestID)
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Forwarder returns a bus listener that forwards every event. Publish
// failures are logged, the bus never sees them.
func Forwarder(pub ports.EventPublisher, logger zerolog.Logger) func(core.Event) {
	return func(event core.Event) {
		if err := pub.PublishLifecycle(context.Background(), event); err != nil {
			logger.Warn().Err(err).Str("kind", string(event.Kind)).Msg("Failed to forward lifecycle event")
		}
	}
}
