package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/walletlink/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, NewZerologAdapter(zerolog.Nop()))
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, DefaultTopic)
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubSub, "")
	event := core.Event{
		Kind: core.EventWalletConnected,
		Data: core.EventData{RequestID: "req-1", Account: "rABC"},
		At:   time.Now(),
	}
	require.NoError(t, pub.PublishLifecycle(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "wallet_connected", msg.Metadata.Get("kind"))
		assert.Equal(t, "req-1", msg.Metadata.Get("request_id"))

		var decoded core.Event
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, core.EventWalletConnected, decoded.Kind)
		assert.Equal(t, "rABC", decoded.Data.Account)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(topic string, messages ...*message.Message) error {
	return errors.New("broker down")
}

func (failingPublisher) Close() error { return nil }

func TestForwarderSwallowsErrors(t *testing.T) {
	pub := NewWatermillPublisher(failingPublisher{}, "custom.topic")

	err := pub.PublishLifecycle(context.Background(), core.Event{Kind: core.EventWalletError})
	assert.Error(t, err)

	forward := Forwarder(pub, zerolog.Nop())
	assert.NotPanics(t, func() {
		forward(core.Event{Kind: core.EventWalletError})
	})
}
