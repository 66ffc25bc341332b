package ports

import (
	"context"

	"github.com/layer-3/walletlink/core"
)

// EventPublisher forwards lifecycle events outside the process
type EventPublisher interface {
	PublishLifecycle(ctx context.Context, event core.Event) error
}
