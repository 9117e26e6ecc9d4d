package ports

import (
	"context"

	"github.com/layer-3/todo/core"
)

// EventPublisher publishes domain events to other instances
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, identifier string) error
	PublishTaskChanged(ctx context.Context, op string, task core.Task) error
}
