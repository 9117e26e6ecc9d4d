package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
)

const (
	TopicUserRegistered = "todo.user.registered"
	TopicTaskChanged    = "todo.task.changed"
)

// UserRegisteredEvent is published after a new account has been stored
type UserRegisteredEvent struct {
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// TaskChangedEvent is published after a task was created, updated, toggled or deleted
type TaskChangedEvent struct {
	Op        string    `json:"op"`
	Owner     string    `json:"owner"`
	TaskID    string    `json:"task_id"`
	Completed bool      `json:"completed"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	now       func() time.Time
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishUserRegistered publishes a registration event
func (p *WatermillPublisher) PublishUserRegistered(ctx context.Context, identifier string) error {
	return p.publish(ctx, TopicUserRegistered, UserRegisteredEvent{
		Username:     identifier,
		RegisteredAt: p.now().UTC(),
	})
}

// PublishTaskChanged publishes a task change event
func (p *WatermillPublisher) PublishTaskChanged(ctx context.Context, op string, task core.Task) error {
	return p.publish(ctx, TopicTaskChanged, TaskChangedEvent{
		Op:        op,
		Owner:     task.Owner,
		TaskID:    task.ID,
		Completed: task.Completed,
		At:        p.now().UTC(),
	})
}

// Close closes the underlying publisher
func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
