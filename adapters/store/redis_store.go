package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// RedisStore is a Redis implementation of the UserStore and TaskStore interfaces
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "todo:",
		now:    time.Now,
	}
}

var (
	_ ports.UserStore = (*RedisStore)(nil)
	_ ports.TaskStore = (*RedisStore)(nil)
)

type redisTask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *RedisStore) userKey(identifier string) string {
	return s.prefix + "user:" + identifier
}

func (s *RedisStore) tasksKey(owner string) string {
	return s.prefix + "tasks:" + owner
}

// FindByIdentifier looks up a user in Redis
func (s *RedisStore) FindByIdentifier(ctx context.Context, identifier string) (core.StoredUser, bool, error) {
	val, err := s.client.Get(ctx, s.userKey(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.StoredUser{}, false, nil
		}
		return core.StoredUser{}, false, fmt.Errorf("failed to get user: %w", err)
	}

	var user core.StoredUser
	if err := json.Unmarshal(val, &user); err != nil {
		return core.StoredUser{}, false, fmt.Errorf("failed to decode user: %w", err)
	}

	return user, true, nil
}

// InsertIfAbsent stores user with SETNX so that concurrent registrations cannot overwrite each other
func (s *RedisStore) InsertIfAbsent(ctx context.Context, user core.StoredUser) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.userKey(user.Identifier), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	if !ok {
		return core.ErrDuplicateKey
	}

	return nil
}

// List returns the owner's tasks ordered by creation time
func (s *RedisStore) List(ctx context.Context, owner string) ([]core.Task, error) {
	fields, err := s.client.HGetAll(ctx, s.tasksKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]core.Task, 0, len(fields))
	for _, raw := range fields {
		task, err := decodeTask(owner, raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// Create stores a new task
func (s *RedisStore) Create(ctx context.Context, task core.Task) (core.Task, error) {
	if err := core.ValidateTitle(task.Title); err != nil {
		return core.Task{}, err
	}

	payload, err := encodeTask(task)
	if err != nil {
		return core.Task{}, err
	}

	ok, err := s.client.HSetNX(ctx, s.tasksKey(task.Owner), task.ID, payload).Result()
	if err != nil {
		return core.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	if !ok {
		return core.Task{}, core.ErrDuplicateKey
	}

	return task, nil
}

// Update replaces title and completion status of an existing task
func (s *RedisStore) Update(ctx context.Context, task core.Task) (core.Task, error) {
	if err := core.ValidateTitle(task.Title); err != nil {
		return core.Task{}, err
	}

	return s.modify(ctx, task.Owner, task.ID, func(t *core.Task) {
		t.Title = task.Title
		t.Completed = task.Completed
	})
}

// Toggle flips the completion status of a task
func (s *RedisStore) Toggle(ctx context.Context, owner, id string) (core.Task, error) {
	return s.modify(ctx, owner, id, func(t *core.Task) {
		t.Completed = !t.Completed
	})
}

// Delete removes a task
func (s *RedisStore) Delete(ctx context.Context, owner, id string) error {
	n, err := s.client.HDel(ctx, s.tasksKey(owner), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return core.ErrTaskNotFound
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// modify runs a read-modify-write of a single task under WATCH
func (s *RedisStore) modify(ctx context.Context, owner, id string, fn func(*core.Task)) (core.Task, error) {
	key := s.tasksKey(owner)
	var result core.Task

	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return core.ErrTaskNotFound
			}
			return fmt.Errorf("failed to get task: %w", err)
		}

		task, err := decodeTask(owner, raw)
		if err != nil {
			return err
		}
		fn(&task)
		task.UpdatedAt = s.now()

		payload, err := encodeTask(task)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, payload)
			return nil
		})
		if err != nil {
			return err
		}

		result = task
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return core.Task{}, err
		}
		return result, nil
	}

	return core.Task{}, fmt.Errorf("failed to update task: too much contention on %s", key)
}

func encodeTask(task core.Task) (string, error) {
	payload, err := json.Marshal(redisTask{
		ID:        task.ID,
		Title:     task.Title,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}
	return string(payload), nil
}

func decodeTask(owner, raw string) (core.Task, error) {
	var rt redisTask
	if err := json.Unmarshal([]byte(raw), &rt); err != nil {
		return core.Task{}, fmt.Errorf("failed to decode task: %w", err)
	}
	return core.Task{
		ID:        rt.ID,
		Owner:     owner,
		Title:     rt.Title,
		Completed: rt.Completed,
		CreatedAt: rt.CreatedAt,
		UpdatedAt: rt.UpdatedAt,
	}, nil
}
