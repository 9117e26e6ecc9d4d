package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
)

// MemoryStore is an in-memory implementation of the UserStore and TaskStore interfaces
type MemoryStore struct {
	users map[string]core.StoredUser
	tasks map[string]core.TaskList
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]core.StoredUser),
		tasks: make(map[string]core.TaskList),
		now:   time.Now,
	}
}

var (
	_ ports.UserStore = (*MemoryStore)(nil)
	_ ports.TaskStore = (*MemoryStore)(nil)
)

// FindByIdentifier looks up a user by identifier
func (s *MemoryStore) FindByIdentifier(ctx context.Context, identifier string) (core.StoredUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[identifier]
	return user, ok, nil
}

// InsertIfAbsent stores user unless the identifier is taken
func (s *MemoryStore) InsertIfAbsent(ctx context.Context, user core.StoredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Identifier]; exists {
		return core.ErrDuplicateKey
	}
	s.users[user.Identifier] = user
	return nil
}

// List returns the owner's tasks in creation order
func (s *MemoryStore) List(ctx context.Context, owner string) ([]core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.tasks[owner]
	out := make([]core.Task, len(list))
	copy(out, list)
	return out, nil
}

// Create appends a task to its owner's list
func (s *MemoryStore) Create(ctx context.Context, task core.Task) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.tasks[task.Owner].Add(task)
	if err != nil {
		return core.Task{}, err
	}
	s.tasks[task.Owner] = list
	return task, nil
}

// Update replaces title and completion status of an existing task
func (s *MemoryStore) Update(ctx context.Context, task core.Task) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, updated, err := s.tasks[task.Owner].Replace(task, s.now())
	if err != nil {
		return core.Task{}, err
	}
	s.tasks[task.Owner] = list
	return updated, nil
}

// Toggle flips the completion status of a task
func (s *MemoryStore) Toggle(ctx context.Context, owner, id string) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, updated, err := s.tasks[owner].Toggle(id, s.now())
	if err != nil {
		return core.Task{}, err
	}
	s.tasks[owner] = list
	return updated, nil
}

// Delete removes a task
func (s *MemoryStore) Delete(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.tasks[owner].Delete(id)
	if err != nil {
		return err
	}
	s.tasks[owner] = list
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
