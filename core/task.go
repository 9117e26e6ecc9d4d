package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single todo item owned by a user
type Task struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidateTitle rejects blank task titles
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// NewTask builds an incomplete task with a fresh ID
func NewTask(owner, title string, now time.Time) (Task, error) {
	if err := ValidateTitle(title); err != nil {
		return Task{}, err
	}

	return Task{
		ID:        uuid.New().String(),
		Owner:     owner,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TaskList is an ordered list of tasks.
// Its methods never modify the receiver; they return an updated copy.
type TaskList []Task

// Find returns the task with the given ID
func (l TaskList) Find(id string) (Task, bool) {
	if i := l.index(id); i >= 0 {
		return l[i], true
	}
	return Task{}, false
}

// Add appends task to the list
func (l TaskList) Add(task Task) (TaskList, error) {
	if err := ValidateTitle(task.Title); err != nil {
		return l, err
	}
	if l.index(task.ID) >= 0 {
		return l, ErrDuplicateKey
	}

	out := make(TaskList, len(l), len(l)+1)
	copy(out, l)
	return append(out, task), nil
}

// Toggle flips the completion status of a task
func (l TaskList) Toggle(id string, now time.Time) (TaskList, Task, error) {
	return l.modify(id, func(t *Task) error {
		t.Completed = !t.Completed
		t.UpdatedAt = now
		return nil
	})
}

// UpdateTitle renames a task
func (l TaskList) UpdateTitle(id, title string, now time.Time) (TaskList, Task, error) {
	if err := ValidateTitle(title); err != nil {
		return l, Task{}, err
	}

	return l.modify(id, func(t *Task) error {
		t.Title = title
		t.UpdatedAt = now
		return nil
	})
}

// Replace overwrites title and completion status of the task with task.ID
func (l TaskList) Replace(task Task, now time.Time) (TaskList, Task, error) {
	if err := ValidateTitle(task.Title); err != nil {
		return l, Task{}, err
	}

	return l.modify(task.ID, func(t *Task) error {
		t.Title = task.Title
		t.Completed = task.Completed
		t.UpdatedAt = now
		return nil
	})
}

// Delete removes a task from the list
func (l TaskList) Delete(id string) (TaskList, error) {
	i := l.index(id)
	if i < 0 {
		return l, ErrTaskNotFound
	}

	out := make(TaskList, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

func (l TaskList) modify(id string, fn func(*Task) error) (TaskList, Task, error) {
	i := l.index(id)
	if i < 0 {
		return l, Task{}, ErrTaskNotFound
	}

	out := make(TaskList, len(l))
	copy(out, l)
	if err := fn(&out[i]); err != nil {
		return l, Task{}, err
	}
	return out, out[i], nil
}

func (l TaskList) index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}
