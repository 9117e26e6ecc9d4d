package ports

import (
	"context"

	"github.com/layer-3/todo/core"
)

// UserStore persists accounts keyed by identifier
type UserStore interface {
	// FindByIdentifier returns the user and true, or false when no such user exists
	FindByIdentifier(ctx context.Context, identifier string) (core.StoredUser, bool, error)

	// InsertIfAbsent stores a new user; it returns core.ErrDuplicateKey
	// instead of overwriting an existing record
	InsertIfAbsent(ctx context.Context, user core.StoredUser) error
}

// TaskStore persists tasks scoped by owner.
// Operations on an unknown (owner, id) pair return core.ErrTaskNotFound.
type TaskStore interface {
	List(ctx context.Context, owner string) ([]core.Task, error)
	Create(ctx context.Context, task core.Task) (core.Task, error)
	Update(ctx context.Context, task core.Task) (core.Task, error)
	Toggle(ctx context.Context, owner, id string) (core.Task, error)
	Delete(ctx context.Context, owner, id string) error
}
