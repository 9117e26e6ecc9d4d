package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is a SQLite implementation of the UserStore and TaskStore interfaces
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.UserStore = (*SQLiteStore)(nil)
	_ ports.TaskStore = (*SQLiteStore)(nil)
)

// OpenSQLiteStore opens the database file at path and creates the schema if needed
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection serializes writers and keeps the pragma below in effect
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := initializeSQLite(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		now: time.Now,
	}, nil
}

func initializeSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			identifier    TEXT    PRIMARY KEY,
			password_hash TEXT    NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create users: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT    PRIMARY KEY,
			owner      TEXT    NOT NULL,
			title      TEXT    NOT NULL,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS tasks_owner_created_at_idx ON tasks (owner, created_at)",
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

// FindByIdentifier looks up a user row
func (s *SQLiteStore) FindByIdentifier(ctx context.Context, identifier string) (core.StoredUser, bool, error) {
	var (
		user      core.StoredUser
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT identifier, password_hash, created_at FROM users WHERE identifier = ?",
		identifier,
	).Scan(&user.Identifier, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.StoredUser{}, false, nil
		}
		return core.StoredUser{}, false, fmt.Errorf("query user: %w", err)
	}

	user.CreatedAt = fromUnixNano(createdAt)
	return user, true, nil
}

// InsertIfAbsent inserts a user row relying on the primary key for uniqueness
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, user core.StoredUser) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (identifier, password_hash, created_at) VALUES (?, ?, ?)",
		user.Identifier,
		user.PasswordHash,
		user.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return core.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// List returns the owner's tasks ordered by creation time
func (s *SQLiteStore) List(ctx context.Context, owner string) ([]core.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, completed, created_at, updated_at FROM tasks
		 WHERE owner = ? ORDER BY created_at, id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []core.Task{}
	for rows.Next() {
		task, err := scanSQLiteTask(rows, owner)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	return tasks, nil
}

// Create inserts a task row
func (s *SQLiteStore) Create(ctx context.Context, task core.Task) (core.Task, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner, title, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.Owner, task.Title, task.Completed,
		task.CreatedAt.UnixNano(), task.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return core.Task{}, core.ErrDuplicateKey
		}
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

// Update overwrites title and completion status of a task
func (s *SQLiteStore) Update(ctx context.Context, task core.Task) (core.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = ?, completed = ?, updated_at = ?
		 WHERE owner = ? AND id = ?
		 RETURNING id, title, completed, created_at, updated_at`,
		task.Title, task.Completed, s.now().UnixNano(), task.Owner, task.ID,
	)
	return scanSQLiteTask(row, task.Owner)
}

// Toggle flips the completion status of a task
func (s *SQLiteStore) Toggle(ctx context.Context, owner, id string) (core.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET completed = NOT completed, updated_at = ?
		 WHERE owner = ? AND id = ?
		 RETURNING id, title, completed, created_at, updated_at`,
		s.now().UnixNano(), owner, id,
	)
	return scanSQLiteTask(row, owner)
}

// Delete removes a task row
func (s *SQLiteStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE owner = ? AND id = ?", owner, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return core.ErrTaskNotFound
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner, owner string) (core.Task, error) {
	var (
		task                 = core.Task{Owner: owner}
		createdAt, updatedAt int64
	)

	if err := row.Scan(&task.ID, &task.Title, &task.Completed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("scan task: %w", err)
	}

	task.CreatedAt = fromUnixNano(createdAt)
	task.UpdatedAt = fromUnixNano(updatedAt)
	return task, nil
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isConstraintViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
}
