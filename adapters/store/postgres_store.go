package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/layer-3/todo/adapters/store/migrations"
	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/ports"
	"github.com/pressly/goose/v3"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of the UserStore and TaskStore interfaces
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// OpenPostgresStore connects to dsn with the pgx driver and applies migrations
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return s, nil
}

var (
	_ ports.UserStore = (*PostgresStore)(nil)
	_ ports.TaskStore = (*PostgresStore)(nil)
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, ".")
}

// FindByIdentifier looks up a user row
func (s *PostgresStore) FindByIdentifier(ctx context.Context, identifier string) (core.StoredUser, bool, error) {
	query :=
		`SELECT identifier, password_hash, created_at FROM users
		 WHERE identifier = $1`

	var user core.StoredUser
	err := s.db.QueryRowContext(ctx, query, identifier).Scan(&user.Identifier, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.StoredUser{}, false, nil
		}
		return core.StoredUser{}, false, fmt.Errorf("db error: %w", err)
	}

	return user, true, nil
}

// InsertIfAbsent inserts a user row relying on the primary key for uniqueness
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, user core.StoredUser) error {
	query :=
		`INSERT INTO users (identifier, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (identifier) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query, user.Identifier, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateKey
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return core.ErrDuplicateKey
	}

	return nil
}

// List returns the owner's tasks ordered by creation time
func (s *PostgresStore) List(ctx context.Context, owner string) ([]core.Task, error) {
	query :=
		`SELECT id, title, completed, created_at, updated_at FROM tasks
		 WHERE owner = $1
		 ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	tasks := []core.Task{}
	for rows.Next() {
		task := core.Task{Owner: owner}
		if err := rows.Scan(&task.ID, &task.Title, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tasks, nil
}

// Create inserts a task row
func (s *PostgresStore) Create(ctx context.Context, task core.Task) (core.Task, error) {
	query :=
		`INSERT INTO tasks (id, owner, title, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Owner, task.Title, task.Completed, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Task{}, core.ErrDuplicateKey
		}
		return core.Task{}, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// Update overwrites title and completion status of a task
func (s *PostgresStore) Update(ctx context.Context, task core.Task) (core.Task, error) {
	query :=
		`UPDATE tasks SET title = $3, completed = $4, updated_at = $5
		 WHERE owner = $1 AND id = $2
		 RETURNING id, title, completed, created_at, updated_at`

	row := s.db.QueryRowContext(ctx, query, task.Owner, task.ID, task.Title, task.Completed, s.now())
	return scanTask(row, task.Owner)
}

// Toggle flips the completion status of a task in a single statement
func (s *PostgresStore) Toggle(ctx context.Context, owner, id string) (core.Task, error) {
	query :=
		`UPDATE tasks SET completed = NOT completed, updated_at = $3
		 WHERE owner = $1 AND id = $2
		 RETURNING id, title, completed, created_at, updated_at`

	row := s.db.QueryRowContext(ctx, query, owner, id, s.now())
	return scanTask(row, owner)
}

// Delete removes a task row
func (s *PostgresStore) Delete(ctx context.Context, owner, id string) error {
	query := `DELETE FROM tasks WHERE owner = $1 AND id = $2`

	res, err := s.db.ExecContext(ctx, query, owner, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return core.ErrTaskNotFound
	}

	return nil
}

// Close closes the database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanTask(row *sql.Row, owner string) (core.Task, error) {
	task := core.Task{Owner: owner}
	err := row.Scan(&task.ID, &task.Title, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
