package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kvsingh/neuralmon/internal/model"
)

var (
	ErrDuplicateEmail     = errors.New("storage: email already registered")
	ErrInvalidCredentials = errors.New("storage: invalid email or password")
	ErrUserNotFound       = errors.New("storage: user not found")
)

// Store is the persistence contract. Two implementations exist: the
// SQLite store (default, per-entity rows) and the document store that
// reproduces the original key-value layout. Update and delete of an
// absent story are no-ops, not errors.
type Store interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, email, password, name string) (model.User, error)
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	RenameUser(ctx context.Context, id, name string) error

	TasksForMonth(ctx context.Context, userID string, month, year int) ([]model.Task, error)
	ReplaceTasksForMonth(ctx context.Context, userID string, tasks []model.Task, month, year int) error

	Stories(ctx context.Context, userID string) ([]model.Story, error)
	CreateStory(ctx context.Context, userID, title, content string, createdAt time.Time) (model.Story, error)
	UpdateStory(ctx context.Context, userID, id, content string) error
	DeleteStory(ctx context.Context, userID, id string) error

	Close() error
}
