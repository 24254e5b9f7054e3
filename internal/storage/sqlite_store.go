package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/auth"
	"github.com/kvsingh/neuralmon/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore keeps each entity as its own row, keyed by
// (user, month, year, id) for tasks, so a month save touches only that
// scope instead of rewriting the user's whole history.
type SQLiteStore struct {
	db       *sql.DB
	verifier auth.Verifier
	now      func() time.Time
}

func NewSQLiteStore(db *sql.DB, verifier auth.Verifier) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if verifier == nil {
		verifier = auth.Plain{}
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db, verifier: verifier, now: time.Now}, nil
}

func OpenSQLite(path string, verifier auth.Verifier, log *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(context.Background(), db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(db, verifier)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password, name, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, email, password, name string) (model.User, error) {
	// Exact, case-sensitive match on email, same as the duplicate check
	// the sign-up form relies on.
	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&existing)
	if err == nil {
		return model.User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	user, err := model.NewUser(email, password, name, s.now().UTC())
	if err != nil {
		return model.User{}, err
	}
	stored, err := s.verifier.Hash(password)
	if err != nil {
		return model.User{}, err
	}
	user.Password = stored

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Password, user.Name, mustTime(user.CreatedAt),
	)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *SQLiteStore) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password, name, created_at FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !s.verifier.Verify(password, user.Password) {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *SQLiteStore) RenameUser(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) TasksForMonth(ctx context.Context, userID string, month, year int) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, target, completed_days, month, year, updated_at
		FROM tasks WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY updated_at ASC, id ASC`, userID, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// ReplaceTasksForMonth swaps the stored task set for one (month, year)
// scope inside a transaction. Other months and stories are untouched.
func (s *SQLiteStore) ReplaceTasksForMonth(ctx context.Context, userID string, tasks []model.Task, month, year int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM tasks WHERE user_id = ? AND month = ? AND year = ?`,
		userID, month, year); err != nil {
		return err
	}

	stamp := mustTime(s.now().UTC())
	for _, task := range tasks {
		days, marshalErr := json.Marshal(task.CompletedDays)
		if marshalErr != nil {
			return marshalErr
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, user_id, name, target, completed_days, month, year, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, userID, task.Name, task.Target, string(days), month, year, stamp,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Stories(ctx context.Context, userID string) ([]model.Story, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM stories WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Story, 0)
	for rows.Next() {
		story, scanErr := scanStory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, story)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateStory(ctx context.Context, userID, title, content string, createdAt time.Time) (model.Story, error) {
	story := model.NewStory(userID, title, content, createdAt.UTC(), s.now().UTC())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stories (id, user_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		story.ID, story.UserID, story.Title, story.Content,
		mustTime(story.CreatedAt), mustTime(story.UpdatedAt),
	)
	if err != nil {
		return model.Story{}, err
	}
	return story, nil
}

// UpdateStory on an unknown id is a no-op, mirroring the document
// store's silent behavior.
func (s *SQLiteStore) UpdateStory(ctx context.Context, userID, id, content string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE stories SET content = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		content, mustTime(s.now().UTC()), userID, id)
	return err
}

// DeleteStory on an unknown id is a no-op.
func (s *SQLiteStore) DeleteStory(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM stories WHERE user_id = ? AND id = ?`, userID, id)
	return err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var out model.User
	var created string
	if err := s.Scan(&out.ID, &out.Email, &out.Password, &out.Name, &created); err != nil {
		return model.User{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.User{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var days string
	var updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.Name, &out.Target, &days, &out.Month, &out.Year, &updated); err != nil {
		return model.Task{}, err
	}
	if err := json.Unmarshal([]byte(days), &out.CompletedDays); err != nil {
		return model.Task{}, fmt.Errorf("decode completed_days for task %s: %w", out.ID, err)
	}
	if out.CompletedDays == nil {
		out.CompletedDays = []int{}
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Task{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanStory(s scanner) (model.Story, error) {
	var out model.Story
	var created, updated string
	if err := s.Scan(&out.ID, &out.UserID, &out.Title, &out.Content, &created, &updated); err != nil {
		return model.Story{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Story{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return model.Story{}, err
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}
