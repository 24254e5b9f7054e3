package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/auth"
	"github.com/kvsingh/neuralmon/internal/model"
)

const (
	usersKey       = "neural_monitor_users"
	userDataPrefix = "neural_monitor_data_"
)

// DocStore reproduces the original key-value document layout: one
// global user array under "neural_monitor_users" and one
// {tasks, stories} document per user under "neural_monitor_data_<id>".
// Every write rewrites the whole document for that key; concurrent
// writers race and the last one wins. Malformed JSON reads as the empty
// state instead of failing.
type DocStore struct {
	dir      string
	verifier auth.Verifier
	log      *zap.Logger
	now      func() time.Time
}

func NewDocStore(dir string, verifier auth.Verifier, log *zap.Logger) (*DocStore, error) {
	if verifier == nil {
		verifier = auth.Plain{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &DocStore{dir: dir, verifier: verifier, log: log, now: time.Now}, nil
}

func (s *DocStore) Close() error { return nil }

// Persisted document shapes keep the original snake_case field names so
// an exported browser dataset drops straight in.

type userRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type taskRecord struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	TaskName      string `json:"task_name"`
	Target        int    `json:"target"`
	CompletedDays []int  `json:"completed_days"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	UpdatedAt     string `json:"updated_at"`
}

type storyRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type userDocument struct {
	Tasks   []taskRecord  `json:"tasks"`
	Stories []storyRecord `json:"stories"`
}

func (s *DocStore) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *DocStore) readKey(key string, out any) bool {
	raw, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("read key failed, treating as empty", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// Corrupt data and missing data are indistinguishable to callers.
		s.log.Warn("malformed document, treating as empty", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DocStore) writeKey(key string, doc any) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.keyPath(key) + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.keyPath(key))
}

func (s *DocStore) loadUsers() []userRecord {
	users := []userRecord{}
	s.readKey(usersKey, &users)
	return users
}

func (s *DocStore) loadUserData(userID string) userDocument {
	doc := userDocument{Tasks: []taskRecord{}, Stories: []storyRecord{}}
	s.readKey(userDataPrefix+userID, &doc)
	if doc.Tasks == nil {
		doc.Tasks = []taskRecord{}
	}
	if doc.Stories == nil {
		doc.Stories = []storyRecord{}
	}
	return doc
}

func (s *DocStore) saveUserData(userID string, doc userDocument) error {
	return s.writeKey(userDataPrefix+userID, doc)
}

func (s *DocStore) ListUsers(_ context.Context) ([]model.User, error) {
	records := s.loadUsers()
	out := make([]model.User, 0, len(records))
	for _, r := range records {
		out = append(out, userFromRecord(r))
	}
	return out, nil
}

func (s *DocStore) CreateUser(_ context.Context, email, password, name string) (model.User, error) {
	records := s.loadUsers()
	for _, r := range records {
		if r.Email == email {
			return model.User{}, ErrDuplicateEmail
		}
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

	records = append(records, userToRecord(user))
	if err := s.writeKey(usersKey, records); err != nil {
		return model.User{}, err
	}
	// Seed the empty per-user document, like the original sign-up did.
	if err := s.saveUserData(user.ID, userDocument{Tasks: []taskRecord{}, Stories: []storyRecord{}}); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *DocStore) Authenticate(_ context.Context, email, password string) (model.User, error) {
	for _, r := range s.loadUsers() {
		if r.Email == email && s.verifier.Verify(password, r.Password) {
			return userFromRecord(r), nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}

func (s *DocStore) RenameUser(_ context.Context, id, name string) error {
	records := s.loadUsers()
	for i := range records {
		if records[i].ID == id {
			records[i].Name = name
			return s.writeKey(usersKey, records)
		}
	}
	return ErrUserNotFound
}

func (s *DocStore) TasksForMonth(_ context.Context, userID string, month, year int) ([]model.Task, error) {
	doc := s.loadUserData(userID)
	out := make([]model.Task, 0)
	for _, r := range doc.Tasks {
		if r.Month == month && r.Year == year {
			out = append(out, taskFromRecord(r))
		}
	}
	return out, nil
}

// ReplaceTasksForMonth drops the stored tasks for the scope and appends
// the new set, then rewrites the user's whole document. The rewrite cost
// scales with total history, which is the documented trade-off of this
// backend.
func (s *DocStore) ReplaceTasksForMonth(_ context.Context, userID string, tasks []model.Task, month, year int) error {
	doc := s.loadUserData(userID)
	kept := doc.Tasks[:0]
	for _, r := range doc.Tasks {
		if !(r.Month == month && r.Year == year) {
			kept = append(kept, r)
		}
	}
	doc.Tasks = kept

	stamp := s.now().UTC().Format(time.RFC3339Nano)
	for _, task := range tasks {
		r := taskToRecord(task)
		r.UserID = userID
		r.Month = month
		r.Year = year
		r.UpdatedAt = stamp
		doc.Tasks = append(doc.Tasks, r)
	}
	return s.saveUserData(userID, doc)
}

func (s *DocStore) Stories(_ context.Context, userID string) ([]model.Story, error) {
	doc := s.loadUserData(userID)
	out := make([]model.Story, 0, len(doc.Stories))
	for _, r := range doc.Stories {
		out = append(out, storyFromRecord(r))
	}
	// createdAt descending, newest first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *DocStore) CreateStory(_ context.Context, userID, title, content string, createdAt time.Time) (model.Story, error) {
	doc := s.loadUserData(userID)
	story := model.NewStory(userID, title, content, createdAt.UTC(), s.now().UTC())
	doc.Stories = append(doc.Stories, storyToRecord(story))
	if err := s.saveUserData(userID, doc); err != nil {
		return model.Story{}, err
	}
	return story, nil
}

func (s *DocStore) UpdateStory(_ context.Context, userID, id, content string) error {
	doc := s.loadUserData(userID)
	for i := range doc.Stories {
		if doc.Stories[i].ID == id {
			doc.Stories[i].Content = content
			doc.Stories[i].UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
			return s.saveUserData(userID, doc)
		}
	}
	// Unknown id: no-op, storage unchanged.
	return nil
}

func (s *DocStore) DeleteStory(_ context.Context, userID, id string) error {
	doc := s.loadUserData(userID)
	kept := doc.Stories[:0]
	found := false
	for _, r := range doc.Stories {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return nil
	}
	doc.Stories = kept
	return s.saveUserData(userID, doc)
}

func userFromRecord(r userRecord) model.User {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return model.User{ID: r.ID, Email: r.Email, Password: r.Password, Name: r.Name, CreatedAt: createdAt}
}

func userToRecord(u model.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func taskFromRecord(r taskRecord) model.Task {
	days := r.CompletedDays
	if days == nil {
		days = []int{}
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return model.Task{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.TaskName,
		Target:        r.Target,
		CompletedDays: days,
		Month:         r.Month,
		Year:          r.Year,
		UpdatedAt:     updatedAt,
	}
}

func taskToRecord(t model.Task) taskRecord {
	days := t.CompletedDays
	if days == nil {
		days = []int{}
	}
	return taskRecord{
		ID:            t.ID,
		UserID:        t.UserID,
		TaskName:      t.Name,
		Target:        t.Target,
		CompletedDays: days,
		Month:         t.Month,
		Year:          t.Year,
		UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func storyFromRecord(r storyRecord) model.Story {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return model.Story{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func storyToRecord(st model.Story) storyRecord {
	return storyRecord{
		ID:        st.ID,
		UserID:    st.UserID,
		Title:     st.Title,
		Content:   st.Content,
		CreatedAt: st.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: st.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

var _ Store = (*DocStore)(nil)
var _ Store = (*SQLiteStore)(nil)

// ErrUnknownBackend is returned by Open for a backend name that is
// neither "sqlite" nor "doc".
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Open builds the configured Store under dataDir.
func Open(backend, dataDir string, verifier auth.Verifier, log *zap.Logger) (Store, error) {
	switch backend {
	case "", "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return OpenSQLite(filepath.Join(dataDir, "neuralmon.db"), verifier, log)
	case "doc":
		return NewDocStore(dataDir, verifier, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
