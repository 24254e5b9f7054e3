package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	currentUserKey     = "currentUser"
	rememberedUserKey  = "rememberedUser"
	rememberMeKey      = "rememberMe"
	isNewUserKey       = "isNewUser"
	isReturningUserKey = "isReturningUser"
)

// SessionUser is the persisted identity of the active session. Its
// presence at startup means "authenticated".
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session persists the current-user record and the first-run welcome
// flags under the data directory, one small file per key.
type Session struct {
	dir string
	log *zap.Logger
}

func NewSession(dir string, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Session{dir: dir, log: log}, nil
}

func (s *Session) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// CurrentUser returns the persisted session identity, if any. A
// malformed record reads as "not signed in".
func (s *Session) CurrentUser() (SessionUser, bool) {
	raw, err := os.ReadFile(s.path(currentUserKey))
	if err != nil {
		return SessionUser{}, false
	}
	var u SessionUser
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Warn("malformed session record", zap.Error(err))
		return SessionUser{}, false
	}
	if u.ID == "" {
		return SessionUser{}, false
	}
	return u, true
}

func (s *Session) SetCurrentUser(u SessionUser) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(currentUserKey), payload, 0o644)
}

// Clear removes the session identity plus the remembered-user and
// returning flags, exactly the set logout dropped in the original.
func (s *Session) Clear() {
	for _, key := range []string{currentUserKey, rememberedUserKey, isReturningUserKey} {
		_ = os.Remove(s.path(key))
	}
}

// RememberedEmail returns the stored remember-me email, if any.
func (s *Session) RememberedEmail() (string, bool) {
	if !s.flag(rememberMeKey) {
		return "", false
	}
	raw, err := os.ReadFile(s.path(rememberedUserKey))
	if err != nil {
		return "", false
	}
	email := strings.TrimSpace(string(raw))
	return email, email != ""
}

func (s *Session) SetRemembered(email string) error {
	if err := s.setFlag(rememberMeKey, true); err != nil {
		return err
	}
	return os.WriteFile(s.path(rememberedUserKey), []byte(email), 0o644)
}

// MarkNewUser flags the next launch to show the first-run welcome.
func (s *Session) MarkNewUser() error { return s.setFlag(isNewUserKey, true) }

// MarkReturningUser flags the next launch to show the welcome-back
// banner.
func (s *Session) MarkReturningUser() error { return s.setFlag(isReturningUserKey, true) }

// ConsumeWelcomeFlags reports which welcome applies and clears both
// flags so the banner shows once.
func (s *Session) ConsumeWelcomeFlags() (isNew, isReturning bool) {
	isNew = s.flag(isNewUserKey)
	isReturning = s.flag(isReturningUserKey)
	_ = os.Remove(s.path(isNewUserKey))
	_ = os.Remove(s.path(isReturningUserKey))
	return isNew, isReturning
}

func (s *Session) flag(key string) bool {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(raw)) == "true"
}

func (s *Session) setFlag(key string, v bool) error {
	if !v {
		_ = os.Remove(s.path(key))
		return nil
	}
	return os.WriteFile(s.path(key), []byte("true"), 0o644)
}

// Watch emits the refreshed session user whenever another process
// rewrites the current-user record (a profile rename, for instance).
// The notification is advisory: task and story data are not reconciled
// across processes. Close the returned watcher to stop.
func (s *Session) Watch(onChange func(SessionUser)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	target := s.path(currentUserKey)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if u, ok := s.CurrentUser(); ok {
					onChange(u)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("session watcher error", zap.Error(err))
			}
		}
	}()
	return watcher, nil
}
