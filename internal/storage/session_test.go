package storage

import (
	"testing"
	"time"
)

func setupSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionCurrentUserRoundTrip(t *testing.T) {
	s := setupSession(t)

	if _, ok := s.CurrentUser(); ok {
		t.Fatal("fresh session should have no current user")
	}

	u := SessionUser{ID: "u1", Email: "a@x.com", Name: "Ana"}
	if err := s.SetCurrentUser(u); err != nil {
		t.Fatalf("set current user: %v", err)
	}
	got, ok := s.CurrentUser()
	if !ok || got != u {
		t.Fatalf("unexpected current user: %#v ok=%v", got, ok)
	}

	s.Clear()
	if _, ok := s.CurrentUser(); ok {
		t.Fatal("current user should be cleared after logout")
	}
}

func TestSessionRememberedEmail(t *testing.T) {
	s := setupSession(t)

	if _, ok := s.RememberedEmail(); ok {
		t.Fatal("nothing should be remembered initially")
	}
	if err := s.SetRemembered("a@x.com"); err != nil {
		t.Fatalf("set remembered: %v", err)
	}
	email, ok := s.RememberedEmail()
	if !ok || email != "a@x.com" {
		t.Fatalf("unexpected remembered email: %q ok=%v", email, ok)
	}
	s.Clear()
	if _, ok := s.RememberedEmail(); ok {
		t.Fatal("remembered user should be dropped on logout")
	}
}

func TestSessionWelcomeFlagsConsumeOnce(t *testing.T) {
	s := setupSession(t)

	if err := s.MarkNewUser(); err != nil {
		t.Fatalf("mark new: %v", err)
	}
	isNew, isReturning := s.ConsumeWelcomeFlags()
	if !isNew || isReturning {
		t.Fatalf("expected new-user welcome, got new=%v returning=%v", isNew, isReturning)
	}
	isNew, isReturning = s.ConsumeWelcomeFlags()
	if isNew || isReturning {
		t.Fatal("flags should clear after first consume")
	}

	if err := s.MarkReturningUser(); err != nil {
		t.Fatalf("mark returning: %v", err)
	}
	isNew, isReturning = s.ConsumeWelcomeFlags()
	if isNew || !isReturning {
		t.Fatalf("expected returning welcome, got new=%v returning=%v", isNew, isReturning)
	}
}

func TestSessionWatchObservesRename(t *testing.T) {
	s := setupSession(t)

	if err := s.SetCurrentUser(SessionUser{ID: "u1", Email: "a@x.com", Name: "Ana"}); err != nil {
		t.Fatalf("set current user: %v", err)
	}

	changed := make(chan SessionUser, 1)
	watcher, err := s.Watch(func(u SessionUser) {
		select {
		case changed <- u:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	t.Cleanup(func() { _ = watcher.Close() })

	if err := s.SetCurrentUser(SessionUser{ID: "u1", Email: "a@x.com", Name: "Anabel"}); err != nil {
		t.Fatalf("rewrite current user: %v", err)
	}

	select {
	case got := <-changed:
		if got.Name != "Anabel" {
			t.Fatalf("unexpected notification: %#v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification observed")
	}
}
