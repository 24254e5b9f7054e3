package model

import (
	"testing"
	"time"
)

func TestNewUserDefaultsNameFromEmail(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	u, err := NewUser("dana@example.com", "secret", "", now)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if u.Name != "dana" {
		t.Fatalf("expected name from email local part, got %q", u.Name)
	}
	if err := u.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNewUserRequiresEmailAndPassword(t *testing.T) {
	now := time.Now()
	if _, err := NewUser("", "p", "", now); err != ErrEmptyEmail {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if _, err := NewUser("a@x.com", "", "", now); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestToggleDayKeepsSortedUniqueDays(t *testing.T) {
	task := Task{ID: NewTaskID(), Name: "Read", Month: 0, Year: 2024, CompletedDays: []int{}}

	task.ToggleDay(9)
	task.ToggleDay(3)
	task.ToggleDay(7)
	if got := task.CompletedDays; len(got) != 3 || got[0] != 3 || got[1] != 7 || got[2] != 9 {
		t.Fatalf("expected sorted [3 7 9], got %v", got)
	}

	task.ToggleDay(7)
	if got := task.CompletedDays; len(got) != 2 || got[0] != 3 || got[1] != 9 {
		t.Fatalf("expected [3 9] after untoggle, got %v", got)
	}
}

func TestVisibleDaysFiltersStaleEntries(t *testing.T) {
	task := Task{CompletedDays: []int{1, 28, 29, 30, 31}}
	got := task.VisibleDays(29)
	if len(got) != 3 || got[2] != 29 {
		t.Fatalf("expected [1 28 29], got %v", got)
	}
	// Stored slice is untouched.
	if len(task.CompletedDays) != 5 {
		t.Fatalf("stored days mutated: %v", task.CompletedDays)
	}
}

func TestDefaultTasksSynthesizesTenSlots(t *testing.T) {
	now := time.Now()
	tasks := DefaultTasks("user-1", 1, 2024, now)
	if len(tasks) != DefaultTaskCount {
		t.Fatalf("expected %d tasks, got %d", DefaultTaskCount, len(tasks))
	}
	if tasks[0].Name != "Task 1" || tasks[9].Name != "Task 10" {
		t.Fatalf("unexpected default names: %q .. %q", tasks[0].Name, tasks[9].Name)
	}
	for _, task := range tasks {
		if task.Target != 0 || len(task.CompletedDays) != 0 {
			t.Fatalf("default task not empty: %#v", task)
		}
		if err := task.Validate(); err != nil {
			t.Fatalf("validate default task: %v", err)
		}
	}
}

func TestTaskValidateRejectsBadMonth(t *testing.T) {
	task := Task{ID: "t", Name: "x", Month: 12, Year: 2024}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for month 12")
	}
}

func TestStoryBlank(t *testing.T) {
	s := NewStory("u", "January 2024", "  \n ", time.Now(), time.Now())
	if !s.Blank() {
		t.Fatal("whitespace-only content should be blank")
	}
	s.Content = "went well"
	if s.Blank() {
		t.Fatal("non-empty content should not be blank")
	}
}
