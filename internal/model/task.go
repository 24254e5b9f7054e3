package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMonth  = errors.New("model: month must be in 0..11")
	ErrInvalidTarget = errors.New("model: target must be >= 0")
	ErrInvalidDay    = errors.New("model: day must be in 1..31")
)

// DefaultTaskCount is the number of task slots synthesized when a user
// first views a month with no stored data.
const DefaultTaskCount = 10

// Task is one habit slot for a (user, month, year) scope. CompletedDays
// holds unique day-of-month values and is kept sorted ascending by the
// mutation helpers. Stored values beyond the month's day count are kept
// as-is and filtered at display time.
type Task struct {
	ID            string
	UserID        string
	Name          string
	Target        int
	CompletedDays []int
	Month         int
	Year          int
	UpdatedAt     time.Time
}

func NewTaskID() string {
	return "task_" + uuid.NewString()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: task name is required")
	}
	if t.Month < 0 || t.Month > 11 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, t.Month)
	}
	if t.Target < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, t.Target)
	}
	for _, day := range t.CompletedDays {
		if day < 1 || day > 31 {
			return fmt.Errorf("%w: %d", ErrInvalidDay, day)
		}
	}
	return nil
}

// HasDay reports whether day is marked complete.
func (t Task) HasDay(day int) bool {
	for _, d := range t.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

// ToggleDay marks day complete when it is not, and clears it when it is.
// The resulting slice stays sorted ascending.
func (t *Task) ToggleDay(day int) {
	if t.HasDay(day) {
		out := t.CompletedDays[:0]
		for _, d := range t.CompletedDays {
			if d != day {
				out = append(out, d)
			}
		}
		t.CompletedDays = out
		return
	}
	t.CompletedDays = append(t.CompletedDays, day)
	sort.Ints(t.CompletedDays)
}

// VisibleDays returns the completed days that exist in a month of the
// given length. Stale entries (left behind by a month-length change) are
// filtered here rather than removed from storage.
func (t Task) VisibleDays(daysInMonth int) []int {
	out := make([]int, 0, len(t.CompletedDays))
	for _, d := range t.CompletedDays {
		if d <= daysInMonth {
			out = append(out, d)
		}
	}
	return out
}

// Visible returns a copy of the task with CompletedDays filtered to the
// month length.
func (t Task) Visible(daysInMonth int) Task {
	out := t
	out.CompletedDays = t.VisibleDays(daysInMonth)
	return out
}

// DefaultTasks synthesizes the ten default slots for a month: "Task 1"
// through "Task 10", target zero, no completions.
func DefaultTasks(userID string, month, year int, now time.Time) []Task {
	out := make([]Task, 0, DefaultTaskCount)
	for i := 1; i <= DefaultTaskCount; i++ {
		out = append(out, Task{
			ID:            NewTaskID(),
			UserID:        userID,
			Name:          fmt.Sprintf("Task %d", i),
			Target:        0,
			CompletedDays: []int{},
			Month:         month,
			Year:          year,
			UpdatedAt:     now,
		})
	}
	return out
}
