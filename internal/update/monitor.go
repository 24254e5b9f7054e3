package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/calendar"
	"github.com/kvsingh/neuralmon/internal/model"
)

// loadScopeCmd fetches the (user, month, year) scope. A month seen for
// the first time is seeded with the ten default rows, persisted, so the
// grid always has something to toggle.
func (m Model) loadScopeCmd(month, year int) tea.Cmd {
	store := m.store
	userID := m.User.ID
	now := m.now
	log := m.log
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := store.TasksForMonth(ctx, userID, month, year)
		if err != nil {
			return ScopeLoadedMsg{Month: month, Year: year, Err: err}
		}
		if len(tasks) == 0 {
			tasks = model.DefaultTasks(userID, month, year, now())
			if err := store.ReplaceTasksForMonth(ctx, userID, tasks, month, year); err != nil {
				return ScopeLoadedMsg{Month: month, Year: year, Err: err}
			}
			log.Info("seeded default tasks",
				zap.String("user", userID), zap.Int("month", month), zap.Int("year", year))
		}
		stories, err := store.Stories(ctx, userID)
		if err != nil {
			return ScopeLoadedMsg{Month: month, Year: year, Err: err}
		}
		return ScopeLoadedMsg{Tasks: tasks, Stories: stories, Month: month, Year: year}
	}
}

func (m Model) onScopeLoaded(msg ScopeLoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Phase = PhaseReady
		return m.setStatus("load failed: "+msg.Err.Error(), true)
	}
	m.Tasks = msg.Tasks
	m.Stories = msg.Stories
	m.Month = msg.Month
	m.Year = msg.Year
	m.Phase = PhaseReady
	m.dirty = false

	if m.session != nil {
		isNew, isReturning := m.session.ConsumeWelcomeFlags()
		name := m.User.Name
		if isNew {
			return m.setStatus("welcome, "+name+"!", false)
		}
		if isReturning {
			return m.setStatus("welcome back, "+name+"!", false)
		}
	}
	return m, nil
}

// switchScope flushes the outgoing month and re-enters Loading for the
// new one.
func (m Model) switchScope(month, year int) (Model, tea.Cmd) {
	if month < 0 {
		month = 11
		year--
	}
	if month > 11 {
		month = 0
		year++
	}
	m.flushNow()
	m.Phase = PhaseLoading
	m.DayCursor = 1
	m.TaskCursor = 0
	return m, tea.Batch(m.loadSpinner.Tick, m.loadScopeCmd(month, year))
}

func (m Model) handleMonitorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Edit.Active {
		return m.handleEditKey(msg)
	}

	dim := calendar.DaysInMonth(m.Year, m.Month)
	switch {
	case key.Matches(msg, m.Keys.PrevMonth):
		return m.switchScope(m.Month-1, m.Year)
	case key.Matches(msg, m.Keys.NextMonth):
		return m.switchScope(m.Month+1, m.Year)
	case key.Matches(msg, m.Keys.PrevYear):
		return m.switchScope(m.Month, m.Year-1)
	case key.Matches(msg, m.Keys.NextYear):
		return m.switchScope(m.Month, m.Year+1)
	case key.Matches(msg, m.Keys.PrevTask):
		if m.TaskCursor > 0 {
			m.TaskCursor--
		}
		return m, nil
	case key.Matches(msg, m.Keys.NextTask):
		if m.TaskCursor < len(m.Tasks)-1 {
			m.TaskCursor++
		}
		return m, nil
	case key.Matches(msg, m.Keys.PrevDay):
		if m.DayCursor > 1 {
			m.DayCursor--
		}
		return m, nil
	case key.Matches(msg, m.Keys.NextDay):
		if m.DayCursor < dim {
			m.DayCursor++
		}
		return m, nil
	case key.Matches(msg, m.Keys.Toggle):
		return m.toggleDay()
	case key.Matches(msg, m.Keys.Rename):
		return m.openEdit(EditRename)
	case key.Matches(msg, m.Keys.Retarget):
		return m.openEdit(EditRetarget)
	case key.Matches(msg, m.Keys.AddTask):
		return m.addTask()
	case key.Matches(msg, m.Keys.ResetAll):
		return m.resetAll()
	case key.Matches(msg, m.Keys.Profile):
		return m.openEdit(EditProfile)
	case key.Matches(msg, m.Keys.Save):
		if m.dirty {
			m.flushNow()
			return m.setStatus("saved", false)
		}
		return m.setStatus("nothing to save", false)
	}
	return m, nil
}

func (m Model) toggleDay() (Model, tea.Cmd) {
	task, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	task.ToggleDay(m.DayCursor)
	task.UpdatedAt = m.now()
	return m, m.scheduleFlush()
}

func (m Model) openEdit(kind EditKind) (Model, tea.Cmd) {
	switch kind {
	case EditProfile:
		m.editInput.SetValue(m.User.Name)
	default:
		task, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		if kind == EditRename {
			m.editInput.SetValue(task.Name)
		} else {
			m.editInput.SetValue(strconv.Itoa(task.Target))
		}
	}
	m.Edit = EditState{Active: true, Kind: kind}
	m.editInput.CursorEnd()
	m.editInput.Focus()
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Edit = EditState{}
		m.editInput.Blur()
		return m, nil
	case "enter":
		return m.commitEdit()
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m Model) commitEdit() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.editInput.Value())
	if m.Edit.Kind == EditProfile {
		return m.commitProfileRename(value)
	}
	task, ok := m.currentTask()
	if !ok {
		m.Edit = EditState{}
		return m, nil
	}
	switch m.Edit.Kind {
	case EditRename:
		if value == "" {
			return m.setStatus("name cannot be empty", true)
		}
		task.Name = value
	case EditRetarget:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return m.setStatus("target must be a non-negative number", true)
		}
		task.Target = n
	}
	task.UpdatedAt = m.now()
	m.Edit = EditState{}
	m.editInput.Blur()
	return m, m.scheduleFlush()
}

// commitProfileRename updates the account record and rewrites the
// session file, which is what other processes watch for.
func (m Model) commitProfileRename(name string) (Model, tea.Cmd) {
	if name == "" {
		return m.setStatus("name cannot be empty", true)
	}
	if err := m.store.RenameUser(context.Background(), m.User.ID, name); err != nil {
		return m.setStatus("rename failed: "+err.Error(), true)
	}
	m.User.Name = name
	if m.session != nil {
		if err := m.session.SetCurrentUser(m.User); err != nil {
			m.log.Warn("rewrite session record", zap.Error(err))
		}
	}
	m.Edit = EditState{}
	m.editInput.Blur()
	return m.setStatus("name updated", false)
}

func (m Model) addTask() (Model, tea.Cmd) {
	names := make([]string, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		names = append(names, t.Name)
	}
	task := model.Task{
		ID:            model.NewTaskID(),
		UserID:        m.User.ID,
		Name:          fmt.Sprintf("Task %d", nextTaskNumber(names)),
		CompletedDays: []int{},
		Month:         m.Month,
		Year:          m.Year,
		UpdatedAt:     m.now(),
	}
	m.Tasks = append(m.Tasks, task)
	m.TaskCursor = len(m.Tasks) - 1
	return m, m.scheduleFlush()
}

// resetAll drops every row in the month and reseeds the ten defaults.
func (m Model) resetAll() (Model, tea.Cmd) {
	m.Tasks = model.DefaultTasks(m.User.ID, m.Month, m.Year, m.now())
	m.TaskCursor = 0
	flush := m.scheduleFlush()
	next, cmd := m.setStatus("month reset", false)
	return next, tea.Batch(flush, cmd)
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.Status = StatusBar{Text: text, IsError: isErr}
	m.statusGen++
	gen := m.statusGen
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return StatusExpireMsg{Gen: gen} })
}
