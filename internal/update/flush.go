package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/config"
)

// scheduleFlush runs after every task mutation. The immediate policy
// writes synchronously; debounced arms a trailing timer that resets on
// each new mutation; manual waits for an explicit save.
func (m *Model) scheduleFlush() tea.Cmd {
	m.dirty = true
	switch m.FlushPolicy {
	case config.FlushDebounced:
		m.flushGen++
		gen := m.flushGen
		return tea.Tick(m.Debounce, func(time.Time) tea.Msg { return FlushTickMsg{Gen: gen} })
	case config.FlushManual:
		return nil
	default:
		m.flushNow()
		return nil
	}
}

// flushNow writes the active month's rows back to the store. The write
// replaces the (user, month, year) scope wholesale.
func (m *Model) flushNow() {
	if !m.dirty || m.store == nil {
		return
	}
	err := m.store.ReplaceTasksForMonth(context.Background(), m.User.ID, m.Tasks, m.Month, m.Year)
	if err != nil {
		m.Status = StatusBar{Text: "save failed: " + err.Error(), IsError: true}
		m.LastError = err
		m.log.Error("flush failed", zap.Error(err))
		return
	}
	m.dirty = false
	m.log.Debug("flushed month",
		zap.String("user", m.User.ID), zap.Int("month", m.Month), zap.Int("year", m.Year),
		zap.Int("tasks", len(m.Tasks)))
}

func (m Model) onFlushTick(msg FlushTickMsg) (Model, tea.Cmd) {
	// A stale generation means another mutation re-armed the timer.
	if msg.Gen != m.flushGen || m.Phase != PhaseReady {
		return m, nil
	}
	m.flushNow()
	return m, nil
}
