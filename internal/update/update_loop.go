package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kvsingh/neuralmon/internal/calendar"
	"github.com/kvsingh/neuralmon/internal/stats"
	"github.com/kvsingh/neuralmon/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Phase == PhaseLoading {
		return tea.Batch(m.loadSpinner.Tick, m.loadScopeCmd(m.Month, m.Year))
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKey(typed)
		next.syncBubbleData()
		return next, cmd
	case spinner.TickMsg:
		if m.Phase == PhaseLoading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case ScopeLoadedMsg:
		next, cmd := m.onScopeLoaded(typed)
		next.syncBubbleData()
		return next, cmd
	case SessionChangedMsg:
		if m.Phase != PhaseUnauthenticated && typed.User.ID == m.User.ID {
			m.User = typed.User
		}
		return m, nil
	case FlushTickMsg:
		return m.onFlushTick(typed)
	case StatusExpireMsg:
		// Generation counting keeps a stale timer from wiping a newer
		// message.
		if typed.Gen == m.statusGen {
			m.Status = StatusBar{}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Phase == PhaseUnauthenticated {
		return m.handleAuthKey(msg)
	}
	if m.Phase == PhaseLoading {
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Active editors consume every key except their own exits.
	if m.Edit.Active {
		return m.handleEditKey(msg)
	}
	if m.StoryUI.Editing {
		return m.handleStoryEditorKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.flushNow()
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Logout):
		return m.logout()
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		m.helpModel.ShowAll = m.HelpVisible
		return m, nil
	case key.Matches(msg, m.Keys.Monitor):
		m.Screen = ScreenMonitor
		return m, nil
	case key.Matches(msg, m.Keys.Stories):
		m.Screen = ScreenStories
		return m, nil
	}

	if m.Screen == ScreenStories {
		return m.handleStoriesKey(msg)
	}
	return m.handleMonitorKey(msg)
}

func (m Model) View() string {
	var body string
	switch m.Phase {
	case PhaseUnauthenticated:
		body = views.RenderAuthScreen(views.AuthScreenData{
			Mode:         string(m.Auth.Mode),
			EmailView:    m.emailInput.View(),
			PasswordView: m.passwordInput.View(),
			NameView:     m.nameInput.View(),
			ShowName:     m.Auth.Mode == AuthSignup,
			RememberMe:   m.Auth.RememberMe,
			ErrorText:    m.Auth.Err,
		})
	case PhaseLoading:
		body = views.RenderLoading(m.loadSpinner.View())
	default:
		if m.Screen == ScreenStories {
			body = m.storiesView()
		} else {
			body = m.monitorView()
		}
	}

	header := "NEURAL MONITOR"
	if m.Phase == PhaseReady {
		scope := stats.MonthKey{Year: m.Year, Month0: m.Month}
		header = fmt.Sprintf("NEURAL MONITOR | %s | %s | %s", scope.Label(), m.User.Name, m.Screen)
	}
	status := m.Status.Text
	return views.RenderApp(views.AppData{
		Header:     header,
		Body:       body,
		StatusLine: status,
		Footer:     m.helpModel.View(m.Keys),
	})
}

func (m Model) monitorView() string {
	dim := calendar.DaysInMonth(m.Year, m.Month)
	ms := stats.MonthStats(m.Tasks)

	weeks := make([]views.WeekRowData, 0)
	for _, week := range calendar.BuildWeeks(dim, m.Year, m.Month, m.WeekStart) {
		ws := stats.WeekStats(m.Tasks, week.WeekDays())
		row := views.WeekRowData{
			Label:      week.Label,
			Completed:  ws.Completed,
			Total:      ws.Total,
			Percentage: ws.Percentage,
		}
		for _, day := range week.Days {
			cell := views.DayCellData{Day: day, Tasks: len(m.Tasks)}
			if day != calendar.EmptySlot {
				cell.Count = stats.CompletionsOnDay(m.Tasks, day)
				cell.Selected = day == m.DayCursor
			}
			row.Cells = append(row.Cells, cell)
		}
		weeks = append(weeks, row)
	}

	taskRows := make([]views.TaskRowData, 0, len(m.Tasks))
	for i, t := range m.Tasks {
		taskRows = append(taskRows, views.TaskRowData{
			Name:       t.Name,
			Target:     t.Target,
			Completed:  len(t.VisibleDays(dim)),
			Percentage: stats.TaskPercentage(t),
			Selected:   i == m.TaskCursor,
		})
	}

	targets := make([]views.TargetRowData, 0)
	for _, rt := range stats.TopTargets(m.Tasks, 10) {
		targets = append(targets, views.TargetRowData{Name: rt.Task.Name, Percentage: rt.Percentage})
	}

	series := make([]float64, 0, dim)
	for _, point := range stats.DailySeries(m.Tasks, dim) {
		series = append(series, point.Percentage)
	}

	dayNames := m.WeekStart.DayNames()
	editPrompt := ""
	if m.Edit.Active {
		editPrompt = fmt.Sprintf("%s: %s ([enter] apply, [esc] cancel)", m.Edit.Kind, m.editInput.View())
	}

	return views.RenderMonitorScreen(views.MonitorData{
		Sidebar: views.SidebarData{
			UserName:     m.User.Name,
			MonthLabel:   stats.MonthKey{Year: m.Year, Month0: m.Month}.Label(),
			Completed:    ms.Completed,
			Total:        ms.Total,
			Percentage:   ms.Percentage,
			ProgressView: m.monthProgress.View(),
		},
		DayNames:       dayNames[:],
		Weeks:          weeks,
		Tasks:          taskRows,
		TopTargets:     targets,
		OverviewView:   views.RenderSparkline(series),
		DailyGoalsView: m.goalsTable.View(),
		EditPrompt:     editPrompt,
	})
}

func (m Model) storiesView() string {
	cards := make([]views.StoryCardData, 0, len(m.StoryUI.Months))
	for i, mk := range m.StoryUI.Months {
		card := views.StoryCardData{
			MonthLabel: mk.Label(),
			Selected:   i == m.StoryUI.Cursor,
		}
		if stories := stats.StoriesForMonth(m.Stories, mk.Year, mk.Month0); len(stories) > 0 {
			card.HasStory = true
			card.Preview = firstLine(stories[0].Content)
		}
		cards = append(cards, card)
	}
	return views.RenderStoriesScreen(views.StoriesData{
		Cards:       cards,
		PreviewView: m.storyViewport.View(),
		EditorView:  m.storyArea.View(),
		Editing:     m.StoryUI.Editing,
	})
}
