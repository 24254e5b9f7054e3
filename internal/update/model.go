package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/calendar"
	"github.com/kvsingh/neuralmon/internal/config"
	"github.com/kvsingh/neuralmon/internal/model"
	"github.com/kvsingh/neuralmon/internal/stats"
	"github.com/kvsingh/neuralmon/internal/storage"
	"github.com/kvsingh/neuralmon/internal/views"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseLoading         Phase = "loading"
	PhaseReady           Phase = "ready"
)

type Screen string

const (
	ScreenMonitor Screen = "Monitor"
	ScreenStories Screen = "Stories"
)

type AuthMode string

const (
	AuthLogin  AuthMode = "login"
	AuthSignup AuthMode = "signup"
)

// Auth form focus order. Name is only reachable in signup mode.
const (
	authFieldEmail = iota
	authFieldPassword
	authFieldName
)

type AuthState struct {
	Mode       AuthMode
	Focus      int
	RememberMe bool
	Err        string
}

type EditKind string

const (
	EditRename   EditKind = "rename"
	EditRetarget EditKind = "retarget"
	EditProfile  EditKind = "profile"
)

type EditState struct {
	Active bool
	Kind   EditKind
}

type StoryState struct {
	Months    []stats.MonthKey
	Cursor    int
	Editing   bool
	EditingID string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type keyMap struct {
	Monitor   key.Binding
	Stories   key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	PrevTask  key.Binding
	NextTask  key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	Toggle    key.Binding
	Rename    key.Binding
	Retarget  key.Binding
	AddTask   key.Binding
	ResetAll  key.Binding
	Profile   key.Binding
	Save      key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.PrevMonth, k.NextMonth, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Monitor, k.Stories, k.PrevMonth, k.NextMonth, k.PrevYear, k.NextYear},
		{k.PrevTask, k.NextTask, k.PrevDay, k.NextDay, k.Toggle},
		{k.Rename, k.Retarget, k.AddTask, k.ResetAll, k.Profile, k.Save},
		{k.Logout, k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Monitor:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "monitor")),
		Stories:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "stories")),
		PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		PrevYear:  key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "prev year")),
		NextYear:  key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "next year")),
		PrevTask:  key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "prev task")),
		NextTask:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next task")),
		PrevDay:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next day")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle day")),
		Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename task")),
		Retarget:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set target")),
		AddTask:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		ResetAll:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "reset month")),
		Profile:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "edit profile name")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	store   storage.Store
	session *storage.Session
	log     *zap.Logger
	now     func() time.Time

	Phase  Phase
	Screen Screen

	Auth    AuthState
	User    storage.SessionUser
	Month   int
	Year    int
	Tasks   []model.Task
	Stories []model.Story

	TaskCursor int
	DayCursor  int

	Edit    EditState
	StoryUI StoryState

	WeekStart   calendar.WeekStart
	Status      StatusBar
	statusGen   int
	HelpVisible bool

	FlushPolicy string
	Debounce    time.Duration
	dirty       bool
	flushGen    int

	Quitting  bool
	LastError error

	Keys keyMap

	// Bubble components used for rich TUI controls
	emailInput    textinput.Model
	passwordInput textinput.Model
	nameInput     textinput.Model
	editInput     textinput.Model
	storyArea     textarea.Model
	storyList     list.Model
	goalsTable    table.Model
	monthProgress progress.Model
	loadSpinner   spinner.Model
	helpModel     help.Model
	storyViewport viewport.Model
}

type Deps struct {
	Store   storage.Store
	Session *storage.Session
	Log     *zap.Logger
	Config  config.Config
	Now     func() time.Time
}

type ScopeLoadedMsg struct {
	Tasks   []model.Task
	Stories []model.Story
	Month   int
	Year    int
	Err     error
}

// SessionChangedMsg is sent by the session watcher when another process
// rewrites the current-user record, for example after a profile rename.
type SessionChangedMsg struct {
	User storage.SessionUser
}

type FlushTickMsg struct {
	Gen int
}

type StatusExpireMsg struct {
	Gen int
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

func NewModel(deps Deps) Model {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := deps.Config
	if cfg.FlushPolicy == "" {
		cfg = config.Default()
	}

	t := now()
	m := Model{
		store:       deps.Store,
		session:     deps.Session,
		log:         log,
		now:         now,
		Phase:       PhaseUnauthenticated,
		Screen:      ScreenMonitor,
		Auth:        AuthState{Mode: AuthLogin},
		Month:       int(t.Month()) - 1,
		Year:        t.Year(),
		DayCursor:   t.Day(),
		WeekStart:   weekStartFromConfig(cfg.WeekStart),
		FlushPolicy: cfg.FlushPolicy,
		Debounce:    time.Duration(cfg.DebounceMs) * time.Millisecond,
		Keys:        defaultKeyMap(),
	}
	m.initBubbleComponents()

	if deps.Session != nil {
		if user, ok := deps.Session.CurrentUser(); ok {
			m.User = user
			m.Phase = PhaseLoading
		} else if email, ok := deps.Session.RememberedEmail(); ok {
			m.Auth.RememberMe = true
			m.emailInput.SetValue(email)
		}
	}
	m.syncBubbleData()
	return m
}

func weekStartFromConfig(v string) calendar.WeekStart {
	if v == "sunday" {
		return calendar.StartSunday
	}
	return calendar.StartMonday
}

func (m *Model) initBubbleComponents() {
	m.emailInput = textinput.New()
	m.emailInput.Prompt = "email> "
	m.emailInput.CharLimit = 128
	m.emailInput.Width = 40
	m.emailInput.Focus()

	m.passwordInput = textinput.New()
	m.passwordInput.Prompt = "password> "
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.CharLimit = 128
	m.passwordInput.Width = 40

	m.nameInput = textinput.New()
	m.nameInput.Prompt = "name> "
	m.nameInput.CharLimit = 128
	m.nameInput.Width = 40

	m.editInput = textinput.New()
	m.editInput.Prompt = "> "
	m.editInput.CharLimit = 128
	m.editInput.Width = 32

	m.storyArea = textarea.New()
	m.storyArea.SetWidth(64)
	m.storyArea.SetHeight(10)
	m.storyArea.ShowLineNumbers = false
	m.storyArea.Placeholder = "How did this month go?"

	m.storyList = list.New([]list.Item{}, list.NewDefaultDelegate(), 60, 12)
	m.storyList.Title = "Monthly stories"
	m.storyList.SetShowHelp(false)
	m.storyList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Week", Width: 8},
		{Title: "Sun", Width: 5},
		{Title: "Mon", Width: 5},
		{Title: "Tue", Width: 5},
		{Title: "Wed", Width: 5},
		{Title: "Thu", Width: 5},
		{Title: "Fri", Width: 5},
		{Title: "Sat", Width: 5},
	}
	m.goalsTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(7))

	m.monthProgress = progress.New(progress.WithDefaultGradient())

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.storyViewport = viewport.New(60, 10)
}

func (m *Model) syncBubbleData() {
	if m.Phase != PhaseReady {
		return
	}

	dim := calendar.DaysInMonth(m.Year, m.Month)
	if m.DayCursor < 1 {
		m.DayCursor = 1
	}
	if m.DayCursor > dim {
		m.DayCursor = dim
	}
	if m.TaskCursor >= len(m.Tasks) {
		m.TaskCursor = len(m.Tasks) - 1
	}
	if m.TaskCursor < 0 {
		m.TaskCursor = 0
	}

	ms := stats.MonthStats(m.Tasks)
	_ = m.monthProgress.SetPercent(float64(ms.Percentage) / 100)

	// Daily goals are always laid out Sunday-first.
	rows := make([]table.Row, 0)
	for _, week := range calendar.BuildWeeks(dim, m.Year, m.Month, calendar.StartSunday) {
		row := table.Row{week.Label}
		for _, day := range week.Days {
			if day == calendar.EmptySlot {
				row = append(row, "")
				continue
			}
			row = append(row, dayCell(day, stats.CompletionsOnDay(m.Tasks, day), len(m.Tasks)))
		}
		rows = append(rows, row)
	}
	m.goalsTable.SetRows(rows)

	m.StoryUI.Months = m.storyMonths()
	if m.StoryUI.Cursor >= len(m.StoryUI.Months) {
		m.StoryUI.Cursor = len(m.StoryUI.Months) - 1
	}
	if m.StoryUI.Cursor < 0 {
		m.StoryUI.Cursor = 0
	}
	items := make([]list.Item, 0, len(m.StoryUI.Months))
	for _, mk := range m.StoryUI.Months {
		desc := "no story yet"
		if stories := stats.StoriesForMonth(m.Stories, mk.Year, mk.Month0); len(stories) > 0 {
			desc = firstLine(stories[0].Content)
		}
		items = append(items, listItem{title: mk.Label(), description: desc})
	}
	m.storyList.SetItems(items)
	if len(items) > 0 {
		m.storyList.Select(m.StoryUI.Cursor)
	}

	if mk, ok := m.selectedStoryMonth(); ok {
		if stories := stats.StoriesForMonth(m.Stories, mk.Year, mk.Month0); len(stories) > 0 {
			m.storyViewport.SetContent(views.RenderMarkdown(stories[0].Content))
		} else {
			m.storyViewport.SetContent("")
		}
	}
}

// storyMonths lists the months shown as story cards: every month that
// already has a story, newest first, with the active month prepended
// when it has none yet so a draft can be started.
func (m Model) storyMonths() []stats.MonthKey {
	months := stats.MonthsWithStories(m.Stories)
	for _, mk := range months {
		if mk.Month0 == m.Month && mk.Year == m.Year {
			return months
		}
	}
	return append([]stats.MonthKey{{Year: m.Year, Month0: m.Month}}, months...)
}

func (m Model) selectedStoryMonth() (stats.MonthKey, bool) {
	if m.StoryUI.Cursor < 0 || m.StoryUI.Cursor >= len(m.StoryUI.Months) {
		return stats.MonthKey{}, false
	}
	return m.StoryUI.Months[m.StoryUI.Cursor], true
}

func (m Model) currentTask() (*model.Task, bool) {
	if m.TaskCursor < 0 || m.TaskCursor >= len(m.Tasks) {
		return nil, false
	}
	return &m.Tasks[m.TaskCursor], true
}
