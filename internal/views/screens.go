package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type AuthScreenData struct {
	Mode         string
	EmailView    string
	PasswordView string
	NameView     string
	ShowName     bool
	RememberMe   bool
	ErrorText    string
}

type DayCellData struct {
	Day      int
	Count    int
	Tasks    int
	Selected bool
}

type WeekRowData struct {
	Label      string
	Cells      []DayCellData
	Completed  int
	Total      int
	Percentage int
}

type TaskRowData struct {
	Name       string
	Target     int
	Completed  int
	Percentage int
	Selected   bool
}

type SidebarData struct {
	UserName     string
	MonthLabel   string
	Completed    int
	Total        int
	Percentage   int
	ProgressView string
}

type TargetRowData struct {
	Name       string
	Percentage int
}

type MonitorData struct {
	Sidebar        SidebarData
	DayNames       []string
	Weeks          []WeekRowData
	Tasks          []TaskRowData
	TopTargets     []TargetRowData
	OverviewView   string
	DailyGoalsView string
	EditPrompt     string
}

type StoryCardData struct {
	MonthLabel string
	Preview    string
	HasStory   bool
	Selected   bool
}

type StoriesData struct {
	Cards       []StoryCardData
	PreviewView string
	EditorView  string
	Editing     bool
}

func RenderAuthScreen(data AuthScreenData) string {
	var b strings.Builder
	b.WriteString("NEURAL MONITOR\n\n")
	b.WriteString(fmt.Sprintf("mode: %s (ctrl+s to switch)\n\n", data.Mode))
	b.WriteString(data.EmailView + "\n")
	b.WriteString(data.PasswordView + "\n")
	if data.ShowName {
		b.WriteString(data.NameView + "\n")
	}
	check := "[ ]"
	if data.RememberMe {
		check = "[x]"
	}
	b.WriteString(fmt.Sprintf("\n%s remember me (ctrl+r)\n", check))
	if data.ErrorText != "" {
		b.WriteString("\n" + errorStyle.Render(data.ErrorText) + "\n")
	}
	b.WriteString("\n[tab] next field  [enter] submit")
	return panelStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func RenderMonitorScreen(data MonitorData) string {
	left := panelStyle.Width(30).Render(renderSidebar(data.Sidebar, data.TopTargets))
	right := panelStyle.Width(72).Render(renderCalendarGrid(data.DayNames, data.Weeks))
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{
		row,
		panelStyle.Render(renderTaskList(data.Tasks)),
	}
	if data.OverviewView != "" {
		sections = append(sections, panelStyle.Render("DAILY OVERVIEW\n"+data.OverviewView))
	}
	sections = append(sections, panelStyle.Render("DAILY GOALS (Sun-Sat)\n"+data.DailyGoalsView))
	if data.EditPrompt != "" {
		sections = append(sections, panelStyle.Render(data.EditPrompt))
	}
	return strings.Join(sections, "\n")
}

func renderSidebar(data SidebarData, targets []TargetRowData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("operator: %s\n", data.UserName))
	b.WriteString(fmt.Sprintf("scope: %s\n\n", data.MonthLabel))
	b.WriteString(RenderDonut(data.Percentage) + "\n")
	b.WriteString(fmt.Sprintf("%d / %d completions\n", data.Completed, data.Total))
	b.WriteString(data.ProgressView + "\n")
	if len(targets) > 0 {
		b.WriteString("\nTOP TARGETS\n")
		for i, t := range targets {
			b.WriteString(fmt.Sprintf("%2d. %-14s %d%%\n", i+1, clip(t.Name, 14), t.Percentage))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderCalendarGrid(dayNames []string, weeks []WeekRowData) string {
	var b strings.Builder
	b.WriteString("        ")
	for _, name := range dayNames {
		b.WriteString(fmt.Sprintf("%-8s", name))
	}
	b.WriteString("\n")
	for _, week := range weeks {
		b.WriteString(fmt.Sprintf("%-8s", week.Label))
		for _, cell := range week.Cells {
			b.WriteString(renderDayCell(cell))
		}
		b.WriteString(fmt.Sprintf(" %d/%d %d%%", week.Completed, week.Total, week.Percentage))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderDayCell(cell DayCellData) string {
	if cell.Day == 0 {
		return strings.Repeat(" ", 8)
	}
	bar := completionBar(cell.Count, cell.Tasks)
	text := fmt.Sprintf("%2d %s", cell.Day, bar)
	if cell.Selected {
		return selectedStyle.Render(fmt.Sprintf("%-8s", ">"+strings.TrimSpace(text)))
	}
	return fmt.Sprintf("%-8s", text)
}

// completionBar draws up to four ticks for the share of tasks completed
// on a day.
func completionBar(count, tasks int) string {
	if tasks == 0 || count == 0 {
		return dimStyle.Render("····")
	}
	filled := count * 4 / tasks
	if filled < 1 {
		filled = 1
	}
	if filled > 4 {
		filled = 4
	}
	return doneStyle.Render(strings.Repeat("▮", filled)) + dimStyle.Render(strings.Repeat("·", 4-filled))
}

func renderTaskList(tasks []TaskRowData) string {
	if len(tasks) == 0 {
		return "(no tasks)"
	}
	var b strings.Builder
	b.WriteString("TASKS\n")
	for _, t := range tasks {
		cursor := " "
		line := fmt.Sprintf("%-20s target:%-3d done:%-3d %d%%", clip(t.Name, 20), t.Target, t.Completed, t.Percentage)
		if t.Selected {
			cursor = ">"
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + " " + line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderDonut draws a twelve-segment ring with the percentage in the
// middle, filled clockwise from the top.
func RenderDonut(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * 12 / 100
	seg := func(i int) string {
		if i < filled {
			return doneStyle.Render("●")
		}
		return dimStyle.Render("○")
	}
	return strings.Join([]string{
		"   " + seg(11) + " " + seg(0) + " " + seg(1),
		"  " + seg(10) + "       " + seg(2),
		" " + seg(9) + fmt.Sprintf("  %3d%%  ", pct) + seg(3),
		"  " + seg(8) + "       " + seg(4),
		"   " + seg(7) + " " + seg(6) + " " + seg(5),
	}, "\n")
}

// RenderSparkline draws the per-day completion series as a row of
// eighth-block glyphs, one per day.
func RenderSparkline(points []float64) string {
	if len(points) == 0 {
		return ""
	}
	glyphs := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, p := range points {
		idx := int(p * 8 / 100)
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		b.WriteRune(glyphs[idx])
	}
	return doneStyle.Render(b.String())
}

func RenderStoriesScreen(data StoriesData) string {
	if data.Editing {
		return panelStyle.Render("STORY EDITOR ([ctrl+s] save, [esc] cancel)\n\n" + data.EditorView)
	}

	var b strings.Builder
	b.WriteString("MONTHLY STORIES ([enter] write/edit, [d] delete)\n\n")
	for _, card := range data.Cards {
		cursor := " "
		label := card.MonthLabel
		if !card.HasStory {
			label += " (draft)"
		}
		if card.Selected {
			cursor = ">"
			label = selectedStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, label))
		if card.HasStory && card.Preview != "" {
			b.WriteString("    " + dimStyle.Render(card.Preview) + "\n")
		}
	}
	if data.PreviewView != "" {
		b.WriteString("\n" + panelStyle.Render(data.PreviewView))
	}
	return panelStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func RenderLoading(spinnerView string) string {
	return panelStyle.Render(spinnerView + " loading scope...")
}

// clip shortens s to n runes, so a cut never lands inside a multi-byte
// character.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
