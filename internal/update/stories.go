package update

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/stats"
)

func (m Model) handleStoriesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.StoryUI.Editing {
		return m.handleStoryEditorKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.PrevTask):
		if m.StoryUI.Cursor > 0 {
			m.StoryUI.Cursor--
		}
		return m, nil
	case key.Matches(msg, m.Keys.NextTask):
		if m.StoryUI.Cursor < len(m.StoryUI.Months)-1 {
			m.StoryUI.Cursor++
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m.openStoryEditor()
	case "d":
		return m.deleteSelectedStory()
	}
	return m, nil
}

func (m Model) openStoryEditor() (Model, tea.Cmd) {
	mk, ok := m.selectedStoryMonth()
	if !ok {
		return m, nil
	}
	m.StoryUI.Editing = true
	m.StoryUI.EditingID = ""
	m.storyArea.SetValue("")
	if stories := stats.StoriesForMonth(m.Stories, mk.Year, mk.Month0); len(stories) > 0 {
		m.StoryUI.EditingID = stories[0].ID
		m.storyArea.SetValue(stories[0].Content)
	}
	m.storyArea.Focus()
	return m, nil
}

func (m Model) handleStoryEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.StoryUI.Editing = false
		m.storyArea.Blur()
		return m, nil
	case "ctrl+s":
		return m.commitStory()
	}
	var cmd tea.Cmd
	m.storyArea, cmd = m.storyArea.Update(msg)
	return m, cmd
}

func (m Model) commitStory() (Model, tea.Cmd) {
	mk, ok := m.selectedStoryMonth()
	if !ok {
		m.StoryUI.Editing = false
		return m, nil
	}
	content := m.storyArea.Value()
	ctx := context.Background()

	if m.StoryUI.EditingID != "" {
		if err := m.store.UpdateStory(ctx, m.User.ID, m.StoryUI.EditingID, content); err != nil {
			return m.setStatus("story save failed: "+err.Error(), true)
		}
	} else {
		// A blank draft is discarded rather than persisted.
		if strings.TrimSpace(content) == "" {
			m.StoryUI.Editing = false
			m.storyArea.Blur()
			return m.setStatus("empty story discarded", false)
		}
		// Stories belong to a month, so the record is dated to noon on
		// the first of that month regardless of when it was written.
		createdAt := time.Date(mk.Year, time.Month(mk.Month0+1), 1, 12, 0, 0, 0, time.UTC)
		if _, err := m.store.CreateStory(ctx, m.User.ID, mk.Label(), content, createdAt); err != nil {
			return m.setStatus("story save failed: "+err.Error(), true)
		}
	}

	m.StoryUI.Editing = false
	m.StoryUI.EditingID = ""
	m.storyArea.Blur()
	m = m.reloadStories()
	return m.setStatus("story saved", false)
}

func (m Model) deleteSelectedStory() (Model, tea.Cmd) {
	mk, ok := m.selectedStoryMonth()
	if !ok {
		return m, nil
	}
	stories := stats.StoriesForMonth(m.Stories, mk.Year, mk.Month0)
	if len(stories) == 0 {
		return m, nil
	}
	if err := m.store.DeleteStory(context.Background(), m.User.ID, stories[0].ID); err != nil {
		return m.setStatus("story delete failed: "+err.Error(), true)
	}
	m = m.reloadStories()
	return m.setStatus("story deleted", false)
}

func (m Model) reloadStories() Model {
	stories, err := m.store.Stories(context.Background(), m.User.ID)
	if err != nil {
		m.log.Warn("reload stories", zap.Error(err))
		return m
	}
	m.Stories = stories
	return m
}
