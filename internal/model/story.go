package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Story is a free-text journal entry. The month it belongs to is derived
// from CreatedAt, not stored separately.
type Story struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewStory(userID, title, content string, createdAt, now time.Time) Story {
	return Story{
		ID:        "story_" + uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
}

func (s Story) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: story id is required")
	}
	if strings.TrimSpace(s.UserID) == "" {
		return errors.New("model: story user id is required")
	}
	if s.CreatedAt.IsZero() {
		return errors.New("model: story created_at is required")
	}
	return nil
}

// Blank reports whether the story has no content once trimmed. Blank
// stories may exist in storage as drafts but are excluded from the
// months-with-stories listing.
func (s Story) Blank() bool {
	return strings.TrimSpace(s.Content) == ""
}
