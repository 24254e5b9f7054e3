package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyEmail    = errors.New("model: email is required")
	ErrEmptyPassword = errors.New("model: password is required")
)

// User is an account record. Password holds whatever the configured
// verifier stored: the plaintext itself in plain mode, a bcrypt hash in
// bcrypt mode.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	CreatedAt time.Time
}

// NewUser builds an account with a fresh ID. An empty name defaults to
// the part of the email before the "@".
func NewUser(email, password, name string, now time.Time) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrEmptyEmail
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
		if i := strings.IndexByte(email, '@'); i > 0 {
			name = email[:i]
		}
	}
	return User{
		ID:        "user_" + uuid.NewString(),
		Email:     email,
		Password:  password,
		Name:      name,
		CreatedAt: now,
	}, nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("model: user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}
