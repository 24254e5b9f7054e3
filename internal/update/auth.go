package update

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kvsingh/neuralmon/internal/model"
	"github.com/kvsingh/neuralmon/internal/storage"
)

func (m Model) handleAuthKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		m = m.cycleAuthFocus(msg.String() == "shift+tab")
		return m, nil
	case "ctrl+s":
		if m.Auth.Mode == AuthLogin {
			m.Auth.Mode = AuthSignup
		} else {
			m.Auth.Mode = AuthLogin
		}
		m.Auth.Err = ""
		m.Auth.Focus = authFieldEmail
		m = m.focusAuthField()
		return m, nil
	case "ctrl+r":
		m.Auth.RememberMe = !m.Auth.RememberMe
		return m, nil
	case "enter":
		return m.submitAuth()
	}

	var cmd tea.Cmd
	switch m.Auth.Focus {
	case authFieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case authFieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	case authFieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m Model) cycleAuthFocus(backwards bool) Model {
	fields := 2
	if m.Auth.Mode == AuthSignup {
		fields = 3
	}
	if backwards {
		m.Auth.Focus = (m.Auth.Focus + fields - 1) % fields
	} else {
		m.Auth.Focus = (m.Auth.Focus + 1) % fields
	}
	return m.focusAuthField()
}

func (m Model) focusAuthField() Model {
	m.emailInput.Blur()
	m.passwordInput.Blur()
	m.nameInput.Blur()
	switch m.Auth.Focus {
	case authFieldEmail:
		m.emailInput.Focus()
	case authFieldPassword:
		m.passwordInput.Focus()
	case authFieldName:
		m.nameInput.Focus()
	}
	return m
}

func (m Model) submitAuth() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	if email == "" || password == "" {
		m.Auth.Err = "email and password are required"
		return m, nil
	}

	ctx := context.Background()
	var (
		user model.User
		err  error
	)
	if m.Auth.Mode == AuthSignup {
		user, err = m.store.CreateUser(ctx, email, password, strings.TrimSpace(m.nameInput.Value()))
	} else {
		user, err = m.store.Authenticate(ctx, email, password)
	}
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateEmail):
			m.Auth.Err = "an account with this email already exists"
		case errors.Is(err, storage.ErrInvalidCredentials):
			m.Auth.Err = "invalid email or password"
		default:
			m.Auth.Err = err.Error()
		}
		return m, nil
	}

	m.User = storage.SessionUser{ID: user.ID, Email: user.Email, Name: user.Name}
	if m.session != nil {
		if err := m.session.SetCurrentUser(m.User); err != nil {
			m.log.Warn("persist session", zap.Error(err))
		}
		if m.Auth.RememberMe {
			if err := m.session.SetRemembered(m.User.Email); err != nil {
				m.log.Warn("persist remembered email", zap.Error(err))
			}
		}
		if m.Auth.Mode == AuthSignup {
			_ = m.session.MarkNewUser()
		} else {
			_ = m.session.MarkReturningUser()
		}
	}

	m.Auth.Err = ""
	m.passwordInput.SetValue("")
	m.Phase = PhaseLoading
	m.Screen = ScreenMonitor
	return m, tea.Batch(m.loadSpinner.Tick, m.loadScopeCmd(m.Month, m.Year))
}

func (m Model) logout() (Model, tea.Cmd) {
	m.flushNow()
	if m.session != nil {
		m.session.Clear()
	}
	m.log.Info("logged out", zap.String("user", m.User.ID))

	m.Phase = PhaseUnauthenticated
	m.Screen = ScreenMonitor
	m.User = storage.SessionUser{}
	m.Tasks = nil
	m.Stories = nil
	m.TaskCursor = 0
	m.Edit = EditState{}
	m.StoryUI = StoryState{}
	m.Auth = AuthState{Mode: AuthLogin}
	m.Status = StatusBar{}
	m.emailInput.SetValue("")
	m.passwordInput.SetValue("")
	m.nameInput.SetValue("")
	m.Auth.Focus = authFieldEmail
	return m.focusAuthField(), nil
}
