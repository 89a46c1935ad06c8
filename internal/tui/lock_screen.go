package tui

import (
	"context"
	"errors"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/lock"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// unlockedMsg reports a successful PIN entry
type unlockedMsg struct{}

type unlockFailedMsg struct {
	err error
}

// LockModel asks for the PIN before any other screen is shown
type LockModel struct {
	app      *app.App
	pin      textinput.Model
	checking bool
	err      error
}

// NewLockModel creates the PIN entry screen
func NewLockModel(a *app.App) *LockModel {
	pin := newInput("PIN", lock.MaxPinLength, lock.MaxPinLength+2)
	pin.EchoMode = textinput.EchoPassword
	pin.EchoCharacter = '•'
	return &LockModel{app: a, pin: pin}
}

func (m *LockModel) Init() tea.Cmd {
	return m.pin.Focus()
}

func (m *LockModel) unlock() tea.Cmd {
	a := m.app
	pin := m.pin.Value()
	return func() tea.Msg {
		if err := a.Gate.Unlock(context.Background(), pin); err != nil {
			return unlockFailedMsg{err: err}
		}
		return unlockedMsg{}
	}
}

func (m *LockModel) Update(msg tea.Msg) (*LockModel, tea.Cmd) {
	switch msg := msg.(type) {
	case unlockFailedMsg:
		m.checking = false
		m.err = msg.err
		if errors.Is(msg.err, lock.ErrWrongPin) {
			m.err = errors.New("wrong PIN, try again")
		}
		m.pin.Reset()
		return m, nil

	case tea.KeyMsg:
		if m.checking {
			return m, nil
		}
		if msg.String() == "enter" {
			if err := lock.ValidatePin(m.pin.Value()); err != nil {
				m.err = err
				return m, nil
			}
			m.checking = true
			m.err = nil
			return m, m.unlock()
		}
	}

	var cmd tea.Cmd
	m.pin, cmd = m.pin.Update(msg)
	return m, cmd
}

func (m *LockModel) View() string {
	s := titleStyle.Render("billbook is locked") + "\n"
	s += subtitleStyle.Render("  Enter your PIN to continue.") + "\n\n"
	s += "  " + m.pin.View() + "\n\n"

	if m.checking {
		s += subtitleStyle.Render("  Checking...") + "\n"
	}
	s += renderError(m.err)
	return s
}
