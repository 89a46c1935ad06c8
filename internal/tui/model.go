package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenOrders Screen = iota
	ScreenInvoices
	ScreenProducts
	ScreenClients
	ScreenReports
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenOrders:
		return "New Order"
	case ScreenInvoices:
		return "Invoices"
	case ScreenProducts:
		return "Products"
	case ScreenClients:
		return "Clients"
	case ScreenReports:
		return "Reports"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	screens map[Screen]tea.Model

	// PIN gate
	starting bool
	locked   bool
	lock     *LockModel

	err error
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenOrders,
		screens:       make(map[Screen]tea.Model),
		starting:      true,
		lock:          NewLockModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.startup()
}

// startup checks the PIN gate and loads the theme before any data screen runs
func (m Model) startup() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()

		settings, err := a.Settings(ctx)
		if err != nil {
			return startupMsg{err: err}
		}
		locked, err := a.Gate.IsLocked(ctx)
		if err != nil {
			return startupMsg{err: err}
		}
		return startupMsg{locked: locked, darkMode: settings.DarkMode}
	}
}

func (m Model) lockApp() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()
		set, err := a.Gate.IsPinSet(ctx)
		if err != nil {
			return lockedMsg{err: err}
		}
		if !set {
			return lockedMsg{err: fmt.Errorf("set a PIN with `billbook pin set` before locking")}
		}
		return lockedMsg{err: a.Gate.Lock()}
	}
}

// newScreen constructs the model for a screen
func newScreen(a *app.App, screen Screen) tea.Model {
	switch screen {
	case ScreenOrders:
		return NewOrdersModel(a)
	case ScreenInvoices:
		return NewInvoicesModel(a)
	case ScreenProducts:
		return NewProductsModel(a)
	case ScreenClients:
		return NewClientsModel(a)
	case ScreenReports:
		return NewReportsModel(a)
	case ScreenSettings:
		return NewSettingsModel(a)
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	if _, ok := m.screens[screen]; !ok {
		s := newScreen(m.app, screen)
		m.screens[screen] = s
		return s.Init()
	}
	return func() tea.Msg { return RefreshDataMsg{} }
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	m.err = nil
	return m.initScreen(screen)
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case startupMsg:
		m.starting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		applyTheme(msg.darkMode)
		if msg.locked {
			m.locked = true
			return m, m.lock.Init()
		}
		return m, m.switchTo(m.currentScreen)

	case unlockedMsg:
		m.locked = false
		return m, m.switchTo(m.currentScreen)

	case lockedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.locked = true
		m.lock = NewLockModel(m.app)
		return m, m.lock.Init()

	case themeChangedMsg:
		applyTheme(msg.darkMode)
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) && (msg.String() == "ctrl+c" || m.starting) {
			return m, tea.Quit
		}
		if m.starting {
			return m, nil
		}
		if m.locked {
			break
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Lock):
				return m, m.lockApp()
			case key.Matches(msg, DefaultKeyMap.Orders):
				return m, m.switchTo(ScreenOrders)
			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)
			case key.Matches(msg, DefaultKeyMap.Products):
				return m, m.switchTo(ScreenProducts)
			case key.Matches(msg, DefaultKeyMap.Clients):
				return m, m.switchTo(ScreenClients)
			case key.Matches(msg, DefaultKeyMap.Reports):
				return m, m.switchTo(ScreenReports)
			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}
	}

	if m.locked {
		var cmd tea.Cmd
		m.lock, cmd = m.lock.Update(msg)
		return m, cmd
	}

	// Route message to current screen
	var cmd tea.Cmd
	if screen, ok := m.screens[m.currentScreen]; ok {
		m.screens[m.currentScreen], cmd = screen.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := m.currentScreen.String()
	footer := "[O]rder  [I]nvoices  [P]roducts  [C]lients  [R]eports  [,] Settings  [L]ock  [Q]uit"
	var content string
	switch {
	case m.starting:
		content = "Loading..."
	case m.locked:
		title = "Locked"
		footer = "enter: unlock  ctrl+c: quit"
		content = m.lock.View()
	default:
		if screen, ok := m.screens[m.currentScreen]; ok {
			content = screen.View()
		} else {
			content = "Loading..."
		}
	}

	header := headerStyle.Render(fmt.Sprintf("billbook - %s", title))

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = errorStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footerStyle.Render(footer))

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
