package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldCompany = iota
	settingsFieldAddress
	settingsFieldPhone
	settingsFieldLogo
	settingsFieldTaxRate
	settingsFieldCurrency
	settingsFieldCount
)

type settingsDataMsg struct {
	settings *domain.Settings
	err      error
}

type settingsSavedMsg struct {
	settings *domain.Settings
	err      error
}

// themeChangedMsg tells the root model to restyle after dark mode changes
type themeChangedMsg struct {
	darkMode bool
}

// SettingsModel manages the business profile
type SettingsModel struct {
	app        *app.App
	settings   *domain.Settings
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	loading    bool
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:     a,
		mode:    settingsModeView,
		loading: true,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadSettings()
}

func (m *SettingsModel) loadSettings() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		settings, err := a.Settings(context.Background())
		return settingsDataMsg{settings: settings, err: err}
	}
}

func (m *SettingsModel) initForm() {
	m.fields = make([]textinput.Model, settingsFieldCount)
	s := m.settings

	m.fields[settingsFieldCompany] = newInput(domain.DefaultCompanyName, 100, 40)
	m.fields[settingsFieldCompany].SetValue(s.CompanyName)

	m.fields[settingsFieldAddress] = newInput("Shop address", 200, 60)
	m.fields[settingsFieldAddress].SetValue(s.CompanyAddress)

	m.fields[settingsFieldPhone] = newInput("Business phone", 20, 20)
	m.fields[settingsFieldPhone].SetValue(s.CompanyPhone)

	m.fields[settingsFieldLogo] = newInput("Path or URL to a logo", 256, 60)
	m.fields[settingsFieldLogo].SetValue(s.CompanyLogo)

	m.fields[settingsFieldTaxRate] = newInput("0", 8, 10)
	m.fields[settingsFieldTaxRate].SetValue(s.TaxRate.String())

	m.fields[settingsFieldCurrency] = newInput(domain.DefaultCurrency, 8, 10)
	m.fields[settingsFieldCurrency].SetValue(s.Currency)

	m.fieldFocus = settingsFieldCompany
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	a := m.app
	updated := *m.settings
	updated.CompanyName = strings.TrimSpace(m.fields[settingsFieldCompany].Value())
	updated.CompanyAddress = strings.TrimSpace(m.fields[settingsFieldAddress].Value())
	updated.CompanyPhone = strings.TrimSpace(m.fields[settingsFieldPhone].Value())
	updated.CompanyLogo = strings.TrimSpace(m.fields[settingsFieldLogo].Value())
	updated.Currency = strings.TrimSpace(m.fields[settingsFieldCurrency].Value())
	taxRateStr := m.fields[settingsFieldTaxRate].Value()

	return func() tea.Msg {
		taxRate, err := parseAmount("tax rate", taxRateStr)
		if err != nil {
			return settingsSavedMsg{err: err}
		}
		updated.TaxRate = taxRate

		return persistSettings(a, &updated)
	}
}

func (m *SettingsModel) toggleDarkMode() tea.Cmd {
	a := m.app
	updated := *m.settings
	updated.DarkMode = !updated.DarkMode
	return func() tea.Msg {
		return persistSettings(a, &updated)
	}
}

func persistSettings(a *app.App, s *domain.Settings) tea.Msg {
	if err := a.SettingsRepo.Save(context.Background(), s); err != nil {
		return settingsSavedMsg{err: fmt.Errorf("failed to save settings: %w", err)}
	}
	return settingsSavedMsg{settings: s}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.settings = msg.settings
		}
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		darkModeChanged := m.settings.DarkMode != msg.settings.DarkMode
		m.settings = msg.settings
		m.mode = settingsModeView
		m.err = nil
		m.statusMsg = "Settings saved"
		if darkModeChanged {
			dark := msg.settings.DarkMode
			return m, func() tea.Msg { return themeChangedMsg{darkMode: dark} }
		}
		return m, nil
	}

	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadSettings()

	case tea.KeyMsg:
		if m.loading || m.settings == nil {
			return m, nil
		}
		m.err = nil
		switch msg.String() {
		case "enter":
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		case "t":
			return m, m.toggleDarkMode()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			var cmd tea.Cmd
			m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, 1)
			return m, cmd

		case "shift+tab", "up":
			var cmd tea.Cmd
			m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, -1)
			return m, cmd

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			var cmd tea.Cmd
			m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, 1)
			return m, cmd

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.loading {
		return "Loading settings..."
	}
	if m.settings == nil {
		return renderError(m.err)
	}
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"
	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	st := m.settings
	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		if value == "" {
			value = subtitleStyle.Render("(not set)")
		} else {
			value = valueStyle.Render(value)
		}
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), value)
	}

	s += subtitleStyle.Render("  Business") + "\n\n"
	s += row("Company:", st.DisplayName())
	s += row("Address:", st.CompanyAddress)
	s += row("Phone:", st.CompanyPhone)
	s += row("Logo:", st.CompanyLogo)
	s += row("Tax Rate:", st.TaxRate.String()+"%")
	s += row("Currency:", st.CurrencySymbol())

	darkMode := "off"
	if st.DarkMode {
		darkMode = "on"
	}
	s += row("Dark Mode:", darkMode)

	pin := "not set"
	if st.IsPinSet() {
		pin = "set"
	}
	s += row("PIN:", pin)

	s += "\n" + subtitleStyle.Render("  Invoices") + "\n\n"
	s += row("Output Directory:", cfg.Invoice.OutputDir)
	s += row("Number Format:", domain.FormatInvoiceNumber(cfg.Invoice.NumberPrefix, 1, cfg.Invoice.NumberWidth))
	s += row("Database:", cfg.Database.Driver)

	s += "\n" + helpStyle.Render("  enter: edit business details  t: toggle dark mode")
	s += "\n" + subtitleStyle.Render("  PIN and invoice numbering are managed with `billbook pin` and the config file.")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	labels := []string{"Company Name:", "Address:", "Phone:", "Logo:", "Tax Rate (%):", "Currency Symbol:"}
	s += renderForm(labels, m.fields, m.fieldFocus)
	s += renderError(m.err)
	s += helpStyle.Render(formHelp)

	return s
}
