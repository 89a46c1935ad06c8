package tui

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldPhone
	fieldAddress
	fieldCount
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	clients   []*domain.Client
	stats     map[string]*clientStats
	currency  string
	cursor    int
	loading   bool
	err       error
	statusMsg string

	// Form state
	mode       clientMode
	fields     []textinput.Model
	fieldFocus int
	editingID  string // empty for a new client
}

// clientStats totals the invoices billed to one client
type clientStats struct {
	invoices int
	billed   decimal.Decimal
}

type clientsDataMsg struct {
	clients  []*domain.Client
	stats    map[string]*clientStats
	currency string
	err      error
}

type clientSavedMsg struct {
	name string
	err  error
}

type clientDeletedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{
		app:     a,
		stats:   make(map[string]*clientStats),
		loading: true,
	}
}

// IsCapturingInput returns true when the form is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode == clientModeNew || m.mode == clientModeEdit
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		var (
			clients  []*domain.Client
			invoices []*domain.Invoice
			settings *domain.Settings
		)

		g.Go(func() (err error) {
			clients, err = a.ClientRepo.List(ctx)
			return err
		})
		g.Go(func() (err error) {
			invoices, err = a.InvoiceService.ListInvoices(ctx)
			return err
		})
		g.Go(func() (err error) {
			settings, err = a.Settings(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			return clientsDataMsg{err: err}
		}

		stats := make(map[string]*clientStats)
		for _, inv := range invoices {
			cs, ok := stats[inv.ClientID]
			if !ok {
				cs = &clientStats{}
				stats[inv.ClientID] = cs
			}
			cs.invoices++
			cs.billed = cs.billed.Add(inv.Total)
		}

		return clientsDataMsg{
			clients:  clients,
			stats:    stats,
			currency: settings.CurrencySymbol(),
		}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)
	m.fields[fieldName] = newInput("Client name", 100, 40)
	m.fields[fieldPhone] = newInput("+91 98765 43210", 20, 20)
	m.fields[fieldAddress] = newInput("Optional address", 200, 50)

	// Pre-fill for editing
	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldPhone].SetValue(editing.Phone)
		m.fields[fieldAddress].SetValue(editing.Address)
		m.editingID = editing.ID
	} else {
		m.editingID = ""
	}

	m.fieldFocus = fieldName
}

func (m *ClientsModel) saveClient() tea.Cmd {
	a := m.app
	editingID := m.editingID
	name := m.fields[fieldName].Value()
	phone := m.fields[fieldPhone].Value()
	address := m.fields[fieldAddress].Value()

	return func() tea.Msg {
		ctx := context.Background()

		client := domain.NewClient(name, phone, address)
		if err := client.Validate(); err != nil {
			return clientSavedMsg{err: err}
		}

		if editingID != "" {
			existing, err := a.ClientRepo.GetByID(ctx, editingID)
			if err != nil {
				return clientSavedMsg{err: err}
			}
			existing.Name = client.Name
			existing.Phone = client.Phone
			existing.Address = client.Address

			if err := a.ClientRepo.Update(ctx, existing); err != nil {
				return clientSavedMsg{err: err}
			}
			return clientSavedMsg{name: client.Name}
		}

		if err := a.ClientRepo.Create(ctx, client); err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{name: client.Name}
	}
}

func (m *ClientsModel) deleteClient() tea.Cmd {
	a := m.app
	client := m.clients[m.cursor]
	return func() tea.Msg {
		err := a.ClientRepo.Delete(context.Background(), client.ID)
		return clientDeletedMsg{name: client.Name, err: err}
	}
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle form mode
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.stats = msg.stats
			m.currency = msg.currency
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		return m, nil

	case clientDeletedMsg:
		m.mode = clientModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.mode == clientModeConfirmDelete {
			if msg.String() == "y" {
				return m, m.deleteClient()
			}
			m.mode = clientModeList
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.clients)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			// Enter key opens edit form for selected client
			if m.cursor < len(m.clients) {
				m.mode = clientModeEdit
				m.initForm(m.clients[m.cursor])
				return m, m.fields[fieldName].Focus()
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.cursor < len(m.clients) {
				m.mode = clientModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// Cancel form
			m.mode = clientModeList
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
			// If on last field or explicit submit, save
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			var cmd tea.Cmd
			m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, 1)
			return m, cmd

		case "ctrl+s":
			// Save from any field
			return m, m.saveClient()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		s += titleStyle.Render("New Client") + "\n\n"
	} else {
		s += titleStyle.Render("Edit Client") + "\n"
		s += subtitleStyle.Render("  Existing invoices keep the details they were issued with.") + "\n\n"
	}

	s += renderForm([]string{"Name:", "Phone:", "Address:"}, m.fields, m.fieldFocus)
	s += renderError(m.err)
	s += helpStyle.Render(formHelp)

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string
	s += titleStyle.Render("Clients") + "\n\n"
	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one, or create one at checkout.") + "\n"
		return s
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	if m.mode == clientModeConfirmDelete {
		s += "\n" + warningStyle.Render(fmt.Sprintf("  Delete %s? Past invoices keep their copy. (y/n)", m.clients[m.cursor].Name)) + "\n"
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  d: delete")

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	indicator := "  "
	if selected {
		indicator = "> "
	}

	invoices := 0
	billed := decimal.Zero
	if cs := m.stats[client.ID]; cs != nil {
		invoices = cs.invoices
		billed = cs.billed
	}

	line1 := fmt.Sprintf("%s%s", indicator, client.Name)
	line2 := fmt.Sprintf("    %s  |  Invoices: %d  Billed: %s", client.Phone, invoices, formatMoney(m.currency, billed))

	nameStyle := textStyle
	if selected {
		nameStyle = selectedStyle
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if client.Address != "" {
		result += "\n" + subtitleStyle.Render("    "+truncateStr(client.Address, 60))
	}
	return result
}
