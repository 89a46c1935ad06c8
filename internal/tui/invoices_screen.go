package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/render"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewSearch                        // Typing a search query
	invoiceViewDetail                        // Viewing a single invoice
	invoiceViewConfirmDelete                 // Waiting for y/n
)

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	settings  *domain.Settings
	cursor    int
	selected  *domain.Invoice
	search    textinput.Model
	shareLink string
	loading   bool
	err       error
	statusMsg string
}

// IsCapturingInput returns true when the search input is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceViewSearch
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	settings *domain.Settings
	err      error
}

type invoiceDeletedMsg struct {
	number string
	err    error
}

// invoiceFileMsg reports a PDF or CSV written to disk
type invoiceFileMsg struct {
	path string
	err  error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		mode:    invoiceViewList,
		search:  newInput("Client name or invoice number", 60, 30),
		loading: true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	a := m.app
	query := m.search.Value()
	return func() tea.Msg {
		ctx := context.Background()

		invoices, err := a.InvoiceService.SearchInvoices(ctx, query)
		if err != nil {
			return invoicesDataMsg{err: err}
		}
		settings, err := a.Settings(ctx)
		if err != nil {
			return invoicesDataMsg{err: err}
		}
		return invoicesDataMsg{invoices: invoices, settings: settings}
	}
}

func (m *InvoicesModel) current() *domain.Invoice {
	if m.mode == invoiceViewDetail || m.mode == invoiceViewConfirmDelete {
		if m.selected != nil {
			return m.selected
		}
	}
	if m.cursor < len(m.invoices) {
		return m.invoices[m.cursor]
	}
	return nil
}

func (m *InvoicesModel) deleteInvoice(inv *domain.Invoice) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		err := a.InvoiceService.DeleteInvoice(context.Background(), inv.ID)
		return invoiceDeletedMsg{number: inv.InvoiceNumber, err: err}
	}
}

func (m *InvoicesModel) savePDF(inv *domain.Invoice) tea.Cmd {
	dir := m.app.Config.Invoice.OutputDir
	settings := m.settings
	return func() tea.Msg {
		path, err := render.SavePDF(dir, inv, settings)
		return invoiceFileMsg{path: path, err: err}
	}
}

// exportCSV writes the invoices currently listed to the output directory
func (m *InvoicesModel) exportCSV() tea.Cmd {
	dir := m.app.Config.Invoice.OutputDir
	invoices := m.invoices
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return invoiceFileMsg{err: fmt.Errorf("create output dir: %w", err)}
		}
		path := filepath.Join(dir, fmt.Sprintf("invoices-%s.csv", time.Now().Format("20060102-150405")))

		f, err := os.Create(path)
		if err != nil {
			return invoiceFileMsg{err: err}
		}
		if err := render.WriteInvoicesCSV(f, invoices); err != nil {
			f.Close()
			return invoiceFileMsg{err: err}
		}
		return invoiceFileMsg{path: path, err: f.Close()}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			m.settings = msg.settings
			if m.cursor >= len(m.invoices) {
				m.cursor = max(0, len(m.invoices)-1)
			}
		}
		return m, nil

	case invoiceDeletedMsg:
		m.mode = invoiceViewList
		m.selected = nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted invoice %s", msg.number)
		m.loading = true
		return m, m.loadInvoices()

	case invoiceFileMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saved %s", msg.path)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case invoiceViewSearch:
			return m.updateSearch(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewConfirmDelete:
			if msg.String() == "y" {
				return m, m.deleteInvoice(m.current())
			}
			m.mode = invoiceViewList
			if m.selected != nil {
				m.mode = invoiceViewDetail
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *InvoicesModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		fallthrough
	case "enter":
		m.search.Blur()
		m.mode = invoiceViewList
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""
	m.shareLink = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if inv := m.current(); inv != nil {
			m.selected = inv
			m.mode = invoiceViewDetail
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.mode = invoiceViewSearch
		return m, m.search.Focus()
	case key.Matches(msg, DefaultKeyMap.Delete):
		if m.current() != nil {
			m.mode = invoiceViewConfirmDelete
		}
	case msg.String() == "f":
		if inv := m.current(); inv != nil {
			return m, m.savePDF(inv)
		}
	case msg.String() == "x":
		if len(m.invoices) > 0 {
			return m, m.exportCSV()
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.selected = nil
		m.shareLink = ""
		m.statusMsg = ""
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.mode = invoiceViewConfirmDelete
	case msg.String() == "f":
		return m, m.savePDF(m.selected)
	case msg.String() == "w":
		m.shareLink = render.WhatsAppLink(m.selected, m.settings)
	}
	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}

	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewConfirmDelete:
		if m.selected != nil {
			return m.viewDetail()
		}
	}
	return m.viewList()
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.mode == invoiceViewSearch || m.search.Value() != "" {
		s += "  " + m.search.View() + "\n\n"
	}

	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	if len(m.invoices) == 0 {
		if m.search.Value() != "" {
			s += subtitleStyle.Render("  No invoices match your search.") + "\n"
		} else {
			s += subtitleStyle.Render("  No invoices yet. Press 'o' to take an order.") + "\n"
		}
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %-12s  %-12s  %-24s  %12s", "Number", "Date", "Client", "Total")) + "\n"

	for i, inv := range m.invoices {
		line := fmt.Sprintf("%-12s  %-12s  %-24s  %12s",
			inv.InvoiceNumber,
			inv.CreatedAt.Local().Format(render.DateLayout),
			truncateStr(inv.ClientName, 24),
			formatMoney(inv.Currency, inv.Total),
		)
		if i == m.cursor {
			s += selectedStyle.Render("> "+line) + "\n"
		} else {
			s += textStyle.Render("  "+line) + "\n"
		}
	}

	if m.mode == invoiceViewConfirmDelete {
		s += "\n" + warningStyle.Render(fmt.Sprintf("  Delete invoice %s? This cannot be undone. (y/n)", m.current().InvoiceNumber)) + "\n"
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  /: search  f: save PDF  x: export CSV  d: delete")
	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	var s string

	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "\n"
	s += subtitleStyle.Render("  "+inv.CreatedAt.Local().Format(render.DateLayout)) + "\n\n"

	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	labelStyle := lipgloss.NewStyle().Bold(true).Width(10)
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Client:"), inv.ClientName)
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Phone:"), inv.ClientPhone)
	if inv.ClientAddress != "" {
		s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Address:"), inv.ClientAddress)
	}

	s += "\n" + subtitleStyle.Render(fmt.Sprintf("  %-28s  %5s  %12s  %12s", "Item", "Qty", "Price", "Amount")) + "\n"
	for _, item := range inv.Items {
		s += fmt.Sprintf("  %-28s  %5d  %12s  %12s\n",
			truncateStr(item.Title, 28),
			item.Quantity,
			formatMoney(inv.Currency, item.UnitPrice),
			formatMoney(inv.Currency, item.Amount()),
		)
	}

	s += "\n" + renderTotals(inv)

	if m.shareLink != "" {
		s += "\n  " + m.shareLink + "\n"
	}

	if m.mode == invoiceViewConfirmDelete {
		s += "\n" + warningStyle.Render(fmt.Sprintf("  Delete invoice %s? This cannot be undone. (y/n)", inv.InvoiceNumber)) + "\n"
		return s
	}

	s += "\n" + helpStyle.Render("  f: save PDF  w: WhatsApp link  d: delete  esc: back to list")
	return s
}
