package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/render"
	"github.com/andy/billbook/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type orderMode int

const (
	orderModeCart       orderMode = iota
	orderModeSearch               // Typing a product filter
	orderModePickClient           // Step 1: existing or new client
	orderModeDetails              // Step 2: client details and discount
	orderModeDone                 // Invoice saved
)

// checkout form field indices
const (
	orderFieldName = iota
	orderFieldPhone
	orderFieldAddress
	orderFieldDiscount
	orderFieldCount
)

// OrdersModel builds a cart from the catalog and turns it into an invoice
type OrdersModel struct {
	app      *app.App
	products []*domain.Product
	clients  []*domain.Client
	settings *domain.Settings
	cart     *domain.Cart

	mode   orderMode
	cursor int
	search textinput.Model

	// Checkout state
	clientCursor int // 0 is "new client"
	picked       *domain.Client
	fields       []textinput.Model
	fieldFocus   int

	invoice   *domain.Invoice
	shareLink string

	loading   bool
	saving    bool
	err       error
	statusMsg string
}

type ordersDataMsg struct {
	products []*domain.Product
	clients  []*domain.Client
	settings *domain.Settings
	err      error
}

type orderCreatedMsg struct {
	invoice *domain.Invoice
	err     error
}

type orderPDFMsg struct {
	path string
	err  error
}

// NewOrdersModel creates the order screen with an empty cart
func NewOrdersModel(a *app.App) tea.Model {
	return &OrdersModel{
		app:     a,
		cart:    domain.NewCart(),
		search:  newInput("Search products", 60, 30),
		loading: true,
	}
}

// IsCapturingInput returns true while typing a search or filling the checkout form
func (m *OrdersModel) IsCapturingInput() bool {
	return m.mode == orderModeSearch || m.mode == orderModeDetails
}

func (m *OrdersModel) Init() tea.Cmd {
	return m.loadData()
}

// loadData fetches the catalog, clients and settings concurrently
func (m *OrdersModel) loadData() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		var msg ordersDataMsg

		g.Go(func() error {
			products, err := a.ProductRepo.List(ctx)
			msg.products = products
			return err
		})
		g.Go(func() error {
			clients, err := a.ClientRepo.List(ctx)
			msg.clients = clients
			return err
		})
		g.Go(func() error {
			settings, err := a.Settings(ctx)
			msg.settings = settings
			return err
		})

		if err := g.Wait(); err != nil {
			return ordersDataMsg{err: err}
		}
		return msg
	}
}

// visibleProducts applies the search filter to the catalog
func (m *OrdersModel) visibleProducts() []*domain.Product {
	query := strings.TrimSpace(m.search.Value())
	if query == "" {
		return m.products
	}
	var out []*domain.Product
	for _, p := range m.products {
		if p.MatchesTitle(query) {
			out = append(out, p)
		}
	}
	return out
}

// cartItems prices the cart from the loaded catalog
func (m *OrdersModel) cartItems() []domain.LineItem {
	byID := make(map[string]*domain.Product, len(m.products))
	for _, p := range m.products {
		byID[p.ID] = p
	}

	var items []domain.LineItem
	for _, line := range m.cart.Lines() {
		p, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		items = append(items, domain.LineItem{
			ProductID: p.ID,
			Title:     p.Title,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

func (m *OrdersModel) previewTotals(discount decimal.Decimal) domain.Totals {
	return domain.ComputeTotals(m.cartItems(), m.settings.TaxRate, discount)
}

func (m *OrdersModel) initForm(client *domain.Client) {
	m.fields = make([]textinput.Model, orderFieldCount)
	m.fields[orderFieldName] = newInput("Client name", 100, 40)
	m.fields[orderFieldPhone] = newInput("+91 98765 43210", 20, 20)
	m.fields[orderFieldAddress] = newInput("Optional address", 200, 50)
	m.fields[orderFieldDiscount] = newInput("0.00", 12, 12)

	m.picked = client
	if client != nil {
		m.fields[orderFieldName].SetValue(client.Name)
		m.fields[orderFieldPhone].SetValue(client.Phone)
		m.fields[orderFieldAddress].SetValue(client.Address)
	}

	m.fieldFocus = orderFieldName
}

func (m *OrdersModel) createInvoice() tea.Cmd {
	a := m.app
	cart := m.cart
	settings := m.settings
	in := service.ClientInput{
		Name:    m.fields[orderFieldName].Value(),
		Phone:   m.fields[orderFieldPhone].Value(),
		Address: m.fields[orderFieldAddress].Value(),
	}
	if m.picked != nil {
		in.ID = m.picked.ID
	}
	discountStr := m.fields[orderFieldDiscount].Value()

	return func() tea.Msg {
		discount, err := parseAmount("discount", discountStr)
		if err != nil {
			return orderCreatedMsg{err: err}
		}

		invoice, err := a.InvoiceService.CreateInvoice(context.Background(), service.CreateInvoiceRequest{
			Cart:     cart,
			Client:   in,
			Discount: discount,
		}, settings)
		return orderCreatedMsg{invoice: invoice, err: err}
	}
}

func (m *OrdersModel) savePDF() tea.Cmd {
	dir := m.app.Config.Invoice.OutputDir
	inv := m.invoice
	settings := m.settings
	return func() tea.Msg {
		path, err := render.SavePDF(dir, inv, settings)
		return orderPDFMsg{path: path, err: err}
	}
}

func (m *OrdersModel) resetOrder() tea.Cmd {
	m.cart.Clear()
	m.invoice = nil
	m.shareLink = ""
	m.picked = nil
	m.search.Reset()
	m.cursor = 0
	m.mode = orderModeCart
	m.loading = true
	return m.loadData()
}

func (m *OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case ordersDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.products = msg.products
			m.clients = msg.clients
			m.settings = msg.settings
			if m.cursor >= len(m.visibleProducts()) {
				m.cursor = max(0, len(m.visibleProducts())-1)
			}
		}
		return m, nil

	case orderCreatedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.invoice = msg.invoice
		m.mode = orderModeDone
		m.statusMsg = fmt.Sprintf("Invoice %s created", msg.invoice.InvoiceNumber)
		return m, nil

	case orderPDFMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saved %s", msg.path)
		return m, nil

	case tea.KeyMsg:
		if m.loading || m.saving {
			return m, nil
		}
		switch m.mode {
		case orderModeSearch:
			return m.updateSearch(msg)
		case orderModePickClient:
			return m.updatePickClient(msg)
		case orderModeDetails:
			return m.updateDetails(msg)
		case orderModeDone:
			return m.updateDone(msg)
		}
		return m.updateCart(msg)
	}

	if m.mode == orderModeDetails && m.fields != nil {
		var cmd tea.Cmd
		m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *OrdersModel) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""
	visible := m.visibleProducts()

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Increase):
		if m.cursor < len(visible) {
			m.cart.Add(visible[m.cursor].ID, 1)
		}
	case key.Matches(msg, DefaultKeyMap.Decrease):
		if m.cursor < len(visible) {
			m.cart.Add(visible[m.cursor].ID, -1)
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.mode = orderModeSearch
		return m, m.search.Focus()
	case msg.String() == "x":
		m.cart.Clear()
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.cart.IsEmpty() {
			m.err = service.ErrEmptyCart
			return m, nil
		}
		m.clientCursor = 0
		m.mode = orderModePickClient
	}
	return m, nil
}

func (m *OrdersModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		fallthrough
	case "enter":
		m.search.Blur()
		m.mode = orderModeCart
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m *OrdersModel) updatePickClient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = orderModeCart
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.clientCursor > 0 {
			m.clientCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.clientCursor < len(m.clients) {
			m.clientCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		var client *domain.Client
		if m.clientCursor > 0 {
			client = m.clients[m.clientCursor-1]
		}
		m.initForm(client)
		m.mode = orderModeDetails
		return m, m.fields[m.fieldFocus].Focus()
	}
	return m, nil
}

func (m *OrdersModel) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = orderModePickClient
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
		if m.fieldFocus == orderFieldCount-1 {
			m.saving = true
			return m, m.createInvoice()
		}
		var cmd tea.Cmd
		m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, 1)
		return m, cmd

	case "ctrl+s":
		m.saving = true
		return m, m.createInvoice()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *OrdersModel) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "f":
		return m, m.savePDF()
	case "w":
		m.shareLink = render.WhatsAppLink(m.invoice, m.settings)
		m.statusMsg = "Open this link to send the invoice on WhatsApp"
	case "n", "esc":
		m.statusMsg = ""
		return m, m.resetOrder()
	}
	return m, nil
}

func (m *OrdersModel) View() string {
	if m.loading {
		return "Loading catalog..."
	}
	if m.settings == nil {
		return renderError(m.err)
	}

	switch m.mode {
	case orderModePickClient:
		return m.viewPickClient()
	case orderModeDetails:
		return m.viewDetails()
	case orderModeDone:
		return m.viewDone()
	}
	return m.viewCart()
}

func (m *OrdersModel) viewCart() string {
	symbol := m.settings.CurrencySymbol()
	var s string

	s += titleStyle.Render("New Order") + "\n\n"

	if m.mode == orderModeSearch || m.search.Value() != "" {
		s += "  " + m.search.View() + "\n\n"
	}

	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	visible := m.visibleProducts()
	if len(m.products) == 0 {
		s += subtitleStyle.Render("  No products yet. Press 'p' to add some to your catalog.") + "\n"
		return s
	}
	if len(visible) == 0 {
		s += subtitleStyle.Render("  No products match your search.") + "\n"
	}

	for i, p := range visible {
		indicator := "  "
		style := textStyle
		if i == m.cursor {
			indicator = "> "
			style = selectedStyle
		}
		qty := ""
		if q := m.cart.Quantity(p.ID); q > 0 {
			qty = totalStyle.Render(fmt.Sprintf("x%d", q))
		}
		s += style.Render(fmt.Sprintf("%s%-30s %12s", indicator, truncateStr(p.Title, 30), formatMoney(symbol, p.Price))) +
			"  " + qty + "\n"
	}

	totals := m.previewTotals(decimal.Zero)
	s += "\n" + boxStyle.Render(fmt.Sprintf(
		"Items: %d   Subtotal: %s   Tax (%s%%): %s   Total: %s",
		m.cart.Count(),
		formatMoney(symbol, totals.Subtotal),
		m.settings.TaxRate.String(),
		formatMoney(symbol, totals.Tax),
		totalStyle.Render(formatMoney(symbol, totals.Total)),
	)) + "\n\n"

	s += helpStyle.Render("  j/k: navigate  +/-: quantity  /: search  x: clear cart  enter: checkout")
	return s
}

func (m *OrdersModel) viewPickClient() string {
	var s string
	s += titleStyle.Render("Checkout: choose client") + "\n\n"

	rows := []string{"+ New client"}
	for _, c := range m.clients {
		rows = append(rows, fmt.Sprintf("%-28s %s", truncateStr(c.Name, 28), c.Phone))
	}
	for i, row := range rows {
		if i == m.clientCursor {
			s += selectedStyle.Render("> "+row) + "\n"
		} else {
			s += textStyle.Render("  "+row) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: back to cart")
	return s
}

func (m *OrdersModel) viewDetails() string {
	symbol := m.settings.CurrencySymbol()
	var s string

	if m.picked != nil {
		s += titleStyle.Render("Checkout: "+m.picked.Name) + "\n\n"
	} else {
		s += titleStyle.Render("Checkout: new client") + "\n\n"
	}

	labels := []string{"Name:", "Phone:", "Address:", fmt.Sprintf("Discount (%s):", symbol)}
	s += renderForm(labels, m.fields, m.fieldFocus)

	discount, err := parseAmount("discount", m.fields[orderFieldDiscount].Value())
	if err == nil {
		t := m.previewTotals(discount)
		s += fmt.Sprintf("  Subtotal %s  Tax %s  Discount %s  Total %s\n\n",
			formatMoney(symbol, t.Subtotal),
			formatMoney(symbol, t.Tax),
			formatMoney(symbol, discount),
			totalStyle.Render(formatMoney(symbol, t.Total)),
		)
		if t.Total.IsNegative() {
			s += warningStyle.Render("  Discount is larger than the bill") + "\n\n"
		}
	}

	if m.saving {
		s += subtitleStyle.Render("  Creating invoice...") + "\n\n"
	}
	s += renderError(m.err)
	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: create invoice  esc: back")
	return s
}

func (m *OrdersModel) viewDone() string {
	inv := m.invoice
	var s string

	s += titleStyle.Render("Invoice "+inv.InvoiceNumber) + "\n\n"
	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	s += fmt.Sprintf("  %s  %s\n", inv.ClientName, subtitleStyle.Render(inv.ClientPhone))
	for _, item := range inv.Items {
		s += fmt.Sprintf("    %-28s %3d x %10s = %s\n",
			truncateStr(item.Title, 28), item.Quantity,
			formatMoney(inv.Currency, item.UnitPrice),
			formatMoney(inv.Currency, item.Amount()))
	}
	s += "\n" + renderTotals(inv) + "\n"

	if m.shareLink != "" {
		s += "  " + m.shareLink + "\n\n"
	}

	s += helpStyle.Render("  f: save PDF  w: WhatsApp link  n: new order")
	return s
}

// renderTotals shows the money block of an invoice, skipping zero tax and discount
func renderTotals(inv *domain.Invoice) string {
	s := fmt.Sprintf("  %-10s %s\n", "Subtotal", formatMoney(inv.Currency, inv.Subtotal))
	if !inv.Tax.IsZero() {
		s += fmt.Sprintf("  %-10s %s\n", fmt.Sprintf("Tax %s%%", inv.TaxRate.String()), formatMoney(inv.Currency, inv.Tax))
	}
	if !inv.Discount.IsZero() {
		s += fmt.Sprintf("  %-10s -%s\n", "Discount", formatMoney(inv.Currency, inv.Discount))
	}
	s += fmt.Sprintf("  %-10s %s\n", "Total", totalStyle.Render(formatMoney(inv.Currency, inv.Total)))
	return s
}
