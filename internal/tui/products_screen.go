package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

type productMode int

const (
	productModeList productMode = iota
	productModeNew
	productModeEdit
	productModeConfirmDelete
)

// product form field indices
const (
	productFieldTitle = iota
	productFieldPrice
	productFieldDescription
	productFieldImage
	productFieldCount
)

// ProductsModel manages the product catalog
type ProductsModel struct {
	app      *app.App
	products []*domain.Product
	currency string
	cursor   int
	loading  bool
	err      error

	statusMsg string

	// Form state
	mode       productMode
	fields     []textinput.Model
	fieldFocus int
	editingID  string // empty for a new product
}

type productsDataMsg struct {
	products []*domain.Product
	currency string
	err      error
}

type productSavedMsg struct {
	title string
	err   error
}

type productDeletedMsg struct {
	title string
	err   error
}

// NewProductsModel creates a new products screen model
func NewProductsModel(a *app.App) tea.Model {
	return &ProductsModel{
		app:     a,
		loading: true,
	}
}

// IsCapturingInput returns true when the form is active
func (m *ProductsModel) IsCapturingInput() bool {
	return m.mode == productModeNew || m.mode == productModeEdit
}

func (m *ProductsModel) Init() tea.Cmd {
	return m.loadProducts()
}

func (m *ProductsModel) loadProducts() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		var msg productsDataMsg

		g.Go(func() error {
			products, err := a.ProductRepo.List(ctx)
			msg.products = products
			return err
		})
		g.Go(func() error {
			settings, err := a.Settings(ctx)
			if err == nil {
				msg.currency = settings.CurrencySymbol()
			}
			return err
		})

		if err := g.Wait(); err != nil {
			return productsDataMsg{err: err}
		}
		return msg
	}
}

func (m *ProductsModel) initForm(editing *domain.Product) {
	m.fields = make([]textinput.Model, productFieldCount)
	m.fields[productFieldTitle] = newInput("Product title", 100, 40)
	m.fields[productFieldPrice] = newInput("250.00", 12, 15)
	m.fields[productFieldDescription] = newInput("Optional description", 200, 50)
	m.fields[productFieldImage] = newInput("Optional image path or URL", 256, 50)

	if editing != nil {
		m.fields[productFieldTitle].SetValue(editing.Title)
		m.fields[productFieldPrice].SetValue(editing.Price.StringFixed(2))
		m.fields[productFieldDescription].SetValue(editing.Description)
		m.fields[productFieldImage].SetValue(editing.Image)
		m.editingID = editing.ID
	} else {
		m.editingID = ""
	}

	m.fieldFocus = productFieldTitle
}

func (m *ProductsModel) saveProduct() tea.Cmd {
	a := m.app
	editingID := m.editingID
	title := strings.TrimSpace(m.fields[productFieldTitle].Value())
	priceStr := m.fields[productFieldPrice].Value()
	description := strings.TrimSpace(m.fields[productFieldDescription].Value())
	image := strings.TrimSpace(m.fields[productFieldImage].Value())

	return func() tea.Msg {
		ctx := context.Background()

		if title == "" {
			return productSavedMsg{err: fmt.Errorf("title is required")}
		}
		if strings.TrimSpace(priceStr) == "" {
			return productSavedMsg{err: fmt.Errorf("price is required")}
		}
		price, err := parseAmount("price", priceStr)
		if err != nil {
			return productSavedMsg{err: err}
		}

		if editingID != "" {
			product, err := a.ProductRepo.GetByID(ctx, editingID)
			if err != nil {
				return productSavedMsg{err: err}
			}
			product.Title = title
			product.Price = price
			product.Description = description
			product.Image = image

			if err := a.ProductRepo.Update(ctx, product); err != nil {
				return productSavedMsg{err: err}
			}
			return productSavedMsg{title: title}
		}

		product := domain.NewProduct(title, description, price)
		product.Image = image
		if err := a.ProductRepo.Create(ctx, product); err != nil {
			return productSavedMsg{err: err}
		}
		return productSavedMsg{title: title}
	}
}

func (m *ProductsModel) deleteProduct() tea.Cmd {
	a := m.app
	product := m.products[m.cursor]
	return func() tea.Msg {
		err := a.ProductRepo.Delete(context.Background(), product.ID)
		return productDeletedMsg{title: product.Title, err: err}
	}
}

func (m *ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == productModeNew || m.mode == productModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadProducts()

	case productsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.products = msg.products
			m.currency = msg.currency
			if m.cursor >= len(m.products) {
				m.cursor = max(0, len(m.products)-1)
			}
		}
		return m, nil

	case productDeletedMsg:
		m.mode = productModeList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.title)
		m.loading = true
		return m, m.loadProducts()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.mode == productModeConfirmDelete {
			if msg.String() == "y" {
				return m, m.deleteProduct()
			}
			m.mode = productModeList
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
			if m.cursor < len(m.products)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = productModeNew
			m.initForm(nil)
			return m, m.fields[productFieldTitle].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.products) {
				m.mode = productModeEdit
				m.initForm(m.products[m.cursor])
				return m, m.fields[productFieldTitle].Focus()
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.cursor < len(m.products) {
				m.mode = productModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *ProductsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case productSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = productModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.title)
		m.loading = true
		return m, m.loadProducts()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = productModeList
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
			if m.fieldFocus == productFieldCount-1 {
				return m, m.saveProduct()
			}
			var cmd tea.Cmd
			m.fieldFocus, cmd = moveFocus(m.fields, m.fieldFocus, 1)
			return m, cmd

		case "ctrl+s":
			return m, m.saveProduct()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ProductsModel) View() string {
	if m.mode == productModeNew || m.mode == productModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ProductsModel) viewForm() string {
	var s string
	if m.mode == productModeNew {
		s += titleStyle.Render("New Product") + "\n\n"
	} else {
		s += titleStyle.Render("Edit Product") + "\n\n"
	}

	labels := []string{"Title:", fmt.Sprintf("Price (%s):", m.currency), "Description:", "Image:"}
	s += renderForm(labels, m.fields, m.fieldFocus)
	s += renderError(m.err)
	s += helpStyle.Render(formHelp)
	return s
}

func (m *ProductsModel) viewList() string {
	if m.loading {
		return "Loading products..."
	}

	var s string
	s += titleStyle.Render("Products") + "\n\n"
	s += renderStatus(m.statusMsg)
	s += renderError(m.err)

	if len(m.products) == 0 {
		s += subtitleStyle.Render("  No products yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, p := range m.products {
		indicator := "  "
		style := textStyle
		if i == m.cursor {
			indicator = "> "
			style = selectedStyle
		}
		s += style.Render(fmt.Sprintf("%s%-30s %12s", indicator, truncateStr(p.Title, 30), formatMoney(m.currency, p.Price))) + "\n"
		if p.Description != "" {
			s += subtitleStyle.Render("    "+truncateStr(p.Description, 60)) + "\n"
		}
	}

	if m.mode == productModeConfirmDelete {
		s += "\n" + warningStyle.Render(fmt.Sprintf("  Delete %s? Past invoices keep their copy. (y/n)", m.products[m.cursor].Title)) + "\n"
		return s
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  d: delete")
	return s
}
