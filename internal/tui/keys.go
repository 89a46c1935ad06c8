package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding
	Lock key.Binding

	// Navigation
	Orders   key.Binding
	Invoices key.Binding
	Products key.Binding
	Clients  key.Binding
	Reports  key.Binding
	Settings key.Binding

	// Actions
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Search key.Binding
	Save   key.Binding

	// Cart
	Increase key.Binding
	Decrease key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Lock:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lock")),
	Orders:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "orders")),
	Invoices: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoices")),
	Products: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "products")),
	Clients:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clients")),
	Reports:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reports")),
	Settings: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Increase: key.NewBinding(key.WithKeys("+", "=", "right", "l"), key.WithHelp("+", "add one")),
	Decrease: key.NewBinding(key.WithKeys("-", "left", "h"), key.WithHelp("-", "remove one")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
}
