package tui

import (
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/render"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// formatMoney formats an amount with the invoice or settings currency symbol
func formatMoney(symbol string, amount decimal.Decimal) string {
	return render.FormatMoney(symbol, amount)
}

// truncateStr truncates a string to maxLen runes with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// parseAmount parses a non-negative money or percentage field; blank is zero
func parseAmount(label, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", label, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", label)
	}
	return d, nil
}

func newInput(placeholder string, limit, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = width
	return in
}

// moveFocus blurs the focused field and focuses the one delta steps away, wrapping around
func moveFocus(fields []textinput.Model, focus, delta int) (int, tea.Cmd) {
	fields[focus].Blur()
	focus = (focus + delta + len(fields)) % len(fields)
	return focus, fields[focus].Focus()
}

// renderForm lays out labelled inputs with the focused one highlighted
func renderForm(labels []string, fields []textinput.Model, focus int) string {
	var s string
	for i, label := range labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == focus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), fields[i].View())
	}
	return s
}

func renderError(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render(fmt.Sprintf("  Error: %v", err)) + "\n\n"
}

func renderStatus(msg string) string {
	if msg == "" {
		return ""
	}
	return statusStyle.Render("  "+msg) + "\n\n"
}

const formHelp = "  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel"
