package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReportsModel displays weekly sales, best sellers and monthly revenue
type ReportsModel struct {
	app         *app.App
	weekStart   time.Time
	revenueYear int
	currency    string

	weekSummary *service.SalesSummary
	monthly     map[time.Month]decimal.Decimal

	// Daily detail
	dayCursor    int // 0=Mon, 6=Sun
	dailySummary *service.SalesSummary

	loading bool
	err     error
}

type reportsDataMsg struct {
	weekSummary *service.SalesSummary
	monthly     map[time.Month]decimal.Decimal
	currency    string
	err         error
}

type dailyDetailMsg struct {
	summary *service.SalesSummary
	err     error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:         a,
		weekStart:   weekMonday(time.Now()),
		dayCursor:   weekdayIndex(time.Now()),
		revenueYear: time.Now().Year(),
		loading:     true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	a := m.app
	weekStart := m.weekStart
	year := m.revenueYear
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())
		var msg reportsDataMsg

		g.Go(func() (err error) {
			msg.weekSummary, err = a.ReportService.GetPeriodSummary(ctx, weekStart, weekStart.AddDate(0, 0, 7))
			return err
		})
		g.Go(func() (err error) {
			msg.monthly, err = a.ReportService.GetRevenueByMonth(ctx, year)
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
			return reportsDataMsg{err: err}
		}
		return msg
	}
}

func (m *ReportsModel) loadDailyDetail() tea.Cmd {
	selectedDate := m.weekStart.AddDate(0, 0, m.dayCursor)
	a := m.app
	return func() tea.Msg {
		summary, err := a.ReportService.GetDailySummary(context.Background(), selectedDate)
		if err != nil {
			return dailyDetailMsg{err: err}
		}
		return dailyDetailMsg{summary: summary}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.weekSummary = msg.weekSummary
		m.monthly = msg.monthly
		m.currency = msg.currency
		// Load daily detail for current cursor
		return m, m.loadDailyDetail()

	case dailyDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.dailySummary = msg.summary
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Left):
			// Previous week
			m.weekStart = m.weekStart.AddDate(0, 0, -7)
			m.dailySummary = nil
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.Right):
			// Next week
			next := m.weekStart.AddDate(0, 0, 7)
			if !next.After(time.Now()) {
				m.weekStart = next
				m.dailySummary = nil
				m.loading = true
				return m, m.loadData()
			}

		case key.Matches(msg, DefaultKeyMap.Up):
			if m.dayCursor > 0 {
				m.dayCursor--
				return m, m.loadDailyDetail()
			}

		case key.Matches(msg, DefaultKeyMap.Down):
			if m.dayCursor < 6 {
				m.dayCursor++
				return m, m.loadDailyDetail()
			}

		case msg.String() == "[":
			// Previous year for revenue
			m.revenueYear--
			m.loading = true
			return m, m.loadData()

		case msg.String() == "]":
			// Next year for revenue
			if m.revenueYear < time.Now().Year() {
				m.revenueYear++
				m.loading = true
				return m, m.loadData()
			}
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return titleStyle.Render("Reports") + "\n\n  Loading..."
	}

	if m.err != nil {
		return titleStyle.Render("Reports") + "\n\n" + renderError(m.err)
	}

	var s string

	// Title and week navigation
	weekEnd := m.weekStart.AddDate(0, 0, 6)
	s += titleStyle.Render("Reports") + "\n"
	s += fmt.Sprintf("  Week of %s - %s\n\n",
		m.weekStart.Format("Jan 2"),
		weekEnd.Format("Jan 2, 2006"),
	)

	s += lipgloss.NewStyle().Bold(true).Render("  Sales by Day") + "\n"
	s += m.renderWeekChart()
	s += "\n"

	s += m.renderWeekTotals()
	s += "\n"

	s += m.renderDailyDetail()
	s += "\n"

	s += m.renderBestSellers()

	s += m.renderMonthlyRevenue()

	s += "\n" + helpStyle.Render("  j/k: select day  h/l: prev/next week  [/]: prev/next year")

	return s
}

// dailyTotals reads the week's per-day revenue, Monday first
func (m *ReportsModel) dailyTotals() [7]decimal.Decimal {
	var totals [7]decimal.Decimal
	if m.weekSummary == nil {
		return totals
	}
	for i := range totals {
		totals[i] = m.weekSummary.ByDay[service.StartOfDay(m.weekStart.AddDate(0, 0, i))]
	}
	return totals
}

func (m *ReportsModel) renderWeekChart() string {
	totals := m.dailyTotals()

	// Find max for scaling
	maxTotal := decimal.Zero
	for _, t := range totals {
		if t.GreaterThan(maxTotal) {
			maxTotal = t
		}
	}

	const maxBar = 25
	dayStyle := lipgloss.NewStyle().Width(12)
	barStyle := lipgloss.NewStyle().Foreground(primaryColor)

	var chart string
	for i, total := range totals {
		barLen := 0
		if maxTotal.IsPositive() && total.IsPositive() {
			barLen = int(total.Mul(decimal.NewFromInt(maxBar)).Div(maxTotal).IntPart())
		}
		bar := fmt.Sprintf("%-25s", strings.Repeat("█", barLen))

		date := m.weekStart.AddDate(0, 0, i)
		label := fmt.Sprintf("%s %s", date.Weekday().String()[:3], date.Format("Jan 2"))

		if i == m.dayCursor {
			chart += selectedStyle.Render(fmt.Sprintf("  > %s %s %s",
				dayStyle.Render(label), barStyle.Render(bar), formatMoney(m.currency, total))) + "\n"
		} else {
			chart += fmt.Sprintf("    %s %s %s\n",
				dayStyle.Render(label), barStyle.Render(bar), formatMoney(m.currency, total))
		}
	}

	return chart
}

func (m *ReportsModel) renderWeekTotals() string {
	ws := m.weekSummary
	if ws == nil {
		return ""
	}

	s := lipgloss.NewStyle().Bold(true).Render("  Weekly Totals") + "\n"
	s += fmt.Sprintf("    Invoices:  %d\n", ws.InvoiceCount)
	s += fmt.Sprintf("    Subtotal:  %s\n", formatMoney(m.currency, ws.Subtotal))
	s += fmt.Sprintf("    Tax:       %s\n", formatMoney(m.currency, ws.Tax))
	s += fmt.Sprintf("    Discount:  %s\n", formatMoney(m.currency, ws.Discount))
	s += fmt.Sprintf("    Total:     %s\n", totalStyle.Render(formatMoney(m.currency, ws.Total)))

	if ws.InvoiceCount > 0 {
		avg := ws.Total.Div(decimal.NewFromInt(int64(ws.InvoiceCount))).Round(2)
		s += fmt.Sprintf("    Average:   %s\n", formatMoney(m.currency, avg))
	}

	return s
}

func (m *ReportsModel) renderDailyDetail() string {
	selectedDate := m.weekStart.AddDate(0, 0, m.dayCursor)
	header := fmt.Sprintf("  %s, %s", selectedDate.Weekday(), selectedDate.Format("January 2"))
	s := lipgloss.NewStyle().Bold(true).Render(header) + "\n"

	if m.dailySummary == nil || m.dailySummary.InvoiceCount == 0 {
		s += subtitleStyle.Render("    No invoices") + "\n"
		return s
	}

	ds := m.dailySummary
	s += subtitleStyle.Render(fmt.Sprintf("    %d invoices  |  %s",
		ds.InvoiceCount,
		formatMoney(m.currency, ds.Total),
	)) + "\n"

	for _, inv := range ds.Invoices {
		s += fmt.Sprintf("    %s  %-12s  %-20s  %12s\n",
			inv.CreatedAt.Local().Format("15:04"),
			inv.InvoiceNumber,
			truncateStr(inv.ClientName, 20),
			formatMoney(inv.Currency, inv.Total),
		)
	}

	return s
}

func (m *ReportsModel) renderBestSellers() string {
	ws := m.weekSummary
	if ws == nil || len(ws.Products) == 0 {
		return ""
	}

	s := lipgloss.NewStyle().Bold(true).Render("  Best Sellers This Week") + "\n"

	limit := min(5, len(ws.Products))
	for _, ps := range ws.Products[:limit] {
		s += fmt.Sprintf("    %-24s  %4d sold  %s\n",
			truncateStr(ps.Title, 24),
			ps.Quantity,
			formatMoney(m.currency, ps.Revenue),
		)
	}

	s += "\n"
	return s
}

func (m *ReportsModel) renderMonthlyRevenue() string {
	s := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Revenue by Month (%d)", m.revenueYear),
	) + "\n"

	hasRevenue := false
	yearTotal := decimal.Zero
	for month := time.January; month <= time.December; month++ {
		revenue := m.monthly[month]
		if revenue.IsZero() {
			continue
		}
		hasRevenue = true
		yearTotal = yearTotal.Add(revenue)
		s += fmt.Sprintf("    %-10s %s\n", month.String()[:3], formatMoney(m.currency, revenue))
	}

	if !hasRevenue {
		s += subtitleStyle.Render("    No revenue recorded") + "\n"
	} else {
		s += "    " + lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("%-10s %s", "Total", formatMoney(m.currency, yearTotal)),
		) + "\n"
	}

	return s
}

// weekMonday returns the Monday of the week containing t
func weekMonday(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.AddDate(0, 0, -weekdayIndex(t))
}

// weekdayIndex numbers days from Monday (0) to Sunday (6)
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
