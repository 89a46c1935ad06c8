package service

import (
	"context"
	"sort"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"github.com/shopspring/decimal"
)

// ProductSales aggregates how much of one product was invoiced
type ProductSales struct {
	ProductID string
	Title     string
	Quantity  int
	Revenue   decimal.Decimal
}

// SalesSummary aggregates the invoices created in a period
type SalesSummary struct {
	Start        time.Time
	End          time.Time
	InvoiceCount int
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	ByDay        map[time.Time]decimal.Decimal // invoice totals keyed by StartOfDay
	Products     []ProductSales               // best sellers first
	Invoices     []*domain.Invoice
}

// ReportService provides sales aggregations over stored invoices
type ReportService interface {
	// GetPeriodSummary summarizes invoices created in [start, end)
	GetPeriodSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error)

	// GetDailySummary summarizes invoices created on the given day
	GetDailySummary(ctx context.Context, date time.Time) (*SalesSummary, error)

	// GetRevenueByMonth returns invoice totals per month for a year
	GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error)
}

type reportService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(invoiceRepo repository.InvoiceRepository) ReportService {
	return &reportService{invoiceRepo: invoiceRepo}
}

func (s *reportService) GetPeriodSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		Start:    start,
		End:      end,
		ByDay:    make(map[time.Time]decimal.Decimal),
		Invoices: make([]*domain.Invoice, 0),
	}
	byProduct := make(map[string]*ProductSales)

	for _, inv := range invoices {
		if inv.CreatedAt.Before(start) || !inv.CreatedAt.Before(end) {
			continue
		}

		summary.InvoiceCount++
		summary.Subtotal = summary.Subtotal.Add(inv.Subtotal)
		summary.Tax = summary.Tax.Add(inv.Tax)
		summary.Discount = summary.Discount.Add(inv.Discount)
		summary.Total = summary.Total.Add(inv.Total)
		summary.Invoices = append(summary.Invoices, inv)

		day := StartOfDay(inv.CreatedAt)
		summary.ByDay[day] = summary.ByDay[day].Add(inv.Total)

		for _, item := range inv.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Title: item.Title}
				byProduct[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Amount())
		}
	}

	summary.Products = make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		summary.Products = append(summary.Products, *ps)
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		a, b := summary.Products[i], summary.Products[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.Title < b.Title
	})

	return summary, nil
}

// StartOfDay returns local midnight of the day t falls on
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func (s *reportService) GetDailySummary(ctx context.Context, date time.Time) (*SalesSummary, error) {
	// Normalize to start of day
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	return s.GetPeriodSummary(ctx, startOfDay, endOfDay)
}

func (s *reportService) GetRevenueByMonth(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	revenue := make(map[time.Month]decimal.Decimal)

	// Initialize all months to 0
	for m := time.January; m <= time.December; m++ {
		revenue[m] = decimal.Zero
	}

	for _, inv := range invoices {
		created := inv.CreatedAt.Local()
		if created.Year() == year {
			revenue[created.Month()] = revenue[created.Month()].Add(inv.Total)
		}
	}

	return revenue, nil
}
