package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
	ErrNegativeTaxRate  = errors.New("tax rate cannot be negative")
	ErrProductNotFound  = errors.New("product not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

// ClientInput identifies the customer on an order. With an ID the stored
// client is used and any non-blank field here overrides it for this
// invoice; without one a new client is saved along with the invoice.
type ClientInput struct {
	ID      string
	Name    string
	Phone   string
	Address string
}

// CreateInvoiceRequest is everything needed to turn a cart into an invoice
type CreateInvoiceRequest struct {
	Cart     *domain.Cart
	Client   ClientInput
	Discount decimal.Decimal
}

// InvoiceService turns carts into persisted invoices
type InvoiceService interface {
	// PreviewTotals prices a cart without saving anything
	PreviewTotals(ctx context.Context, cart *domain.Cart, discount decimal.Decimal, settings *domain.Settings) ([]domain.LineItem, domain.Totals, error)

	// CreateInvoice validates the request, snapshots products and client,
	// and saves the invoice under a freshly allocated number in one transaction
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest, settings *domain.Settings) (*domain.Invoice, error)

	// GetInvoice retrieves an invoice by ID or invoice number
	GetInvoice(ctx context.Context, ref string) (*domain.Invoice, error)

	// ListInvoices lists all invoices, newest first
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)

	// SearchInvoices filters invoices by client name or invoice number
	SearchInvoices(ctx context.Context, query string) ([]*domain.Invoice, error)

	// DeleteInvoice removes an invoice by ID or invoice number
	DeleteInvoice(ctx context.Context, ref string) error

	// ResetInvoices deletes every invoice and the number sequence
	ResetInvoices(ctx context.Context) error
}

type invoiceService struct {
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	tx          repository.Transactor
	allocator   *NumberAllocator
	now         func() time.Time
	logger      *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
	tx repository.Transactor,
	allocator *NumberAllocator,
	logger *zap.Logger,
) InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceService{
		productRepo: productRepo,
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		tx:          tx,
		allocator:   allocator,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *invoiceService) PreviewTotals(
	ctx context.Context,
	cart *domain.Cart,
	discount decimal.Decimal,
	settings *domain.Settings,
) ([]domain.LineItem, domain.Totals, error) {
	if cart.IsEmpty() {
		return nil, domain.Totals{}, ErrEmptyCart
	}

	items, err := s.snapshotItems(ctx, cart)
	if err != nil {
		return nil, domain.Totals{}, err
	}

	return items, domain.ComputeTotals(items, settings.TaxRate, discount), nil
}

func (s *invoiceService) CreateInvoice(
	ctx context.Context,
	req CreateInvoiceRequest,
	settings *domain.Settings,
) (*domain.Invoice, error) {
	if req.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	client, err := s.resolveClient(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	if req.Discount.IsNegative() {
		return nil, ErrNegativeDiscount
	}
	if settings.TaxRate.IsNegative() {
		return nil, ErrNegativeTaxRate
	}

	items, err := s.snapshotItems(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:            uuid.NewString(),
		ClientName:    client.Name,
		ClientPhone:   client.Phone,
		ClientAddress: client.Address,
		Items:         items,
		TaxRate:       settings.TaxRate,
		Discount:      req.Discount,
		Currency:      settings.CurrencySymbol(),
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if client.ID == "" {
			saved := domain.NewClient(client.Name, client.Phone, client.Address)
			if err := tx.Clients().Create(ctx, saved); err != nil {
				return err
			}
			client.ID = saved.ID
		}
		invoice.ClientID = client.ID

		number, err := s.allocator.Next(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number

		invoice.ApplyTotals(domain.ComputeTotals(invoice.Items, invoice.TaxRate, invoice.Discount))
		invoice.CreatedAt = s.now()

		return tx.Invoices().Create(ctx, invoice)
	})
	if err != nil {
		s.logger.Error("invoice creation failed",
			zap.String("client", client.Name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("client_id", invoice.ClientID),
		zap.Int("items", len(invoice.Items)),
		zap.String("total", invoice.Total.StringFixed(2)),
	)

	return invoice, nil
}

// resolveClient merges the request with the stored client when an ID is given
func (s *invoiceService) resolveClient(ctx context.Context, in ClientInput) (*domain.Client, error) {
	client := &domain.Client{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}

	if in.ID == "" {
		return client, nil
	}

	stored, err := s.clientRepo.GetByID(ctx, in.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, in.ID)
	}
	if err != nil {
		return nil, err
	}

	client.ID = stored.ID
	if client.Name == "" {
		client.Name = stored.Name
	}
	if client.Phone == "" {
		client.Phone = stored.Phone
	}
	if client.Address == "" {
		client.Address = stored.Address
	}
	return client, nil
}

// snapshotItems copies the current title and price of each product in the cart
func (s *invoiceService) snapshotItems(ctx context.Context, cart *domain.Cart) ([]domain.LineItem, error) {
	lines := cart.Lines()
	items := make([]domain.LineItem, 0, len(lines))

	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return nil, err
		}

		items = append(items, domain.LineItem{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	return items, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		invoice, err = s.invoiceRepo.GetByID(ctx, ref)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, ref)
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx)
}

func (s *invoiceService) SearchInvoices(ctx context.Context, query string) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.MatchesQuery(query) {
			matches = append(matches, inv)
		}
	}
	return matches, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, ref string) error {
	invoice, err := s.GetInvoice(ctx, ref)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Invoices().Delete(ctx, invoice.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", invoice.InvoiceNumber, err)
	}

	s.logger.Info("invoice deleted", zap.String("invoice_number", invoice.InvoiceNumber))
	return nil
}

func (s *invoiceService) ResetInvoices(ctx context.Context) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Invoices().DeleteAll(ctx); err != nil {
			return err
		}
		return tx.Counter().Reset(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to reset invoices: %w", err)
	}

	s.logger.Warn("all invoices deleted")
	return nil
}
