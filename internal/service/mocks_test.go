package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
)

// memStore backs the mock repositories. Transactions hold the mutex for
// their whole duration and restore a snapshot on error.
type memStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	clients  map[string]*domain.Client
	invoices []*domain.Invoice
	counter  *int64

	mostRecentErr    error
	createInvoiceErr error
	deleteInvoiceErr error
	allocations      int
	txDeletes        int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*domain.Product),
		clients:  make(map[string]*domain.Client),
	}
}

func (s *memStore) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) addProduct(title, price string) *domain.Product {
	p := domain.NewProduct(title, "", dec(price))
	s.products[p.ID] = p
	return p
}

type snapshot struct {
	clients  map[string]*domain.Client
	invoices []*domain.Invoice
	counter  *int64
}

func (s *memStore) snapshot() snapshot {
	clients := make(map[string]*domain.Client, len(s.clients))
	for k, v := range s.clients {
		clients[k] = v
	}
	snap := snapshot{
		clients:  clients,
		invoices: append([]*domain.Invoice(nil), s.invoices...),
	}
	if s.counter != nil {
		v := *s.counter
		snap.counter = &v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.clients = snap.clients
	s.invoices = snap.invoices
	s.counter = snap.counter
}

// mockTransactor implements repository.Transactor
type mockTransactor struct {
	s *memStore
}

func (t *mockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(ctx, &mockTx{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type mockTx struct {
	s *memStore
}

func (tx *mockTx) Clients() repository.ClientRepository {
	return &mockClientRepo{s: tx.s, inTx: true}
}
func (tx *mockTx) Invoices() repository.InvoiceRepository {
	return &mockInvoiceRepo{s: tx.s, inTx: true}
}
func (tx *mockTx) Counter() repository.CounterRepository {
	return &mockCounterRepo{s: tx.s}
}

type mockProductRepo struct {
	s *memStore
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	defer m.s.lock(false)()
	m.s.products[p.ID] = p
	return nil
}
func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	defer m.s.lock(false)()
	if p, ok := m.s.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}
func (m *mockProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	defer m.s.lock(false)()
	out := make([]*domain.Product, 0, len(m.s.products))
	for _, p := range m.s.products {
		out = append(out, p)
	}
	return out, nil
}
func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	defer m.s.lock(false)()
	m.s.products[p.ID] = p
	return nil
}
func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	defer m.s.lock(false)()
	delete(m.s.products, id)
	return nil
}

type mockClientRepo struct {
	s    *memStore
	inTx bool
}

func (m *mockClientRepo) Create(ctx context.Context, c *domain.Client) error {
	defer m.s.lock(m.inTx)()
	if err := c.Validate(); err != nil {
		return err
	}
	m.s.clients[c.ID] = c
	return nil
}
func (m *mockClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	defer m.s.lock(m.inTx)()
	if c, ok := m.s.clients[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}
func (m *mockClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	defer m.s.lock(m.inTx)()
	out := make([]*domain.Client, 0, len(m.s.clients))
	for _, c := range m.s.clients {
		out = append(out, c)
	}
	return out, nil
}
func (m *mockClientRepo) Update(ctx context.Context, c *domain.Client) error {
	defer m.s.lock(m.inTx)()
	m.s.clients[c.ID] = c
	return nil
}
func (m *mockClientRepo) Delete(ctx context.Context, id string) error {
	defer m.s.lock(m.inTx)()
	delete(m.s.clients, id)
	return nil
}

type mockInvoiceRepo struct {
	s    *memStore
	inTx bool
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	defer m.s.lock(m.inTx)()
	if m.s.createInvoiceErr != nil {
		return m.s.createInvoiceErr
	}
	for _, existing := range m.s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return errors.New("UNIQUE constraint failed: invoices.invoice_number")
		}
	}
	m.s.invoices = append(m.s.invoices, inv)
	return nil
}
func (m *mockInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	defer m.s.lock(m.inTx)()
	for _, inv := range m.s.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	defer m.s.lock(m.inTx)()
	for _, inv := range m.s.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (m *mockInvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	defer m.s.lock(m.inTx)()
	return m.s.newestFirst(), nil
}
func (m *mockInvoiceRepo) MostRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	defer m.s.lock(m.inTx)()
	if m.s.mostRecentErr != nil {
		return nil, m.s.mostRecentErr
	}
	out := m.s.newestFirst()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (m *mockInvoiceRepo) Delete(ctx context.Context, id string) error {
	defer m.s.lock(m.inTx)()
	if m.inTx {
		m.s.txDeletes++
	}
	if m.s.deleteInvoiceErr != nil {
		return m.s.deleteInvoiceErr
	}
	for i, inv := range m.s.invoices {
		if inv.ID == id {
			m.s.invoices = append(m.s.invoices[:i:i], m.s.invoices[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
func (m *mockInvoiceRepo) DeleteAll(ctx context.Context) error {
	defer m.s.lock(m.inTx)()
	m.s.invoices = nil
	return nil
}

func (s *memStore) newestFirst() []*domain.Invoice {
	out := append([]*domain.Invoice(nil), s.invoices...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// mockCounterRepo is only reachable through a transaction
type mockCounterRepo struct {
	s *memStore
}

func (m *mockCounterRepo) Increment(ctx context.Context) (int64, bool, error) {
	if m.s.counter == nil {
		return 0, false, nil
	}
	*m.s.counter++
	m.s.allocations++
	return *m.s.counter, true, nil
}
func (m *mockCounterRepo) Seed(ctx context.Context, last int64) error {
	if m.s.counter == nil {
		m.s.counter = &last
	}
	return nil
}
func (m *mockCounterRepo) Reset(ctx context.Context) error {
	m.s.counter = nil
	return nil
}
