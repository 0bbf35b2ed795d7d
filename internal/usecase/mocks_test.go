package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/pkg/e"
)

// stubTx подменяет pgx-транзакцию: фиксация и откат всегда успешны.
type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(_ context.Context) error   { return nil }
func (stubTx) Rollback(_ context.Context) error { return nil }

type fakeTxStarter struct{}

func (fakeTxStarter) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return stubTx{}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(_ string, _ ...any)          {}
func (nopLogger) Infof(_ string, _ ...any)           {}
func (nopLogger) Warnf(_ string, _ ...any)           {}
func (nopLogger) Errorf(_ error, _ string, _ ...any) {}

// mockProductRepo хранит товары в памяти и повторяет контракт ProductRepo,
// включая атомарность AdjustQuantity под мьютексом.
type mockProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
	failWith error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*domain.Product), nextID: 1}
}

func (m *mockProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *product
	if stored.ID == 0 {
		stored.ID = m.nextID
	} else if _, ok := m.products[stored.ID]; ok {
		return nil, e.ErrDuplicateProductID
	}

	if stored.ID >= m.nextID {
		m.nextID = stored.ID + 1
	}

	m.products[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	result := *product
	return &result, nil
}

func (m *mockProductRepo) List(_ context.Context) ([]domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]domain.Product, 0, len(m.products))
	for _, product := range m.products {
		result = append(result, *product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	existing.Name = product.Name
	existing.Quantity = product.Quantity
	existing.Price = product.Price
	existing.Description = product.Description

	result := *existing
	return &result, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	if m.failWith != nil {
		return m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return e.ErrProductNotFound
	}

	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) SearchByName(_ context.Context, term string) ([]domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(term)
	result := make([]domain.Product, 0)
	for _, product := range m.products {
		if strings.Contains(strings.ToLower(product.Name), needle) {
			result = append(result, *product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (m *mockProductRepo) AdjustQuantity(_ context.Context, id int64, delta int64) (*domain.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	if product.Quantity+delta < 0 {
		return nil, e.ErrInsufficientStock
	}

	product.Quantity += delta
	result := *product
	return &result, nil
}

func (m *mockProductRepo) quantityOf(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if product, ok := m.products[id]; ok {
		return product.Quantity
	}
	return -1
}

type mockOutboxRepo struct {
	mu      sync.Mutex
	events  []*OutboxEvent
	nextID  int64
	failure error
}

func (m *mockOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if m.failure != nil {
		return nil, m.failure
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	stored := *event
	stored.ID = m.nextID
	m.events = append(m.events, &stored)

	result := stored
	return &result, nil
}

func (m *mockOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*OutboxEvent, 0, limit)
	for _, event := range m.events {
		if event.Status != Pending {
			continue
		}
		event.Status = Processing
		result = append(result, event)
		if len(result) == limit {
			break
		}
	}

	return result, nil
}

func (m *mockOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range m.events {
		if event.ID == id {
			event.Status = Processed
			return nil
		}
	}

	return e.ErrProductNotFound
}

func (m *mockOutboxRepo) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type mockCacheRepo struct {
	mu      sync.Mutex
	entries map[int64]*ProductInfo
	getErr  error
	deletes int
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{entries: make(map[int64]*ProductInfo)}
}

func (m *mockCacheRepo) GetProduct(_ context.Context, id int64) (*ProductInfo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.entries[id]
	if !ok {
		return nil, nil
	}

	result := *info
	return &result, nil
}

func (m *mockCacheRepo) SetProduct(_ context.Context, info *ProductInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *info
	m.entries[stored.ID] = &stored
	return nil
}

func (m *mockCacheRepo) DeleteProducts(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.entries, id)
	}
	m.deletes++
	return nil
}

type mockLabelsInfra struct {
	mu       sync.Mutex
	payloads map[int64]string
	cleaned  []int64
	storeErr error
}

func newMockLabelsInfra() *mockLabelsInfra {
	return &mockLabelsInfra{payloads: make(map[int64]string)}
}

func (m *mockLabelsInfra) Store(_ context.Context, productID int64, payload string) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.payloads[productID] = payload
	return "labels/label_" + strconv.FormatInt(productID, 10) + ".png", nil
}

func (m *mockLabelsInfra) Fetch(_ context.Context, productID int64) (*LabelContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload, ok := m.payloads[productID]
	if !ok {
		return nil, e.ErrLabelNotFound
	}

	return &LabelContent{Data: []byte(payload), ContentType: "image/png"}, nil
}

func (m *mockLabelsInfra) CleanupLabel(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.payloads, productID)
	m.cleaned = append(m.cleaned, productID)
}

func (m *mockLabelsInfra) cleanedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]int64(nil), m.cleaned...)
}
