package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/erp/stockcore/internal/domain/inventory"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStockItemRepository is a mock implementation of inventory.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.StockItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByCode(ctx context.Context, code string) (*inventory.StockItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByBarcode(ctx context.Context, barcode string) (*inventory.StockItem, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindAll(ctx context.Context, kind inventory.ItemKind, filter shared.Filter) ([]inventory.StockItem, int64, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockItemRepository) FindAnomalies(ctx context.Context, limit int) ([]inventory.StockItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingMetrics keeps every measurement for assertions
type recordingMetrics struct {
	mu         sync.Mutex
	operations []string
	opErrors   []error
	retries    []string
	anomalies  map[uuid.UUID][]string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{anomalies: make(map[uuid.UUID][]string)}
}

func (r *recordingMetrics) RecordOperation(_ context.Context, op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, op)
	r.opErrors = append(r.opErrors, err)
}

func (r *recordingMetrics) RecordRetry(_ context.Context, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries = append(r.retries, op)
}

func (r *recordingMetrics) RecordAnomaly(_ context.Context, itemID uuid.UUID, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anomalies[itemID] = append(r.anomalies[itemID], kind)
}

// recordingPublisher keeps published events
type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

// memoryIdempotency is a map-backed shared.IdempotencyStore
type memoryIdempotency struct {
	keys    map[string]bool
	markErr error
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]bool)}
}

func (s *memoryIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.markErr != nil {
		return false, s.markErr
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotency) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *memoryIdempotency) Close() error { return nil }

// flakyScope runs fn and then reports err instead of committing for the
// first failures attempts
type flakyScope struct {
	repos    Repositories
	failures int
	err      error
	attempts int
}

func (s *flakyScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.attempts++
	if err := NewNoOpTransactionScope(s.repos).Execute(ctx, fn); err != nil {
		return err
	}
	if s.attempts <= s.failures {
		return s.err
	}
	return nil
}
