package pos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/swagpaypal/backend/internal/domain/pos"
	"github.com/swagpaypal/backend/internal/domain/shared"
)

// MockSalesChannelRepository is a mock implementation of pos.SalesChannelRepository
type MockSalesChannelRepository struct {
	mock.Mock
}

func (m *MockSalesChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*pos.SalesChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.SalesChannel), args.Error(1)
}

func (m *MockSalesChannelRepository) FindByType(ctx context.Context, typeID uuid.UUID) ([]*pos.SalesChannel, error) {
	args := m.Called(ctx, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pos.SalesChannel), args.Error(1)
}

func (m *MockSalesChannelRepository) FindActivePOS(ctx context.Context) ([]*pos.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pos.SalesChannel), args.Error(1)
}

func (m *MockSalesChannelRepository) SaveSigningKey(ctx context.Context, id uuid.UUID, signingKey *string) error {
	args := m.Called(ctx, id, signingKey)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of pos.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindBySalesChannel(ctx context.Context, salesChannelID uuid.UUID) (pos.ProductCollection, error) {
	args := m.Called(ctx, salesChannelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pos.ProductCollection), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (pos.ProductCollection, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pos.ProductCollection), args.Error(1)
}

func (m *MockProductRepository) ChangeStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// MockInventorySnapshotRepository is a mock implementation of pos.InventorySnapshotRepository
type MockInventorySnapshotRepository struct {
	mock.Mock
}

func (m *MockInventorySnapshotRepository) Load(ctx context.Context, salesChannelID uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, salesChannelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockInventorySnapshotRepository) Save(ctx context.Context, salesChannelID uuid.UUID, stock map[uuid.UUID]int) error {
	args := m.Called(ctx, salesChannelID, stock)
	return args.Error(0)
}

// MockRunRepository is a mock implementation of pos.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *pos.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Finish(ctx context.Context, run *pos.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) AddLogs(ctx context.Context, logs ...*pos.RunLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

func (m *MockRunRepository) FindLogsByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*pos.RunLog, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pos.RunLog), args.Error(1)
}

// MockPaymentMethodRepository is a mock implementation of pos.PaymentMethodRepository
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) FindIDByHandler(ctx context.Context, handler string) (*uuid.UUID, error) {
	args := m.Called(ctx, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockPaymentMethodRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockShippingMethodRepository is a mock implementation of pos.ShippingMethodRepository
type MockShippingMethodRepository struct {
	mock.Mock
}

func (m *MockShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSalesChannelTypeRepository is a mock implementation of pos.SalesChannelTypeRepository
type MockSalesChannelTypeRepository struct {
	mock.Mock
}

func (m *MockSalesChannelTypeRepository) Upsert(ctx context.Context, t *pos.SalesChannelType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockSalesChannelTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInventoryResource is a mock implementation of pos.InventoryResource
type MockInventoryResource struct {
	mock.Mock
}

func (m *MockInventoryResource) ChangeInventoryBulk(ctx context.Context, apiKey string, changes *pos.BulkChanges) (*pos.InventoryStatus, error) {
	args := m.Called(ctx, apiKey, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.InventoryStatus), args.Error(1)
}

func (m *MockInventoryResource) FetchLocations(ctx context.Context, apiKey string) ([]pos.Location, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pos.Location), args.Error(1)
}

func (m *MockInventoryResource) FetchInventory(ctx context.Context, apiKey, locationUUID string) (*pos.InventoryStatus, error) {
	args := m.Called(ctx, apiKey, locationUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.InventoryStatus), args.Error(1)
}

// MockSubscriptionResource is a mock implementation of pos.SubscriptionResource
type MockSubscriptionResource struct {
	mock.Mock
}

func (m *MockSubscriptionResource) CreateWebhook(ctx context.Context, apiKey string, req *pos.CreateSubscription) (*pos.Subscription, error) {
	args := m.Called(ctx, apiKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.Subscription), args.Error(1)
}

func (m *MockSubscriptionResource) UpdateWebhook(ctx context.Context, apiKey, subscriptionUUID string, req *pos.UpdateSubscription) error {
	args := m.Called(ctx, apiKey, subscriptionUUID, req)
	return args.Error(0)
}

func (m *MockSubscriptionResource) RemoveWebhook(ctx context.Context, apiKey, subscriptionUUID string) error {
	args := m.Called(ctx, apiKey, subscriptionUUID)
	return args.Error(0)
}

// MockAPIKeyDecoder is a mock implementation of pos.APIKeyDecoder
type MockAPIKeyDecoder struct {
	mock.Mock
}

func (m *MockAPIKeyDecoder) Decode(apiKey string) (*pos.APIKey, error) {
	args := m.Called(apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pos.APIKey), args.Error(1)
}

// MockWebhookHandler is a mock implementation of WebhookHandler
type MockWebhookHandler struct {
	mock.Mock
	name string
}

func (m *MockWebhookHandler) EventName() string {
	return m.name
}

func (m *MockWebhookHandler) NewPayload() pos.Payload {
	return &pos.InventoryBalanceChangedPayload{}
}

func (m *MockWebhookHandler) Execute(ctx context.Context, payload pos.Payload, channel *pos.SalesChannel) error {
	args := m.Called(ctx, payload, channel)
	return args.Error(0)
}

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// recordingMetrics keeps webhook outcomes and sync results
type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	synced   []int
	failed   []bool
	local    []int
}

func (r *recordingMetrics) WebhookReceived(_ context.Context, _ string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) InventorySynced(_ context.Context, _ uuid.UUID, changed int, remoteFailed bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, changed)
	r.failed = append(r.failed, remoteFailed)
}

func (r *recordingMetrics) LocalStockChanged(_ context.Context, _ uuid.UUID, changed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local = append(r.local, changed)
}

// memoryIdempotency is a minimal idempotency store for service tests
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]struct{}
	err  error
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]struct{})}
}

func (s *memoryIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *memoryIdempotency) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryIdempotency) Close() error { return nil }

// memoryLocker is a process local Locker for service tests
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: make(map[string]bool)}
}

func (l *memoryLocker) TryLock(_ context.Context, key string, _ time.Duration) (shared.ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

func (l *memoryLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// memorySnapshots keeps inventory snapshots in memory so that a sync run and
// a later webhook see the same stored stock
type memorySnapshots struct {
	mu    sync.Mutex
	stock map[uuid.UUID]map[uuid.UUID]int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{stock: make(map[uuid.UUID]map[uuid.UUID]int)}
}

func (s *memorySnapshots) Load(_ context.Context, salesChannelID uuid.UUID) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]int, len(s.stock[salesChannelID]))
	for id, v := range s.stock[salesChannelID] {
		out[id] = v
	}
	return out, nil
}

func (s *memorySnapshots) Save(_ context.Context, salesChannelID uuid.UUID, stock map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stock[salesChannelID] == nil {
		s.stock[salesChannelID] = make(map[uuid.UUID]int)
	}
	for id, v := range stock {
		s.stock[salesChannelID][id] = v
	}
	return nil
}

// test fixtures

const testAPIKey = "api-key"

var testLocations = []pos.Location{
	{UUID: "store", Type: pos.LocationTypeStore, Default: true},
	{UUID: "supplier", Type: pos.LocationTypeSupplier, Default: true},
	{UUID: "bin", Type: pos.LocationTypeBin, Default: true},
	{UUID: "sold", Type: pos.LocationTypeSold, Default: true},
}

func newPOSChannel(signingKey string) *pos.SalesChannel {
	ch := &pos.SalesChannel{
		ID:     uuid.New(),
		Name:   "iZettle",
		TypeID: pos.SalesChannelTypePOS,
		Active: true,
		POS:    &pos.POSSettings{APIKey: testAPIKey},
	}
	if signingKey != "" {
		ch.SetSigningKey(signingKey)
	}
	return ch
}

func newInventoryContext(channel *pos.SalesChannel, local map[uuid.UUID]int) *pos.InventoryContext {
	return pos.NewInventoryContext(channel, pos.LocationsFromList(testLocations), local)
}

func newProduct(name string, available int) *pos.Product {
	return &pos.Product{ID: uuid.New(), Name: name, Stock: available, AvailableStock: available}
}

// remoteVariant returns the store balance iZettle reports for product
func remoteVariant(product *pos.Product, balance int) pos.Variant {
	productUUID, variantUUID := product.RemoteUUIDs()
	return pos.Variant{
		LocationUUID: "store",
		LocationType: pos.LocationTypeStore,
		ProductUUID:  productUUID,
		VariantUUID:  variantUUID,
		Balance:      pos.Quantity(balance),
	}
}
