package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

// MockLedgerRepository is an in-memory LedgerRepository. Writes made through a
// MockTransaction are undone when that transaction rolls back.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.TransferLedgerEntry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.TransferLedgerEntry) error
	MarkCompletedFunc func(ctx context.Context, id, bankReference string, completedAt time.Time) error
	MarkFailedFunc    func(ctx context.Context, id, reason string, failedAt time.Time) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.TransferLedgerEntry, error)
	SumSinceFunc      func(ctx context.Context, companyID, categoryID, currency string, since time.Time) (decimal.Decimal, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		entries: make(map[string]*domain.TransferLedgerEntry),
	}
}

// Seed stores an entry directly.
func (m *MockLedgerRepository) Seed(entry *domain.TransferLedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.ID] = &cp
}

// All returns copies of every stored entry ordered by request time.
func (m *MockLedgerRepository) All() []*domain.TransferLedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.TransferLedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out
}

func (m *MockLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransferLedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.Kind == domain.TransferKindRefund {
		for _, e := range m.entries {
			if e.Kind == domain.TransferKindRefund &&
				e.OriginalReference == entry.OriginalReference &&
				e.Status != domain.TransferStatusFailed {
				return domain.ErrAlreadyRefunded
			}
		}
	}

	cp := *entry
	m.entries[entry.ID] = &cp

	if mtx, ok := tx.(*MockTransaction); ok {
		mtx.OnRollback(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.entries, entry.ID)
		})
	}
	return nil
}

func (m *MockLedgerRepository) MarkCompleted(ctx context.Context, id, bankReference string, completedAt time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, id, bankReference, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrLedgerEntryNotFound
	}
	if e.Status != domain.TransferStatusPending {
		return domain.ErrInvalidTransition
	}
	e.Status = domain.TransferStatusCompleted
	e.BankReference = bankReference
	e.CompletedAt = &completedAt
	return nil
}

func (m *MockLedgerRepository) MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, reason, failedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrLedgerEntryNotFound
	}
	if e.Status != domain.TransferStatusPending {
		return domain.ErrInvalidTransition
	}
	e.Status = domain.TransferStatusFailed
	e.FailureReason = reason
	e.BankReference = ""
	e.CompletedAt = &failedAt
	return nil
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id string) (*domain.TransferLedgerEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, reference string) (*domain.TransferLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.Reference == reference {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (m *MockLedgerRepository) FindActiveRefund(ctx context.Context, originalReference string) (*domain.TransferLedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.Kind == domain.TransferKindRefund &&
			e.OriginalReference == originalReference &&
			e.Status != domain.TransferStatusFailed {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (m *MockLedgerRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*domain.TransferLedgerEntry, error) {
	var out []*domain.TransferLedgerEntry
	for _, e := range m.All() {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockLedgerRepository) SumSince(ctx context.Context, companyID, categoryID, currency string, since time.Time) (decimal.Decimal, error) {
	if m.SumSinceFunc != nil {
		return m.SumSinceFunc(ctx, companyID, categoryID, currency, since)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, e := range m.entries {
		if e.Kind != domain.TransferKindTransfer || e.Status == domain.TransferStatusFailed {
			continue
		}
		if e.CompanyID == companyID && e.CategoryID == categoryID &&
			e.Currency == currency && !e.RequestedAt.Before(since) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// MockPricingRepository serves package, rule and limit records from maps.
type MockPricingRepository struct {
	mu         sync.RWMutex
	packages   map[string]string
	categories map[string]bool
	rules      map[string]*domain.PricingRule
	limits     []domain.TransferLimit

	GetRuleFunc func(ctx context.Context, categoryID string) (*domain.PricingRule, error)
}

func NewMockPricingRepository() *MockPricingRepository {
	return &MockPricingRepository{
		packages:   make(map[string]string),
		categories: make(map[string]bool),
		rules:      make(map[string]*domain.PricingRule),
	}
}

func (m *MockPricingRepository) SetPackage(companyID, packageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[companyID] = packageID
}

func (m *MockPricingRepository) EnableCategory(packageID, categoryID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[packageID+"/"+categoryID] = enabled
}

func (m *MockPricingRepository) SetRule(rule domain.PricingRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.CategoryID] = &rule
}

func (m *MockPricingRepository) AddLimit(limit domain.TransferLimit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
}

func (m *MockPricingRepository) CompanyPackageID(ctx context.Context, companyID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.packages[companyID]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: company %s has no service package", domain.ErrCategoryDisabled, companyID)
}

func (m *MockPricingRepository) GetPackageCategory(ctx context.Context, packageID, categoryID string) (*domain.PackageCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.PackageCategory{
		PackageID:  packageID,
		CategoryID: categoryID,
		Enabled:    m.categories[packageID+"/"+categoryID],
	}, nil
}

func (m *MockPricingRepository) GetRule(ctx context.Context, categoryID string) (*domain.PricingRule, error) {
	if m.GetRuleFunc != nil {
		return m.GetRuleFunc(ctx, categoryID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rules[categoryID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrPricingNotFound
}

func (m *MockPricingRepository) ListLimits(ctx context.Context, packageID, categoryID, currency string) ([]domain.TransferLimit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.TransferLimit
	for _, l := range m.limits {
		if l.PackageID == packageID && l.CategoryID == categoryID && l.Currency == currency {
			out = append(out, l)
		}
	}
	return out, nil
}

// MockLimitCounterRepository keeps reserved aggregates in memory.
type MockLimitCounterRepository struct {
	mu       sync.Mutex
	counters map[domain.LimitCounterKey]decimal.Decimal

	ReserveFunc func(ctx context.Context, tx usecase.Transaction, key domain.LimitCounterKey, amount, max decimal.Decimal) (bool, error)
}

func NewMockLimitCounterRepository() *MockLimitCounterRepository {
	return &MockLimitCounterRepository{
		counters: make(map[domain.LimitCounterKey]decimal.Decimal),
	}
}

// Value returns the reserved aggregate for key.
func (m *MockLimitCounterRepository) Value(key domain.LimitCounterKey) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

func (m *MockLimitCounterRepository) Reserve(ctx context.Context, tx usecase.Transaction, key domain.LimitCounterKey, amount, max decimal.Decimal) (bool, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, tx, key, amount, max)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.counters[key].Add(amount)
	if next.GreaterThan(max) {
		return false, nil
	}
	m.counters[key] = next

	if mtx, ok := tx.(*MockTransaction); ok {
		mtx.OnRollback(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.counters[key] = m.counters[key].Sub(amount)
		})
	}
	return true, nil
}

func (m *MockLimitCounterRepository) Release(ctx context.Context, key domain.LimitCounterKey, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.counters[key].Sub(amount)
	if next.IsNegative() {
		next = decimal.Zero
	}
	m.counters[key] = next
	return nil
}

// MockSalaryRepository stores salary cycles in memory.
type MockSalaryRepository struct {
	mu     sync.RWMutex
	cycles map[string]*domain.SalaryCycle
	saves  int

	SavePostingFunc func(ctx context.Context, tx usecase.Transaction, cycle *domain.SalaryCycle, entries []*domain.SalaryEntry) error
}

func NewMockSalaryRepository() *MockSalaryRepository {
	return &MockSalaryRepository{
		cycles: make(map[string]*domain.SalaryCycle),
	}
}

// Seed stores a cycle directly.
func (m *MockSalaryRepository) Seed(cycle *domain.SalaryCycle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[cycle.ID] = cloneCycle(cycle)
}

// Saves reports how many postings were persisted.
func (m *MockSalaryRepository) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockSalaryRepository) GetCycleWithEntries(ctx context.Context, id string) (*domain.SalaryCycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.cycles[id]; ok {
		return cloneCycle(c), nil
	}
	return nil, domain.ErrCycleNotFound
}

func (m *MockSalaryRepository) SavePosting(ctx context.Context, tx usecase.Transaction, cycle *domain.SalaryCycle, entries []*domain.SalaryEntry) error {
	if m.SavePostingFunc != nil {
		return m.SavePostingFunc(ctx, tx, cycle, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[cycle.ID] = cloneCycle(cycle)
	m.saves++
	return nil
}

func cloneCycle(c *domain.SalaryCycle) *domain.SalaryCycle {
	cp := *c
	cp.Entries = make([]*domain.SalaryEntry, len(c.Entries))
	for i, e := range c.Entries {
		ec := *e
		cp.Entries[i] = &ec
	}
	return &cp
}

// MockReconciliationRepository stores cases in insertion order.
type MockReconciliationRepository struct {
	mu    sync.RWMutex
	cases []*domain.ReconciliationCase

	CreateFunc func(ctx context.Context, c *domain.ReconciliationCase) error
}

func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{}
}

func (m *MockReconciliationRepository) Create(ctx context.Context, c *domain.ReconciliationCase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.cases = append(m.cases, &cp)
	return nil
}

func (m *MockReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.ReconciliationCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cases {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCaseNotFound
}

func (m *MockReconciliationRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.ReconciliationCase, error) {
	return m.filter(func(c *domain.ReconciliationCase) bool {
		return c.Status == domain.CaseStatusOpen
	}, limit, offset), nil
}

func (m *MockReconciliationRepository) ListUnnotified(ctx context.Context, limit int) ([]*domain.ReconciliationCase, error) {
	return m.filter(func(c *domain.ReconciliationCase) bool {
		return c.Status == domain.CaseStatusOpen && c.NotifiedAt == nil
	}, limit, 0), nil
}

func (m *MockReconciliationRepository) MarkNotified(ctx context.Context, id string, notifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cases {
		if c.ID == id {
			c.NotifiedAt = &notifiedAt
			return nil
		}
	}
	return domain.ErrCaseNotFound
}

func (m *MockReconciliationRepository) Resolve(ctx context.Context, rc *domain.ReconciliationCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cases {
		if c.ID == rc.ID {
			cp := *rc
			m.cases[i] = &cp
			return nil
		}
	}
	return domain.ErrCaseNotFound
}

func (m *MockReconciliationRepository) HasOpenForResource(ctx context.Context, resourceID string) (bool, error) {
	return len(m.filter(func(c *domain.ReconciliationCase) bool {
		return c.Status == domain.CaseStatusOpen && c.ResourceID == resourceID
	}, 0, 0)) > 0, nil
}

func (m *MockReconciliationRepository) filter(keep func(*domain.ReconciliationCase) bool, limit, offset int) []*domain.ReconciliationCase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ReconciliationCase
	for _, c := range m.cases {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// OpenedCase is a case recorded by MockCaseRecorder.
type OpenedCase struct {
	Kind       domain.CaseKind
	Reference  string
	ResourceID string
	Payload    map[string]any
}

// MockCaseRecorder records every case it is asked to open. A resource has an open
// case until Close is called for it.
type MockCaseRecorder struct {
	mu     sync.Mutex
	cases  []OpenedCase
	closed map[string]bool

	HasOpenErr error
}

func NewMockCaseRecorder() *MockCaseRecorder {
	return &MockCaseRecorder{}
}

func (m *MockCaseRecorder) Open(ctx context.Context, kind domain.CaseKind, reference, resourceID string, payload map[string]any) *domain.ReconciliationCase {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases = append(m.cases, OpenedCase{Kind: kind, Reference: reference, ResourceID: resourceID, Payload: payload})
	delete(m.closed, resourceID)
	return &domain.ReconciliationCase{
		ID:         fmt.Sprintf("case-%d", len(m.cases)),
		Kind:       kind,
		Reference:  reference,
		ResourceID: resourceID,
		Payload:    payload,
		Status:     domain.CaseStatusOpen,
	}
}

func (m *MockCaseRecorder) HasOpen(ctx context.Context, resourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HasOpenErr != nil {
		return false, m.HasOpenErr
	}
	if m.closed[resourceID] {
		return false, nil
	}
	for _, c := range m.cases {
		if c.ResourceID == resourceID {
			return true, nil
		}
	}
	return false, nil
}

// Close marks every case on the resource resolved.
func (m *MockCaseRecorder) Close(resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed == nil {
		m.closed = make(map[string]bool)
	}
	m.closed[resourceID] = true
}

// Cases returns the recorded cases.
func (m *MockCaseRecorder) Cases() []OpenedCase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpenedCase(nil), m.cases...)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction runs registered undo functions on rollback unless it was committed.
type MockTransaction struct {
	mu        sync.Mutex
	undo      []func()
	committed bool
	done      bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

// OnRollback registers fn to run if the transaction is rolled back.
func (m *MockTransaction) OnRollback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, fn)
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = true
	m.done = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		if err := m.RollbackFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	undo := m.undo
	m.undo = nil
	m.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	return nil
}

// MockRetrier runs the operation once unless RetryFunc is set.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockReferenceGenerator issues predictable 16-character references.
type MockReferenceGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewMockReferenceGenerator() *MockReferenceGenerator {
	return &MockReferenceGenerator{}
}

func (m *MockReferenceGenerator) New() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("REF%013d", m.counter)
}

func (m *MockReferenceGenerator) NewBatch(n int) (string, []string) {
	batch := m.New()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = m.New()
	}
	return batch, lines
}

// MockPostingLocker is an in-process PostingLocker.
type MockPostingLocker struct {
	mu     sync.Mutex
	held   map[string]string
	tokens int

	AcquireFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func NewMockPostingLocker() *MockPostingLocker {
	return &MockPostingLocker{held: make(map[string]string)}
}

func (m *MockPostingLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrPostingInProgress
	}
	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.held[key] = token
	return token, nil
}

func (m *MockPostingLocker) Release(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

// Held reports whether key is locked.
func (m *MockPostingLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key]
	return ok
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc func(ctx context.Context, key string) (string, error)
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", usecase.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the cached keys with the given prefix.
func (m *MockCache) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// MockModeClassifier returns a fixed mode or error.
type MockModeClassifier struct {
	Mode  domain.TransferMode
	Err   error
	calls int
	mu    sync.Mutex
}

func (m *MockModeClassifier) ClassifyTransferMode(ctx context.Context, account string) (domain.TransferMode, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Mode, nil
}

// Calls reports how many lookups were made.
func (m *MockModeClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Value returns the stored bytes for key.
func (m *MockIdempotencyStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
