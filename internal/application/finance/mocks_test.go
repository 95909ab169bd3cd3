package finance

import (
	"context"
	"testing"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/student"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}

// MockStudentRepository is a mock implementation of student.Repository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*student.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]student.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]student.Student), args.Error(1)
}

func (m *MockStudentRepository) Save(ctx context.Context, s *student.Student) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudentRepository) UpdateCachedBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SumAmountDueByStudents(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, studentIDs)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of finance.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) FindCompletedByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]finance.Payment, error) {
	args := m.Called(ctx, studentID, from, to)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *finance.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockAllocationRepository is a mock implementation of finance.CreditAllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CreditAllocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditAllocation), args.Error(1)
}

func (m *MockAllocationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.CreditAllocation, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]finance.CreditAllocation), args.Error(1)
}

func (m *MockAllocationRepository) SumByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) SumByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) FindByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]finance.CreditAllocation, error) {
	args := m.Called(ctx, studentID, from, to)
	return args.Get(0).([]finance.CreditAllocation), args.Error(1)
}

func (m *MockAllocationRepository) Create(ctx context.Context, a *finance.CreditAllocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReservationRepository is a mock implementation of inventory.ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) FindActiveByLine(ctx context.Context, invoiceLineID uuid.UUID) (*inventory.StockReservation, error) {
	args := m.Called(ctx, invoiceLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) Save(ctx context.Context, reservation *inventory.StockReservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

// MockAuditLogger is a mock implementation of shared.AuditLogger
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Log(ctx context.Context, entry *shared.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockNumberGenerator is a mock implementation of shared.NumberGenerator
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) Generate(ctx context.Context, prefix string, year int) (string, error) {
	args := m.Called(ctx, prefix, year)
	return args.String(0), args.Error(1)
}

// MockBalanceCache is a mock implementation of BalanceCache
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) Set(ctx context.Context, studentID uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, studentID, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, studentID uuid.UUID) error {
	args := m.Called(ctx, studentID)
	return args.Error(0)
}

// MockReservationSyncer is a mock implementation of ReservationSyncer
type MockReservationSyncer struct {
	mock.Mock
}

func (m *MockReservationSyncer) SyncForInvoice(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, actor uuid.UUID) error {
	args := m.Called(ctx, repos, invoice, actor)
	return args.Error(0)
}

// serviceMocks bundles every mock behind a NoOpTransactionScope
type serviceMocks struct {
	students     *MockStudentRepository
	invoices     *MockInvoiceRepository
	payments     *MockPaymentRepository
	allocations  *MockAllocationRepository
	reservations *MockReservationRepository
	audit        *MockAuditLogger
	numbers      *MockNumberGenerator
	cache        *MockBalanceCache
	syncer       *MockReservationSyncer
	scope        *NoOpTransactionScope
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		students:     new(MockStudentRepository),
		invoices:     new(MockInvoiceRepository),
		payments:     new(MockPaymentRepository),
		allocations:  new(MockAllocationRepository),
		reservations: new(MockReservationRepository),
		audit:        new(MockAuditLogger),
		numbers:      new(MockNumberGenerator),
		cache:        new(MockBalanceCache),
		syncer:       new(MockReservationSyncer),
	}
	m.scope = NewNoOpTransactionScope(m.students, m.invoices, m.payments, m.allocations, m.reservations, m.audit)
	return m
}
