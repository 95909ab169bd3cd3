package finance

import (
	"context"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/student"
	"github.com/google/uuid"
)

// TransactionScope provides transactional access to the finance repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository an
// allocation mutation can touch. All repositories returned share the same
// underlying database transaction: an allocation write, the invoice
// recompute, the reservation sync and the audit entry land together or not
// at all.
type TransactionalRepositories interface {
	// StudentRepo returns the student repository scoped to the current transaction
	StudentRepo() student.Repository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() finance.PaymentRepository
	// AllocationRepo returns the credit allocation repository scoped to the current transaction
	AllocationRepo() finance.CreditAllocationRepository
	// ReservationRepo returns the stock reservation repository scoped to the current transaction
	ReservationRepo() inventory.ReservationRepository
	// AuditRepo returns the audit log repository scoped to the current transaction
	AuditRepo() shared.AuditLogger
}

// ReservationSyncer reconciles stock reservations for an invoice after its
// paid amounts changed. An error aborts the enclosing transaction: a
// reservation without backing payment, or an orphaned reservation, is a
// correctness violation for warehouse operations downstream.
type ReservationSyncer interface {
	SyncForInvoice(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, actor uuid.UUID) error
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	studentRepo     student.Repository
	invoiceRepo     billing.InvoiceRepository
	paymentRepo     finance.PaymentRepository
	allocationRepo  finance.CreditAllocationRepository
	reservationRepo inventory.ReservationRepository
	auditRepo       shared.AuditLogger
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories
func NewNoOpTransactionScope(
	studentRepo student.Repository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	allocationRepo finance.CreditAllocationRepository,
	reservationRepo inventory.ReservationRepository,
	auditRepo shared.AuditLogger,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		studentRepo:     studentRepo,
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		allocationRepo:  allocationRepo,
		reservationRepo: reservationRepo,
		auditRepo:       auditRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StudentRepo returns the student repository
func (s *NoOpTransactionScope) StudentRepo() student.Repository { return s.studentRepo }

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository { return s.invoiceRepo }

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() finance.PaymentRepository { return s.paymentRepo }

// AllocationRepo returns the credit allocation repository
func (s *NoOpTransactionScope) AllocationRepo() finance.CreditAllocationRepository {
	return s.allocationRepo
}

// ReservationRepo returns the stock reservation repository
func (s *NoOpTransactionScope) ReservationRepo() inventory.ReservationRepository {
	return s.reservationRepo
}

// AuditRepo returns the audit log repository
func (s *NoOpTransactionScope) AuditRepo() shared.AuditLogger { return s.auditRepo }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
