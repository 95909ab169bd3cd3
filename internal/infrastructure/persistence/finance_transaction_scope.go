package persistence

import (
	"context"

	appfinance "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/student"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StudentRepo returns the student repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StudentRepo() student.Repository {
	return NewGormStudentRepository(r.tx)
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// AllocationRepo returns the credit allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AllocationRepo() finance.CreditAllocationRepository {
	return NewGormCreditAllocationRepository(r.tx)
}

// ReservationRepo returns the stock reservation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReservationRepo() inventory.ReservationRepository {
	return NewGormStockReservationRepository(r.tx)
}

// AuditRepo returns the audit log repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() shared.AuditLogger {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appfinance.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appfinance.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
