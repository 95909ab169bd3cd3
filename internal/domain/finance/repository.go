package finance

import (
	"context"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository provides access to payment records
type PaymentRepository interface {
	// FindByID returns the payment or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByStudent returns a student's payments, newest first
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]Payment, error)
	// SumCompletedByStudent sums amounts over the student's completed
	// payments
	SumCompletedByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error)
	// SumCompletedByStudentBefore sums completed payment amounts with a
	// payment date strictly before the given date
	SumCompletedByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error)
	// FindCompletedByStudentBetween returns completed payments with a
	// payment date inside the half-open interval [from, to)
	FindCompletedByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]Payment, error)
	// Save persists the payment
	Save(ctx context.Context, p *Payment) error
}

// CreditAllocationRepository provides access to the append-only allocation
// ledger
type CreditAllocationRepository interface {
	// FindByID returns the allocation or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*CreditAllocation, error)
	// FindByInvoice returns every allocation referencing the invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]CreditAllocation, error)
	// SumByStudent sums allocation amounts for the student regardless of
	// invoice status
	SumByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error)
	// SumByStudentBefore sums allocation amounts created strictly before
	// the given time
	SumByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error)
	// FindByStudentBetween returns allocations created inside [from, to)
	FindByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]CreditAllocation, error)
	// Create appends an allocation
	Create(ctx context.Context, a *CreditAllocation) error
	// Delete removes an allocation, fully reversing it
	Delete(ctx context.Context, id uuid.UUID) error
}
