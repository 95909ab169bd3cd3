package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository provides access to invoices with their lines
type InvoiceRepository interface {
	// FindByID returns the invoice with lines eagerly loaded, or
	// shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice with a row-level lock so that the
	// read-recompute-write sequence around allocation mutations cannot race
	// a concurrent allocation against the same invoice
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindOpenByStudent returns the student's invoices still owing money
	// (issued or partially paid, amount due > 0), lines loaded, ordered by
	// amount due ascending then created_at then id for deterministic
	// allocation runs
	FindOpenByStudent(ctx context.Context, studentID uuid.UUID) ([]Invoice, error)
	// SumAmountDueByStudents returns per-student outstanding debt over all
	// invoices still owing money, in one batched query
	SumAmountDueByStudents(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	// Save persists the invoice and its lines
	Save(ctx context.Context, inv *Invoice) error
}
