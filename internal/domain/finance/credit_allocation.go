package finance

import (
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditAllocation links a slice of a student's prepaid credit to a specific
// invoice, optionally to a specific invoice line. Allocations are
// append-only and immutable; the only reversal is deletion, which restores
// the credit in full. Balance and invoice paid amounts are derived from
// these rows, never stored on them.
type CreditAllocation struct {
	shared.BaseEntity
	StudentID     uuid.UUID       `json:"student_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceLineID *uuid.UUID      `json:"invoice_line_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AllocatedBy   uuid.UUID       `json:"allocated_by"`
}

// NewCreditAllocation creates an allocation of credit against an invoice
func NewCreditAllocation(
	studentID, invoiceID uuid.UUID,
	invoiceLineID *uuid.UUID,
	amount valueobject.Money,
	allocatedBy uuid.UUID,
) (*CreditAllocation, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	return &CreditAllocation{
		BaseEntity:    shared.NewBaseEntity(),
		StudentID:     studentID,
		InvoiceID:     invoiceID,
		InvoiceLineID: invoiceLineID,
		Amount:        amount.Round().Amount(),
		AllocatedBy:   allocatedBy,
	}, nil
}

// IsLineScoped returns true when the allocation targets a specific line
func (a *CreditAllocation) IsLineScoped() bool {
	return a.InvoiceLineID != nil
}

// GetAmountMoney returns the amount as Money
func (a *CreditAllocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(a.Amount)
}
