package billing

import (
	"fmt"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that permit no further mutation
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled || s == InvoiceStatusVoid
}

// IsOpen returns true while the invoice can still receive credit
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid
}

// OwesMoney returns true for any status under which the invoice still counts
// toward a student's outstanding debt
func (s InvoiceStatus) OwesMoney() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid
}

// InvoiceLine is a billed item within an invoice. Lines are frozen once the
// invoice is issued; paid and remaining amounts are derived views recomputed
// from allocations.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Description string          `json:"description"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"` // set when the line represents a stocked physical good
	Quantity    decimal.Decimal `json:"quantity"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Remaining   decimal.Decimal `json:"remaining_amount"`
	// RequiresFullPayment marks product/admission-kit lines that must never
	// be partially fulfilled. Any such line makes the whole invoice
	// full-payment-only.
	RequiresFullPayment bool `json:"requires_full_payment"`
}

// IsStocked returns true when the line represents a physical good that needs
// a stock reservation once paid
func (l *InvoiceLine) IsStocked() bool {
	return l.ItemID != nil
}

// IsFullyPaid returns true when nothing remains owed on the line
func (l *InvoiceLine) IsFullyPaid() bool {
	return l.Remaining.LessThanOrEqual(decimal.Zero)
}

// LineInput describes a line at invoice creation time
type LineInput struct {
	Description         string
	ItemID              *uuid.UUID
	Quantity            decimal.Decimal
	NetAmount           decimal.Decimal
	RequiresFullPayment bool
}

// AllocationAmount is the slice of allocation state the invoice needs for
// recomputation: how much was allocated and whether it targets a specific
// line or the invoice as a whole.
type AllocationAmount struct {
	LineID *uuid.UUID
	Amount decimal.Decimal
}

// Invoice is the invoice aggregate root. Total is fixed once issued;
// PaidTotal and AmountDue are derived from allocations and recomputed after
// every allocation mutation.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	Total         decimal.Decimal `json:"total"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	Status        InvoiceStatus   `json:"status"`
	// RequiresFullPayment is true if any line must not be partially
	// fulfilled; such an invoice is paid 100% or 0%, never in between.
	RequiresFullPayment bool          `json:"requires_full_payment"`
	IssuedAt            *time.Time    `json:"issued_at,omitempty"`
	CancelledAt         *time.Time    `json:"cancelled_at,omitempty"`
	Lines               []InvoiceLine `json:"lines"`
}

// NewInvoice creates a draft invoice from line inputs
func NewInvoice(invoiceNumber string, studentID uuid.UUID, lines []LineInput) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "Invoice must have at least one line")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		StudentID:         studentID,
		Status:            InvoiceStatusDraft,
		PaidTotal:         decimal.Zero,
		Lines:             make([]InvoiceLine, 0, len(lines)),
	}

	total := decimal.Zero
	for _, in := range lines {
		if in.NetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_LINE_AMOUNT", "Line net amount must be positive")
		}
		qty := in.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		net := valueobject.RoundMoney(in.NetAmount)
		inv.Lines = append(inv.Lines, InvoiceLine{
			BaseEntity:          shared.NewBaseEntity(),
			InvoiceID:           inv.ID,
			Description:         in.Description,
			ItemID:              in.ItemID,
			Quantity:            qty,
			NetAmount:           net,
			PaidAmount:          decimal.Zero,
			Remaining:           net,
			RequiresFullPayment: in.RequiresFullPayment,
		})
		total = total.Add(net)
		if in.RequiresFullPayment {
			inv.RequiresFullPayment = true
		}
	}

	inv.Total = valueobject.RoundMoney(total)
	inv.AmountDue = inv.Total
	return inv, nil
}

// Issue transitions the invoice from draft to issued. Lines and total are
// frozen from this point on.
func (inv *Invoice) Issue() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}
	now := time.Now()
	inv.Status = InvoiceStatusIssued
	inv.IssuedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// Cancel cancels an invoice that has received no payments
func (inv *Invoice) Cancel() error {
	if inv.Status != InvoiceStatusDraft && inv.Status != InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidTotal.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with existing allocations")
	}
	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// Void voids an unpaid invoice administratively
func (inv *Invoice) Void() error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if inv.PaidTotal.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot void invoice with existing allocations")
	}
	now := time.Now()
	inv.Status = InvoiceStatusVoid
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// RecalculatePayments recomputes PaidTotal, AmountDue, status and the
// per-line paid view from the full current set of allocations against this
// invoice. It is called after every allocation create or delete.
//
// Line-scoped allocations pay their line directly. Invoice-level
// allocations are distributed across lines proportionally to net amount,
// because manual and auto allocation usually target the invoice as a whole
// while reservation sync needs a per-line paid view. The distribution is
// recomputed from scratch on every call, so repeated calls are stable.
func (inv *Invoice) RecalculatePayments(allocations []AllocationAmount) {
	totalPaid := decimal.Zero
	linePaid := make(map[uuid.UUID]decimal.Decimal, len(inv.Lines))
	hasInvoiceLevel := false

	for _, a := range allocations {
		totalPaid = totalPaid.Add(a.Amount)
		if a.LineID != nil {
			linePaid[*a.LineID] = linePaid[*a.LineID].Add(a.Amount)
		} else {
			hasInvoiceLevel = true
		}
	}

	inv.PaidTotal = valueobject.RoundMoney(totalPaid)
	due := inv.Total.Sub(totalPaid)
	if due.IsNegative() {
		due = decimal.Zero
	}
	inv.AmountDue = valueobject.RoundMoney(due)

	switch {
	case inv.AmountDue.LessThanOrEqual(decimal.Zero):
		inv.Status = InvoiceStatusPaid
	case totalPaid.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPartiallyPaid
	case inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusPartiallyPaid:
		// all allocations reversed: back to issued
		inv.Status = InvoiceStatusIssued
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		paid := linePaid[line.ID]
		if paid.IsZero() && hasInvoiceLevel && totalPaid.GreaterThan(decimal.Zero) && inv.Total.GreaterThan(decimal.Zero) {
			paid = totalPaid.Mul(line.NetAmount).Div(inv.Total)
		}
		line.PaidAmount = valueobject.RoundMoney(paid)
		line.Remaining = valueobject.RoundMoney(line.NetAmount.Sub(paid))
	}

	now := time.Now()
	inv.UpdatedAt = now
	inv.IncrementVersion()
}

// LineByID returns the line with the given ID, or nil
func (inv *Invoice) LineByID(id uuid.UUID) *InvoiceLine {
	for i := range inv.Lines {
		if inv.Lines[i].ID == id {
			return &inv.Lines[i]
		}
	}
	return nil
}

// GetTotalMoney returns the invoice total as Money
func (inv *Invoice) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoney(inv.Total)
}

// GetAmountDueMoney returns the amount due as Money
func (inv *Invoice) GetAmountDueMoney() valueobject.Money {
	return valueobject.NewMoney(inv.AmountDue)
}
