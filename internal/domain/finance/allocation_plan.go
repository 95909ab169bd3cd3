package finance

import (
	"sort"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationTarget is the view of an open invoice the planner needs:
// how much it still owes and whether it may be partially paid.
type AllocationTarget struct {
	InvoiceID           uuid.UUID
	InvoiceNumber       string
	AmountDue           decimal.Decimal
	RequiresFullPayment bool
	CreatedAt           time.Time
}

// PlannedAllocation is a single invoice-level allocation the planner decided
// to make
type PlannedAllocation struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
	FullyPays     bool
}

// AllocationPlan is the complete outcome of one auto-allocation run over a
// snapshot of open invoices
type AllocationPlan struct {
	Allocations      []PlannedAllocation
	TotalAllocated   decimal.Decimal
	RemainingBalance decimal.Decimal
	FullyPaidCount   int
	PartiallyPaid    int
}

// AllocationPlanner decides how a student's available credit is spread
// across their open invoices. Invoices flagged requires-full-payment are
// settled 100% or skipped entirely, never left half-paid: a half-paid
// product invoice would imply a half-delivered physical good.
//
// The plan is deterministic: invoices are ordered by amount due ascending
// (smallest debt first, maximizing the count of invoices fully settled per
// unit of credit), with creation time and ID as tiebreakers, and the
// full-payment-only group is processed before the partial-ok group so that
// protected invoices get first call on the budget.
type AllocationPlanner struct{}

// NewAllocationPlanner creates a new AllocationPlanner
func NewAllocationPlanner() *AllocationPlanner {
	return &AllocationPlanner{}
}

// Plan computes the allocation plan for the given budget over the given
// open-invoice snapshot. A non-positive budget yields an empty plan, not an
// error; auto-allocation never fails on insufficient funds.
func (p *AllocationPlanner) Plan(budget valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if budget.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation budget cannot be negative")
	}

	plan := &AllocationPlan{
		Allocations:      make([]PlannedAllocation, 0, len(targets)),
		TotalAllocated:   decimal.Zero,
		RemainingBalance: budget.Amount(),
	}
	if budget.IsZero() || len(targets) == 0 {
		return plan, nil
	}

	sorted := make([]AllocationTarget, 0, len(targets))
	for _, t := range targets {
		if t.AmountDue.GreaterThan(decimal.Zero) {
			sorted = append(sorted, t)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].AmountDue.Equal(sorted[j].AmountDue) {
			return sorted[i].AmountDue.LessThan(sorted[j].AmountDue)
		}
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].InvoiceID.String() < sorted[j].InvoiceID.String()
	})

	var requiresFull, partialOK []AllocationTarget
	for _, t := range sorted {
		if t.RequiresFullPayment {
			requiresFull = append(requiresFull, t)
		} else {
			partialOK = append(partialOK, t)
		}
	}

	remaining := budget.Amount()

	// Pass 1: full-payment-only invoices, smallest first. Pay in full or
	// skip; a skipped invoice leaves its share of the budget for the next
	// candidates.
	for _, t := range requiresFull {
		if remaining.LessThan(t.AmountDue) {
			continue
		}
		plan.Allocations = append(plan.Allocations, PlannedAllocation{
			InvoiceID:     t.InvoiceID,
			InvoiceNumber: t.InvoiceNumber,
			Amount:        t.AmountDue,
			FullyPays:     true,
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(t.AmountDue)
		remaining = remaining.Sub(t.AmountDue)
		plan.FullyPaidCount++
	}

	// Pass 2: partial-ok invoices, smallest first, until the budget runs
	// out.
	for _, t := range partialOK {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		amount := decimal.Min(remaining, t.AmountDue)
		full := amount.Equal(t.AmountDue)
		plan.Allocations = append(plan.Allocations, PlannedAllocation{
			InvoiceID:     t.InvoiceID,
			InvoiceNumber: t.InvoiceNumber,
			Amount:        amount,
			FullyPays:     full,
		})
		plan.TotalAllocated = plan.TotalAllocated.Add(amount)
		remaining = remaining.Sub(amount)
		if full {
			plan.FullyPaidCount++
		} else {
			plan.PartiallyPaid++
		}
	}

	plan.RemainingBalance = remaining
	return plan, nil
}
