package finance

import (
	"sort"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementEntryType distinguishes credit entries (payments received) from
// debit entries (credit consumed by an allocation)
type StatementEntryType string

const (
	StatementEntryCredit StatementEntryType = "CREDIT"
	StatementEntryDebit  StatementEntryType = "DEBIT"
)

// StatementEntry is one event on a student's statement with the running
// balance after the event
type StatementEntry struct {
	Type           StatementEntryType `json:"type"`
	OccurredAt     time.Time          `json:"occurred_at"`
	Amount         decimal.Decimal    `json:"amount"`
	RunningBalance decimal.Decimal    `json:"running_balance"`
	PaymentID      *uuid.UUID         `json:"payment_id,omitempty"`
	PaymentNumber  string             `json:"payment_number,omitempty"`
	AllocationID   *uuid.UUID         `json:"allocation_id,omitempty"`
	InvoiceID      *uuid.UUID         `json:"invoice_id,omitempty"`
	Description    string             `json:"description,omitempty"`
}

// Statement is the chronological reconstruction of a student's credit
// balance over a date range
type Statement struct {
	StudentID      uuid.UUID        `json:"student_id"`
	DateFrom       time.Time        `json:"date_from"`
	DateTo         time.Time        `json:"date_to"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	TotalCredits   decimal.Decimal  `json:"total_credits"`
	TotalDebits    decimal.Decimal  `json:"total_debits"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	Entries        []StatementEntry `json:"entries"`
}

// BuildStatement assembles a statement from the period's completed payments
// and allocations plus the sums of everything before the period. Payments
// order by midnight UTC of their payment date, allocations by their actual
// creation time; the merged sequence is walked with a running balance
// starting from the opening balance. The function is pure: identical inputs
// produce an identical statement.
func BuildStatement(
	studentID uuid.UUID,
	dateFrom, dateTo time.Time,
	paymentsBefore, allocationsBefore decimal.Decimal,
	payments []Payment,
	allocations []CreditAllocation,
) *Statement {
	st := &Statement{
		StudentID:      studentID,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		OpeningBalance: valueobject.RoundMoney(paymentsBefore.Sub(allocationsBefore)),
		TotalCredits:   decimal.Zero,
		TotalDebits:    decimal.Zero,
		Entries:        make([]StatementEntry, 0, len(payments)+len(allocations)),
	}

	for i := range payments {
		p := &payments[i]
		id := p.ID
		st.Entries = append(st.Entries, StatementEntry{
			Type:          StatementEntryCredit,
			OccurredAt:    p.EffectiveTime(),
			Amount:        p.Amount,
			PaymentID:     &id,
			PaymentNumber: p.PaymentNumber,
			Description:   "Payment " + p.PaymentNumber,
		})
	}
	for i := range allocations {
		a := &allocations[i]
		id := a.ID
		invoiceID := a.InvoiceID
		st.Entries = append(st.Entries, StatementEntry{
			Type:         StatementEntryDebit,
			OccurredAt:   a.CreatedAt,
			Amount:       a.Amount,
			AllocationID: &id,
			InvoiceID:    &invoiceID,
			Description:  "Credit applied to invoice",
		})
	}

	sort.SliceStable(st.Entries, func(i, j int) bool {
		return st.Entries[i].OccurredAt.Before(st.Entries[j].OccurredAt)
	})

	running := st.OpeningBalance
	for i := range st.Entries {
		e := &st.Entries[i]
		if e.Type == StatementEntryCredit {
			running = valueobject.RoundMoney(running.Add(e.Amount))
			st.TotalCredits = st.TotalCredits.Add(e.Amount)
		} else {
			running = valueobject.RoundMoney(running.Sub(e.Amount))
			st.TotalDebits = st.TotalDebits.Add(e.Amount)
		}
		e.RunningBalance = running
	}

	st.TotalCredits = valueobject.RoundMoney(st.TotalCredits)
	st.TotalDebits = valueobject.RoundMoney(st.TotalDebits)
	st.ClosingBalance = running
	return st
}
