package finance

import (
	"fmt"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further transitions are allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusCancelled
}

// PaymentMethod represents how the money was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodBank     PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobile   PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque   PaymentMethod = "CHEQUE"
	PaymentMethodInternal PaymentMethod = "INTERNAL"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodMobile,
		PaymentMethodCheque, PaymentMethodInternal:
		return true
	}
	return false
}

// Payment represents money received from a student's guardians. Only
// completed payments count toward the student's available credit; a pending
// payment may still be updated or cancelled, and completion assigns the
// receipt number.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber string          `json:"payment_number"`
	ReceiptNumber *string         `json:"receipt_number,omitempty"` // assigned only on completion
	StudentID     uuid.UUID       `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	Status        PaymentStatus   `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	AttachmentURL string          `json:"attachment_url,omitempty"`
	ReceivedBy    uuid.UUID       `json:"received_by"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

// NewPayment creates a pending payment
func NewPayment(
	paymentNumber string,
	studentID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
	receivedBy uuid.UUID,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		StudentID:         studentID,
		Amount:            amount.Round().Amount(),
		Method:            method,
		PaymentDate:       paymentDate,
		Status:            PaymentStatusPending,
		ReceivedBy:        receivedBy,
	}, nil
}

// Complete transitions a pending payment to completed and records the
// receipt number. The payment starts counting toward the student's
// available balance from this point.
func (p *Payment) Complete(receiptNumber string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete payment in %s status", p.Status))
	}
	if receiptNumber == "" {
		return shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.ReceiptNumber = &receiptNumber
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Cancel transitions a pending payment to cancelled, excluding it from the
// student's balance
func (p *Payment) Cancel() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Update mutates a still-pending payment's amount, method, date and proof
// fields. Completed and cancelled payments are immutable.
func (p *Payment) Update(amount valueobject.Money, method PaymentMethod, paymentDate time.Time, reference, attachmentURL string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update payment in %s status", p.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	p.Amount = amount.Round().Amount()
	p.Method = method
	if !paymentDate.IsZero() {
		p.PaymentDate = paymentDate
	}
	p.Reference = reference
	p.AttachmentURL = attachmentURL
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsCompleted returns true if the payment is completed
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// GetAmountMoney returns the amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(p.Amount)
}

// EffectiveTime returns the timestamp used to order the payment on a
// statement: midnight UTC of its payment date.
func (p *Payment) EffectiveTime() time.Time {
	y, m, d := p.PaymentDate.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
