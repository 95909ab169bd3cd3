package models

import (
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	AggregateModel
	PaymentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ReceiptNumber *string         `gorm:"type:varchar(50);uniqueIndex"`
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method        string          `gorm:"type:varchar(30);not null"`
	PaymentDate   time.Time       `gorm:"not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	Reference     string          `gorm:"type:varchar(255)"`
	AttachmentURL string          `gorm:"type:varchar(512)"`
	ReceivedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	CompletedAt   *time.Time      `gorm:"type:timestamp"`
	CancelledAt   *time.Time      `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PaymentNumber:     m.PaymentNumber,
		ReceiptNumber:     m.ReceiptNumber,
		StudentID:         m.StudentID,
		Amount:            m.Amount,
		Method:            finance.PaymentMethod(m.Method),
		PaymentDate:       m.PaymentDate,
		Status:            finance.PaymentStatus(m.Status),
		Reference:         m.Reference,
		AttachmentURL:     m.AttachmentURL,
		ReceivedBy:        m.ReceivedBy,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
	}
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.ReceiptNumber = p.ReceiptNumber
	m.StudentID = p.StudentID
	m.Amount = p.Amount
	m.Method = string(p.Method)
	m.PaymentDate = p.PaymentDate
	m.Status = string(p.Status)
	m.Reference = p.Reference
	m.AttachmentURL = p.AttachmentURL
	m.ReceivedBy = p.ReceivedBy
	m.CompletedAt = p.CompletedAt
	m.CancelledAt = p.CancelledAt
}

// CreditAllocationModel is the persistence model for credit allocations
type CreditAllocationModel struct {
	BaseModel
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceLineID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AllocatedBy   uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CreditAllocationModel) TableName() string {
	return "credit_allocations"
}

// ToDomain converts the model to a domain CreditAllocation
func (m *CreditAllocationModel) ToDomain() *finance.CreditAllocation {
	return &finance.CreditAllocation{
		BaseEntity:    m.BaseModel.ToDomain(),
		StudentID:     m.StudentID,
		InvoiceID:     m.InvoiceID,
		InvoiceLineID: m.InvoiceLineID,
		Amount:        m.Amount,
		AllocatedBy:   m.AllocatedBy,
	}
}

// FromDomain populates the model from a domain CreditAllocation
func (m *CreditAllocationModel) FromDomain(a *finance.CreditAllocation) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.StudentID = a.StudentID
	m.InvoiceID = a.InvoiceID
	m.InvoiceLineID = a.InvoiceLineID
	m.Amount = a.Amount
	m.AllocatedBy = a.AllocatedBy
}
