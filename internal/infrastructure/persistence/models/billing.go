package models

import (
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber       string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	StudentID           uuid.UUID          `gorm:"type:uuid;not null;index"`
	Total               decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PaidTotal           decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	AmountDue           decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Status              string             `gorm:"type:varchar(20);not null;index"`
	RequiresFullPayment bool               `gorm:"not null;default:false"`
	IssuedAt            *time.Time         `gorm:"type:timestamp"`
	CancelledAt         *time.Time         `gorm:"type:timestamp"`
	Lines               []InvoiceLineModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for invoice lines
type InvoiceLineModel struct {
	BaseModel
	InvoiceID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description         string          `gorm:"type:varchar(255);not null"`
	ItemID              *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	NetAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RequiresFullPayment bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the model to a domain Invoice with its lines
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		StudentID:           m.StudentID,
		Total:               m.Total,
		PaidTotal:           m.PaidTotal,
		AmountDue:           m.AmountDue,
		Status:              billing.InvoiceStatus(m.Status),
		RequiresFullPayment: m.RequiresFullPayment,
		IssuedAt:            m.IssuedAt,
		CancelledAt:         m.CancelledAt,
		Lines:               make([]billing.InvoiceLine, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		lm := &m.Lines[i]
		inv.Lines = append(inv.Lines, billing.InvoiceLine{
			BaseEntity:          lm.ToDomain(),
			InvoiceID:           lm.InvoiceID,
			Description:         lm.Description,
			ItemID:              lm.ItemID,
			Quantity:            lm.Quantity,
			NetAmount:           lm.NetAmount,
			PaidAmount:          lm.PaidAmount,
			Remaining:           lm.RemainingAmount,
			RequiresFullPayment: lm.RequiresFullPayment,
		})
	}
	return inv
}

// FromDomain populates the model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.StudentID = inv.StudentID
	m.Total = inv.Total
	m.PaidTotal = inv.PaidTotal
	m.AmountDue = inv.AmountDue
	m.Status = string(inv.Status)
	m.RequiresFullPayment = inv.RequiresFullPayment
	m.IssuedAt = inv.IssuedAt
	m.CancelledAt = inv.CancelledAt
	m.Lines = make([]InvoiceLineModel, 0, len(inv.Lines))
	for i := range inv.Lines {
		l := &inv.Lines[i]
		var lm InvoiceLineModel
		lm.FromDomainBaseEntity(l.BaseEntity)
		lm.InvoiceID = inv.ID
		lm.Description = l.Description
		lm.ItemID = l.ItemID
		lm.Quantity = l.Quantity
		lm.NetAmount = l.NetAmount
		lm.PaidAmount = l.PaidAmount
		lm.RemainingAmount = l.Remaining
		lm.RequiresFullPayment = l.RequiresFullPayment
		m.Lines = append(m.Lines, lm)
	}
}
