package inventory

import (
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockReservation holds physical stock for an invoice line once the line is
// paid. Reservations are reconciled against the invoice's paid state after
// every allocation change: a line that becomes fully paid gets a reservation,
// a line whose payment regresses has its reservation released.
//
// Maps straight to its table: the entity is flat enough that a separate
// persistence model would add nothing.
type StockReservation struct {
	shared.BaseEntity
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_reservation_invoice"`
	InvoiceLineID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_reservation_line,where:released = false"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Released      bool            `gorm:"not null;default:false"`
	ReleasedAt    *time.Time      `gorm:"type:timestamp"`
	ReservedBy    uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// NewStockReservation creates an active reservation for an invoice line
func NewStockReservation(
	invoiceID, invoiceLineID, itemID uuid.UUID,
	quantity decimal.Decimal,
	reservedBy uuid.UUID,
) (*StockReservation, error) {
	if invoiceID == uuid.Nil || invoiceLineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Reservation must reference an invoice line")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Reservation must reference a stocked item")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	return &StockReservation{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     invoiceID,
		InvoiceLineID: invoiceLineID,
		ItemID:        itemID,
		Quantity:      quantity,
		ReservedBy:    reservedBy,
	}, nil
}

// IsActive returns true if the reservation still holds stock
func (r *StockReservation) IsActive() bool {
	return !r.Released
}

// Release frees the held stock when the backing payment regresses
func (r *StockReservation) Release() {
	if r.Released {
		return
	}
	now := time.Now()
	r.Released = true
	r.ReleasedAt = &now
	r.UpdatedAt = now
}
