package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ReservationRepository defines the interface for stock reservation persistence
type ReservationRepository interface {
	// FindActiveByInvoice finds all active reservations for an invoice
	FindActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]StockReservation, error)

	// FindActiveByLine finds the active reservation for an invoice line, if any
	FindActiveByLine(ctx context.Context, invoiceLineID uuid.UUID) (*StockReservation, error)

	// Save creates or updates a reservation
	Save(ctx context.Context, reservation *StockReservation) error
}
