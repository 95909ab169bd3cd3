package persistence

import (
	"context"
	"errors"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockReservationRepository implements ReservationRepository using GORM.
// StockReservation carries its own column mapping, so no persistence model
// sits in between.
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewGormStockReservationRepository creates a new GormStockReservationRepository
func NewGormStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// FindActiveByInvoice finds all active reservations for an invoice
func (r *GormStockReservationRepository) FindActiveByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ? AND released = false", invoiceID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindActiveByLine finds the active reservation for an invoice line
func (r *GormStockReservationRepository) FindActiveByLine(ctx context.Context, invoiceLineID uuid.UUID) (*inventory.StockReservation, error) {
	var reservation inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("invoice_line_id = ? AND released = false", invoiceLineID).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// Save creates or updates a reservation
func (r *GormStockReservationRepository) Save(ctx context.Context, reservation *inventory.StockReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Ensure GormStockReservationRepository implements the repository interface
var _ inventory.ReservationRepository = (*GormStockReservationRepository)(nil)
