package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCreditAllocationRepository implements CreditAllocationRepository using
// GORM
type GormCreditAllocationRepository struct {
	db *gorm.DB
}

// NewGormCreditAllocationRepository creates a new GormCreditAllocationRepository
func NewGormCreditAllocationRepository(db *gorm.DB) *GormCreditAllocationRepository {
	return &GormCreditAllocationRepository{db: db}
}

// FindByID finds a credit allocation by its ID
func (r *GormCreditAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CreditAllocation, error) {
	var model models.CreditAllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds every allocation referencing the invoice
func (r *GormCreditAllocationRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]finance.CreditAllocation, error) {
	var allocationModels []models.CreditAllocationModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]finance.CreditAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// SumByStudent sums the student's allocation amounts
func (r *GormCreditAllocationRepository) SumByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CreditAllocationModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("student_id = ?", studentID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByStudentBefore sums allocation amounts created strictly before the
// given time
func (r *GormCreditAllocationRepository) SumByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CreditAllocationModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("student_id = ? AND created_at < ?", studentID, before).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindByStudentBetween finds allocations created inside [from, to)
func (r *GormCreditAllocationRepository) FindByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]finance.CreditAllocation, error) {
	var allocationModels []models.CreditAllocationModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND created_at >= ? AND created_at < ?", studentID, from, to).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]finance.CreditAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// Create appends an allocation to the ledger
func (r *GormCreditAllocationRepository) Create(ctx context.Context, a *finance.CreditAllocation) error {
	var model models.CreditAllocationModel
	model.FromDomain(a)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Delete removes an allocation, fully reversing it
func (r *GormCreditAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CreditAllocationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCreditAllocationRepository implements the repository interface
var _ finance.CreditAllocationRepository = (*GormCreditAllocationRepository)(nil)
