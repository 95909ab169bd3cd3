package persistence

import (
	"context"
	"errors"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the invoice under a row-level lock. Concurrent
// allocations against the same invoice serialize on this lock, so the
// read-recompute-write sequence cannot interleave.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Lines are loaded separately: FOR UPDATE cannot be combined with the
	// LEFT JOIN a preload in the same statement would need on some drivers.
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("created_at ASC").
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByStudent finds the student's invoices still owing money, lines
// loaded, smallest debt first with created_at then id as tiebreakers so
// automatic allocation runs are deterministic
func (r *GormInvoiceRepository) FindOpenByStudent(ctx context.Context, studentID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("student_id = ? AND status IN ? AND amount_due > 0", studentID,
			[]billing.InvoiceStatus{billing.InvoiceStatusIssued, billing.InvoiceStatusPartiallyPaid}).
		Order("amount_due ASC, created_at ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// SumAmountDueByStudents returns per-student outstanding debt in one
// grouped query. Students without open invoices are absent from the map.
func (r *GormInvoiceRepository) SumAmountDueByStudents(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(studentIDs))
	if len(studentIDs) == 0 {
		return totals, nil
	}
	var rows []struct {
		StudentID uuid.UUID
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("student_id, COALESCE(SUM(amount_due), 0) as total").
		Where("student_id IN ? AND status IN ?", studentIDs,
			[]billing.InvoiceStatus{billing.InvoiceStatusIssued, billing.InvoiceStatusPartiallyPaid}).
		Group("student_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		totals[row.StudentID] = row.Total
	}
	return totals, nil
}

// Save creates or updates an invoice together with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	var model models.InvoiceModel
	model.FromDomain(inv)
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(&model).Error
}

// Ensure GormInvoiceRepository implements the repository interface
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
