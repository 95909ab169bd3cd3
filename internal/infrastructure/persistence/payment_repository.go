package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds a student's payments with pagination, newest first by
// default
func (r *GormPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order(orderClause(filter, "payment_date", "desc")).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// SumCompletedByStudent sums the student's completed payment amounts
func (r *GormPaymentRepository) SumCompletedByStudent(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("student_id = ? AND status = ?", studentID, finance.PaymentStatusCompleted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumCompletedByStudentBefore sums completed payments dated strictly before
// the given date
func (r *GormPaymentRepository) SumCompletedByStudentBefore(ctx context.Context, studentID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("student_id = ? AND status = ? AND payment_date < ?",
			studentID, finance.PaymentStatusCompleted, before).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindCompletedByStudentBetween finds completed payments dated inside
// [from, to)
func (r *GormPaymentRepository) FindCompletedByStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ? AND payment_date >= ? AND payment_date < ?",
			studentID, finance.PaymentStatusCompleted, from, to).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *finance.Payment) error {
	var model models.PaymentModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

// orderClause builds an ORDER BY clause from the filter, restricted to the
// known sortable columns
func orderClause(filter shared.Filter, defaultCol, defaultDir string) string {
	col := defaultCol
	switch filter.OrderBy {
	case "payment_date", "amount", "created_at":
		col = filter.OrderBy
	}
	dir := defaultDir
	if filter.OrderDir == "asc" || filter.OrderDir == "desc" {
		dir = filter.OrderDir
	}
	return fmt.Sprintf("%s %s", col, dir)
}

// Ensure GormPaymentRepository implements the repository interface
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
