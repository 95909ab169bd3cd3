package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/student"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStudentRepository implements student.Repository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a student by ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds all students matching the given IDs
func (r *GormStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]student.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var studentModels []models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]student.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, s *student.Student) error {
	var model models.StudentModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// UpdateCachedBalance refreshes the advisory cached balance columns without
// touching the rest of the row
func (r *GormStudentRepository) UpdateCachedBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cached_credit_balance": balance,
			"cached_balance_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStudentRepository implements the repository interface
var _ student.Repository = (*GormStudentRepository)(nil)
