package persistence

import (
	"context"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements shared.AuditLogger using GORM. Entries
// written through a transaction-scoped instance commit with the mutation
// they describe.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Log persists an audit entry
func (r *GormAuditLogRepository) Log(ctx context.Context, entry *shared.AuditEntry) error {
	var model models.AuditLogModel
	if err := model.FromDomain(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Ensure GormAuditLogRepository implements the interface
var _ shared.AuditLogger = (*GormAuditLogRepository)(nil)
