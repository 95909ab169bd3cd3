package models

import (
	"encoding/json"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditLogModel is the persistence model for audit entries
type AuditLogModel struct {
	BaseModel
	Action     string    `gorm:"type:varchar(50);not null;index"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OldValues  string    `gorm:"type:jsonb"`
	NewValues  string    `gorm:"type:jsonb"`
	Comment    string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// FromDomain populates the model from a domain AuditEntry
func (m *AuditLogModel) FromDomain(e *shared.AuditEntry) error {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Action = e.Action
	m.EntityType = e.EntityType
	m.EntityID = e.EntityID
	m.UserID = e.UserID
	m.Comment = e.Comment
	if e.OldValues != nil {
		raw, err := json.Marshal(e.OldValues)
		if err != nil {
			return err
		}
		m.OldValues = string(raw)
	}
	if e.NewValues != nil {
		raw, err := json.Marshal(e.NewValues)
		if err != nil {
			return err
		}
		m.NewValues = string(raw)
	}
	return nil
}
