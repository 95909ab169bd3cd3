package shared

import (
	"context"

	"github.com/google/uuid"
)

// AuditEntry captures who did what, when, and the before/after values of a
// change. Entries are written inside the same transaction as the mutation
// they describe.
type AuditEntry struct {
	BaseEntity
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	UserID     uuid.UUID      `json:"user_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	Comment    string         `json:"comment,omitempty"`
}

// NewAuditEntry creates a new audit entry
func NewAuditEntry(action, entityType string, entityID, userID uuid.UUID) *AuditEntry {
	return &AuditEntry{
		BaseEntity: NewBaseEntity(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
	}
}

// WithOldValues attaches the before-image of the changed entity
func (e *AuditEntry) WithOldValues(values map[string]any) *AuditEntry {
	e.OldValues = values
	return e
}

// WithNewValues attaches the after-image of the changed entity
func (e *AuditEntry) WithNewValues(values map[string]any) *AuditEntry {
	e.NewValues = values
	return e
}

// WithComment attaches a free-form comment
func (e *AuditEntry) WithComment(comment string) *AuditEntry {
	e.Comment = comment
	return e
}

// AuditLogger persists audit entries. Implementations must honour the
// ambient transaction when one is in progress.
type AuditLogger interface {
	Log(ctx context.Context, entry *AuditEntry) error
}
