package student

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository provides access to student records
type Repository interface {
	// FindByID returns the student or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	// FindByIDs returns the students matching the given IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Student, error)
	// Save persists the student
	Save(ctx context.Context, s *Student) error
	// UpdateCachedBalance refreshes only the advisory cached balance columns
	UpdateCachedBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}
