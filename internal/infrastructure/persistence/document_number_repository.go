package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberGenerator implements shared.NumberGenerator over the
// document_sequences table. The sequence row is locked FOR UPDATE while the
// counter is incremented, so two concurrent callers can never receive the
// same number.
type GormNumberGenerator struct {
	db *gorm.DB
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *gorm.DB) *GormNumberGenerator {
	return &GormNumberGenerator{db: db}
}

// Generate hands back the next number for (prefix, year), formatted as
// PREFIX-YEAR-NNNN with the counter zero-padded to four digits
func (g *GormNumberGenerator) Generate(ctx context.Context, prefix string, year int) (string, error) {
	var next int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.DocumentSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "prefix = ? AND year = ?", prefix, year).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First number of the year. ON CONFLICT DO NOTHING covers the
			// race where another transaction inserts the row first; the
			// locked re-read then serializes on their row.
			seq = models.DocumentSequenceModel{Prefix: prefix, Year: year}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&seq, "prefix = ? AND year = ?", prefix, year).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		next = seq.CurrentValue + 1
		return tx.Model(&models.DocumentSequenceModel{}).
			Where("prefix = ? AND year = ?", prefix, year).
			Update("current_value", next).Error
	})
	if err != nil {
		return "", fmt.Errorf("generate document number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, next), nil
}

// Ensure GormNumberGenerator implements the interface
var _ shared.NumberGenerator = (*GormNumberGenerator)(nil)
