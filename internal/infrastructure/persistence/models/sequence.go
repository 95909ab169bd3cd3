package models

// DocumentSequenceModel backs document number generation. One row per
// (prefix, year); the current value is read under a row lock and
// incremented, so each call hands out exactly one number even under
// concurrent requests.
type DocumentSequenceModel struct {
	Prefix       string `gorm:"type:varchar(10);primaryKey"`
	Year         int    `gorm:"primaryKey"`
	CurrentValue int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
