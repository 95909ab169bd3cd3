package models

import (
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/student"
	"github.com/shopspring/decimal"
)

// StudentModel is the persistence model for students
type StudentModel struct {
	AggregateModel
	StudentNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	FirstName           string          `gorm:"type:varchar(100);not null"`
	LastName            string          `gorm:"type:varchar(100);not null"`
	GradeLevel          string          `gorm:"type:varchar(50)"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	CachedCreditBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CachedBalanceAt     *time.Time      `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the model to a domain Student
func (m *StudentModel) ToDomain() *student.Student {
	return &student.Student{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		StudentNumber:       m.StudentNumber,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		GradeLevel:          m.GradeLevel,
		Status:              student.Status(m.Status),
		CachedCreditBalance: m.CachedCreditBalance,
		CachedBalanceAt:     m.CachedBalanceAt,
	}
}

// FromDomain populates the model from a domain Student
func (m *StudentModel) FromDomain(s *student.Student) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.StudentNumber = s.StudentNumber
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.GradeLevel = s.GradeLevel
	m.Status = string(s.Status)
	m.CachedCreditBalance = s.CachedCreditBalance
	m.CachedBalanceAt = s.CachedBalanceAt
}
