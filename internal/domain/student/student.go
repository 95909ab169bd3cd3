package student

import (
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the enrollment status of a student
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Student represents an enrolled student. Payment and allocation records
// reference the student by ID; the student row itself carries only an
// advisory cached credit balance.
type Student struct {
	shared.BaseAggregateRoot
	StudentNumber string `json:"student_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	GradeLevel    string `json:"grade_level"`
	Status        Status `json:"status"`
	// CachedCreditBalance is a display-layer read optimization refreshed on
	// payment completion and allocation create/delete. It is never trusted
	// for correctness-critical reads; the authoritative balance is always
	// derived from payment and allocation records.
	CachedCreditBalance decimal.Decimal `json:"cached_credit_balance"`
	CachedBalanceAt     *time.Time      `json:"cached_balance_at,omitempty"`
}

// NewStudent creates a new active student
func NewStudent(studentNumber, firstName, lastName, gradeLevel string) (*Student, error) {
	if studentNumber == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_NUMBER", "Student number cannot be empty")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_NAME", "Student name cannot be empty")
	}
	return &Student{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		StudentNumber:       studentNumber,
		FirstName:           firstName,
		LastName:            lastName,
		GradeLevel:          gradeLevel,
		Status:              StatusActive,
		CachedCreditBalance: decimal.Zero,
	}, nil
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsActive returns true if the student is currently enrolled
func (s *Student) IsActive() bool {
	return s.Status == StatusActive
}

// RefreshCachedBalance records a freshly derived balance on the advisory
// cache field
func (s *Student) RefreshCachedBalance(balance decimal.Decimal) {
	now := time.Now()
	s.CachedCreditBalance = balance
	s.CachedBalanceAt = &now
	s.UpdatedAt = now
}

// Deactivate marks the student as no longer enrolled
func (s *Student) Deactivate() {
	s.Status = StatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

