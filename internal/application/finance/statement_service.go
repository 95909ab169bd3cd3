package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/google/uuid"
)

// StatementService reconstructs a student's credit ledger over a date range.
// Read-only and idempotent: identical inputs over unchanged data produce an
// identical statement.
type StatementService struct {
	scope TransactionScope
}

// NewStatementService creates a new StatementService
func NewStatementService(scope TransactionScope) *StatementService {
	return &StatementService{scope: scope}
}

// GetStatement builds the statement for [dateFrom, dateTo]. Both bounds are
// dates: activity at any time of day on dateTo belongs to the statement, so
// the repository reads run to the start of the following day.
func (s *StatementService) GetStatement(ctx context.Context, studentID uuid.UUID, dateFrom, dateTo time.Time) (*finance.Statement, error) {
	rangeEnd := dateTo.AddDate(0, 0, 1)

	var statement *finance.Statement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.StudentRepo().FindByID(ctx, studentID); err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}

		paymentsBefore, err := repos.PaymentRepo().SumCompletedByStudentBefore(ctx, studentID, dateFrom)
		if err != nil {
			return fmt.Errorf("failed to sum prior payments: %w", err)
		}
		allocationsBefore, err := repos.AllocationRepo().SumByStudentBefore(ctx, studentID, dateFrom)
		if err != nil {
			return fmt.Errorf("failed to sum prior allocations: %w", err)
		}
		payments, err := repos.PaymentRepo().FindCompletedByStudentBetween(ctx, studentID, dateFrom, rangeEnd)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		allocations, err := repos.AllocationRepo().FindByStudentBetween(ctx, studentID, dateFrom, rangeEnd)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %w", err)
		}

		statement = finance.BuildStatement(studentID, dateFrom, dateTo, paymentsBefore, allocationsBefore, payments, allocations)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}
