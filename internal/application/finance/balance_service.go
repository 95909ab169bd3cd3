package finance

import (
	"context"
	"fmt"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceCache is an advisory cache of derived student balances. A miss or
// a stale entry is never an error: every correctness-critical read derives
// the balance from the payment and allocation sums instead.
type BalanceCache interface {
	// Get returns the cached balance and whether the cache held one
	Get(ctx context.Context, studentID uuid.UUID) (decimal.Decimal, bool, error)
	// Set stores a freshly derived balance
	Set(ctx context.Context, studentID uuid.UUID, balance decimal.Decimal) error
	// Invalidate drops the cached balance
	Invalidate(ctx context.Context, studentID uuid.UUID) error
}

// BalanceService derives student credit balances and outstanding debt
// totals. Balances are computed fresh from the payment and allocation sums
// on every call; the redis cache and the student row's cached column are
// refreshed as a side effect but never read for correctness.
type BalanceService struct {
	scope  TransactionScope
	cache  BalanceCache
	logger *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(scope TransactionScope, cache BalanceCache, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		scope:  scope,
		cache:  cache,
		logger: logger,
	}
}

// GetStudentBalance returns the student's derived credit position
func (s *BalanceService) GetStudentBalance(ctx context.Context, studentID uuid.UUID) (*finance.StudentBalance, error) {
	var balance finance.StudentBalance
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.StudentRepo().FindByID(ctx, studentID); err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}
		var err error
		balance, err = deriveBalance(ctx, repos, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, studentID, balance.Available); err != nil {
			s.logger.Warn("balance cache refresh failed",
				zap.String("student_id", studentID.String()), zap.Error(err))
		}
	}
	return &balance, nil
}

// GetOutstandingTotals returns per-student outstanding debt over every
// invoice still owing money, batched in one query
func (s *BalanceService) GetOutstandingTotals(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var totals map[uuid.UUID]decimal.Decimal
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		totals, err = repos.InvoiceRepo().SumAmountDueByStudents(ctx, studentIDs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding debt: %w", err)
	}
	return totals, nil
}

// deriveBalance computes the authoritative balance from the two sums:
// completed payments in, allocations out.
func deriveBalance(ctx context.Context, repos TransactionalRepositories, studentID uuid.UUID) (finance.StudentBalance, error) {
	payments, err := repos.PaymentRepo().SumCompletedByStudent(ctx, studentID)
	if err != nil {
		return finance.StudentBalance{}, fmt.Errorf("failed to sum payments: %w", err)
	}
	allocated, err := repos.AllocationRepo().SumByStudent(ctx, studentID)
	if err != nil {
		return finance.StudentBalance{}, fmt.Errorf("failed to sum allocations: %w", err)
	}
	return finance.ComputeBalance(payments, allocated), nil
}
