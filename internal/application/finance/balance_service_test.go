package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetStudentBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the balance from the two sums", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)

		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)
		m.payments.On("SumCompletedByStudent", ctx, stu.ID).Return(decimal.RequireFromString("1250.50"), nil)
		m.allocations.On("SumByStudent", ctx, stu.ID).Return(decimal.RequireFromString("400.25"), nil)
		m.cache.On("Set", ctx, stu.ID, decimalEq("850.25")).Return(nil)

		balance, err := NewBalanceService(m.scope, m.cache, zap.NewNop()).GetStudentBalance(ctx, stu.ID)
		require.NoError(t, err)
		assert.True(t, balance.TotalPayments.Equal(decimal.RequireFromString("1250.50")))
		assert.True(t, balance.TotalAllocated.Equal(decimal.RequireFromString("400.25")))
		assert.True(t, balance.Available.Equal(decimal.RequireFromString("850.25")))
		m.cache.AssertExpectations(t)
	})

	t.Run("cache write failure does not fail the read", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)

		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)
		m.payments.On("SumCompletedByStudent", ctx, stu.ID).Return(decimal.RequireFromString("100"), nil)
		m.allocations.On("SumByStudent", ctx, stu.ID).Return(decimal.Zero, nil)
		m.cache.On("Set", ctx, stu.ID, mock.Anything).Return(errors.New("redis down"))

		balance, err := NewBalanceService(m.scope, m.cache, zap.NewNop()).GetStudentBalance(ctx, stu.ID)
		require.NoError(t, err)
		assert.True(t, balance.Available.Equal(decimal.RequireFromString("100")))
	})

	t.Run("unknown student surfaces NotFound", func(t *testing.T) {
		m := newServiceMocks()
		id := uuid.New()
		m.students.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := NewBalanceService(m.scope, m.cache, zap.NewNop()).GetStudentBalance(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.payments.AssertNotCalled(t, "SumCompletedByStudent", mock.Anything, mock.Anything)
	})
}

func TestGetOutstandingTotals(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	totals := map[uuid.UUID]decimal.Decimal{
		ids[0]: decimal.RequireFromString("300"),
		ids[1]: decimal.Zero,
	}
	m.invoices.On("SumAmountDueByStudents", ctx, ids).Return(totals, nil)

	got, err := NewBalanceService(m.scope, m.cache, zap.NewNop()).GetOutstandingTotals(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, totals, got)
}
