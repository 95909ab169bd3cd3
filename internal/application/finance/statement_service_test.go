package finance

import (
	"context"
	"testing"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetStatement(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("assembles opening balance and period activity", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)

		payment, err := finance.NewPayment("PAY-2026-0009", stu.ID, mustMoney(t, "600"),
			finance.PaymentMethodCash, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), uuid.New())
		require.NoError(t, err)
		require.NoError(t, payment.Complete("RCT-2026-0009"))

		allocation, err := finance.NewCreditAllocation(stu.ID, uuid.New(), nil, mustMoney(t, "250"), uuid.New())
		require.NoError(t, err)
		allocation.CreatedAt = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)
		m.payments.On("SumCompletedByStudentBefore", ctx, stu.ID, from).Return(decimal.RequireFromString("900"), nil)
		m.allocations.On("SumByStudentBefore", ctx, stu.ID, from).Return(decimal.RequireFromString("400"), nil)
		m.payments.On("FindCompletedByStudentBetween", ctx, stu.ID, from, to.AddDate(0, 0, 1)).Return([]finance.Payment{*payment}, nil)
		m.allocations.On("FindByStudentBetween", ctx, stu.ID, from, to.AddDate(0, 0, 1)).Return([]finance.CreditAllocation{*allocation}, nil)

		statement, err := NewStatementService(m.scope).GetStatement(ctx, stu.ID, from, to)
		require.NoError(t, err)

		assert.True(t, statement.OpeningBalance.Equal(decimal.RequireFromString("500")))
		require.Len(t, statement.Entries, 2)
		assert.Equal(t, finance.StatementEntryCredit, statement.Entries[0].Type)
		assert.Equal(t, finance.StatementEntryDebit, statement.Entries[1].Type)
		assert.True(t, statement.ClosingBalance.Equal(decimal.RequireFromString("850")))
	})

	t.Run("activity during the day on date_to is included", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)

		allocation, err := finance.NewCreditAllocation(stu.ID, uuid.New(), nil, mustMoney(t, "120"), uuid.New())
		require.NoError(t, err)
		allocation.CreatedAt = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

		// Bounds are dates, so the reads must extend past midnight on the
		// last day: [from, date_to+1d).
		nextDay := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)
		m.payments.On("SumCompletedByStudentBefore", ctx, stu.ID, from).Return(decimal.RequireFromString("300"), nil)
		m.allocations.On("SumByStudentBefore", ctx, stu.ID, from).Return(decimal.Zero, nil)
		m.payments.On("FindCompletedByStudentBetween", ctx, stu.ID, from, nextDay).Return([]finance.Payment{}, nil)
		m.allocations.On("FindByStudentBetween", ctx, stu.ID, from, nextDay).Return([]finance.CreditAllocation{*allocation}, nil)

		statement, err := NewStatementService(m.scope).GetStatement(ctx, stu.ID, from, to)
		require.NoError(t, err)

		require.Len(t, statement.Entries, 1)
		assert.Equal(t, finance.StatementEntryDebit, statement.Entries[0].Type)
		assert.True(t, statement.ClosingBalance.Equal(decimal.RequireFromString("180")))
		m.payments.AssertExpectations(t)
		m.allocations.AssertExpectations(t)
	})

	t.Run("unknown student surfaces NotFound", func(t *testing.T) {
		m := newServiceMocks()
		id := uuid.New()
		m.students.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := NewStatementService(m.scope).GetStatement(ctx, id, from, to)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.payments.AssertNotCalled(t, "SumCompletedByStudentBefore", mock.Anything, mock.Anything, mock.Anything)
	})
}
