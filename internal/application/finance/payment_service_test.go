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
	"go.uber.org/zap"
)

func newPaymentService(m *serviceMocks) *PaymentService {
	return NewPaymentService(m.scope, m.numbers, m.cache, zap.NewNop())
}

func pendingPayment(t *testing.T, studentID uuid.UUID, amount string) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment("PAY-2026-0042", studentID, mustMoney(t, amount), finance.PaymentMethodMobile, time.Now(), uuid.New())
	require.NoError(t, err)
	return p
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending payment with a generated number", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)
		paymentDate := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)

		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)
		m.numbers.On("Generate", ctx, "PAY", 2026).Return("PAY-2026-0042", nil)
		m.payments.On("Save", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)
		m.audit.On("Log", ctx, mock.MatchedBy(func(e *shared.AuditEntry) bool {
			return e.Action == "PAYMENT_CREATED" && e.EntityType == "payment"
		})).Return(nil)

		payment, err := newPaymentService(m).CreatePayment(ctx, CreatePaymentRequest{
			StudentID:   stu.ID,
			Amount:      decimal.RequireFromString("250.005"),
			Method:      finance.PaymentMethodMobile,
			PaymentDate: paymentDate,
			Reference:   "MPESA-XK12",
			ReceivedBy:  uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, "PAY-2026-0042", payment.PaymentNumber)
		assert.Equal(t, finance.PaymentStatusPending, payment.Status)
		assert.True(t, payment.Amount.Equal(decimal.RequireFromString("250.01")))
		assert.Equal(t, "MPESA-XK12", payment.Reference)
		m.audit.AssertExpectations(t)
	})

	t.Run("unknown student fails before number generation", func(t *testing.T) {
		m := newServiceMocks()
		studentID := uuid.New()
		m.students.On("FindByID", ctx, studentID).Return(nil, shared.ErrNotFound)

		_, err := newPaymentService(m).CreatePayment(ctx, CreatePaymentRequest{
			StudentID:  studentID,
			Amount:     decimal.RequireFromString("100"),
			Method:     finance.PaymentMethodCash,
			ReceivedBy: uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.numbers.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inactive student is rejected", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)
		stu.Deactivate()
		m.students.On("FindByID", ctx, stu.ID).Return(stu, nil)

		_, err := newPaymentService(m).CreatePayment(ctx, CreatePaymentRequest{
			StudentID:  stu.ID,
			Amount:     decimal.RequireFromString("100"),
			Method:     finance.PaymentMethodCash,
			ReceivedBy: uuid.New(),
		})
		require.Error(t, err)
		m.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCompletePayment(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("assigns a receipt and refreshes the cached balance", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)
		payment := pendingPayment(t, stu.ID, "400")

		m.payments.On("FindByID", ctx, payment.ID).Return(payment, nil)
		m.numbers.On("Generate", ctx, "RCT", time.Now().Year()).Return("RCT-2026-0007", nil)
		m.payments.On("Save", ctx, payment).Return(nil)
		m.payments.On("SumCompletedByStudent", ctx, stu.ID).Return(decimal.RequireFromString("400"), nil)
		m.allocations.On("SumByStudent", ctx, stu.ID).Return(decimal.Zero, nil)
		m.students.On("UpdateCachedBalance", ctx, stu.ID, decimalEq("400")).Return(nil)
		m.cache.On("Set", ctx, stu.ID, decimalEq("400")).Return(nil)
		m.audit.On("Log", ctx, mock.MatchedBy(func(e *shared.AuditEntry) bool {
			return e.Action == "PAYMENT_COMPLETED"
		})).Return(nil)

		completed, err := newPaymentService(m).CompletePayment(ctx, payment.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, finance.PaymentStatusCompleted, completed.Status)
		require.NotNil(t, completed.ReceiptNumber)
		assert.Equal(t, "RCT-2026-0007", *completed.ReceiptNumber)
		m.students.AssertExpectations(t)
		m.cache.AssertExpectations(t)
	})

	t.Run("completing a cancelled payment fails without side effects", func(t *testing.T) {
		m := newServiceMocks()
		stu := activeStudent(t)
		payment := pendingPayment(t, stu.ID, "400")
		require.NoError(t, payment.Cancel())

		m.payments.On("FindByID", ctx, payment.ID).Return(payment, nil)
		m.numbers.On("Generate", ctx, "RCT", time.Now().Year()).Return("RCT-2026-0008", nil)

		_, err := newPaymentService(m).CompletePayment(ctx, payment.ID, actor)
		require.Error(t, err)
		m.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.students.AssertNotCalled(t, "UpdateCachedBalance", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	m := newServiceMocks()
	stu := activeStudent(t)
	payment := pendingPayment(t, stu.ID, "150")

	m.payments.On("FindByID", ctx, payment.ID).Return(payment, nil)
	m.payments.On("Save", ctx, payment).Return(nil)
	m.audit.On("Log", ctx, mock.MatchedBy(func(e *shared.AuditEntry) bool {
		return e.Action == "PAYMENT_CANCELLED"
	})).Return(nil)

	cancelled, err := newPaymentService(m).CancelPayment(ctx, payment.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentStatusCancelled, cancelled.Status)
	// cancelled payments never touch the balance, so no cache refresh
	m.students.AssertNotCalled(t, "UpdateCachedBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePayment(t *testing.T) {
	ctx := context.Background()

	m := newServiceMocks()
	stu := activeStudent(t)
	payment := pendingPayment(t, stu.ID, "150")

	m.payments.On("FindByID", ctx, payment.ID).Return(payment, nil)
	m.payments.On("Save", ctx, payment).Return(nil)
	m.audit.On("Log", ctx, mock.MatchedBy(func(e *shared.AuditEntry) bool {
		return e.Action == "PAYMENT_UPDATED" && e.OldValues != nil && e.NewValues != nil
	})).Return(nil)

	updated, err := newPaymentService(m).UpdatePayment(ctx, payment.ID, UpdatePaymentRequest{
		Amount:    decimal.RequireFromString("175.50"),
		Method:    finance.PaymentMethodBank,
		Reference: "SLIP-99",
		UpdatedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("175.50")))
	assert.Equal(t, finance.PaymentMethodBank, updated.Method)
	m.audit.AssertExpectations(t)
}
