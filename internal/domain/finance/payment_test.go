package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(t *testing.T, amount string) *Payment {
	t.Helper()
	p, err := NewPayment("PAY-2026-0001", uuid.New(), money(amount), PaymentMethodCash, time.Now(), uuid.New())
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("creates pending payment with rounded amount", func(t *testing.T) {
		p := newPendingPayment(t, "100.005")
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.Nil(t, p.ReceiptNumber)
		assert.Equal(t, "100.01", p.GetAmountMoney().String())
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewPayment("", uuid.New(), money("10"), PaymentMethodCash, time.Now(), uuid.New())
		assert.Error(t, err)
		_, err = NewPayment("PAY-1", uuid.Nil, money("10"), PaymentMethodCash, time.Now(), uuid.New())
		assert.Error(t, err)
		_, err = NewPayment("PAY-1", uuid.New(), money("0"), PaymentMethodCash, time.Now(), uuid.New())
		assert.Error(t, err)
		_, err = NewPayment("PAY-1", uuid.New(), money("-5"), PaymentMethodCash, time.Now(), uuid.New())
		assert.Error(t, err)
		_, err = NewPayment("PAY-1", uuid.New(), money("10"), PaymentMethod("CARRIER_PIGEON"), time.Now(), uuid.New())
		assert.Error(t, err)
	})
}

func TestPaymentLifecycle(t *testing.T) {
	t.Run("complete assigns receipt number", func(t *testing.T) {
		p := newPendingPayment(t, "100")
		require.NoError(t, p.Complete("RCT-2026-0001"))
		assert.Equal(t, PaymentStatusCompleted, p.Status)
		require.NotNil(t, p.ReceiptNumber)
		assert.Equal(t, "RCT-2026-0001", *p.ReceiptNumber)
		assert.NotNil(t, p.CompletedAt)
	})

	t.Run("complete requires receipt number", func(t *testing.T) {
		p := newPendingPayment(t, "100")
		assert.Error(t, p.Complete(""))
		assert.Equal(t, PaymentStatusPending, p.Status)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		p := newPendingPayment(t, "100")
		require.NoError(t, p.Complete("RCT-1"))
		assert.Error(t, p.Complete("RCT-2"))
		assert.Error(t, p.Cancel())
		assert.Error(t, p.Update(money("50"), PaymentMethodBank, time.Now(), "", ""))
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		p := newPendingPayment(t, "100")
		require.NoError(t, p.Cancel())
		assert.Equal(t, PaymentStatusCancelled, p.Status)
		assert.Error(t, p.Complete("RCT-1"))
		assert.Error(t, p.Cancel())
		assert.Error(t, p.Update(money("50"), PaymentMethodBank, time.Now(), "", ""))
	})

	t.Run("pending may be updated", func(t *testing.T) {
		p := newPendingPayment(t, "100")
		newDate := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		require.NoError(t, p.Update(money("75.50"), PaymentMethodMobile, newDate, "MPESA-REF-77", ""))
		assert.Equal(t, "75.50", p.GetAmountMoney().String())
		assert.Equal(t, PaymentMethodMobile, p.Method)
		assert.Equal(t, "MPESA-REF-77", p.Reference)
		assert.True(t, p.PaymentDate.Equal(newDate))
	})
}

func TestPaymentEffectiveTime(t *testing.T) {
	p := newPendingPayment(t, "100")
	p.PaymentDate = time.Date(2026, 5, 20, 17, 45, 3, 0, time.FixedZone("EAT", 3*3600))
	eff := p.EffectiveTime()
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), eff)
}

func TestPaymentStatusPredicates(t *testing.T) {
	assert.True(t, PaymentStatusPending.IsValid())
	assert.False(t, PaymentStatus("UNKNOWN").IsValid())
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())
	assert.False(t, PaymentStatusPending.IsTerminal())
}
