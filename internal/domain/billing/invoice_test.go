package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func makeIssuedInvoice(t *testing.T, lines []LineInput) *Invoice {
	t.Helper()
	inv, err := NewInvoice("INV-2026-0001", uuid.New(), lines)
	require.NoError(t, err)
	require.NoError(t, inv.Issue())
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("computes total from lines", func(t *testing.T) {
		inv, err := NewInvoice("INV-001", uuid.New(), []LineInput{
			{Description: "Tuition Term 1", NetAmount: d("1000.00")},
			{Description: "Lunch plan", NetAmount: d("250.50")},
		})
		require.NoError(t, err)
		assert.True(t, inv.Total.Equal(d("1250.50")))
		assert.True(t, inv.AmountDue.Equal(d("1250.50")))
		assert.True(t, inv.PaidTotal.IsZero())
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.False(t, inv.RequiresFullPayment)
	})

	t.Run("any full-payment line marks the whole invoice", func(t *testing.T) {
		inv, err := NewInvoice("INV-002", uuid.New(), []LineInput{
			{Description: "Tuition", NetAmount: d("1000")},
			{Description: "Admission kit", NetAmount: d("200"), RequiresFullPayment: true},
		})
		require.NoError(t, err)
		assert.True(t, inv.RequiresFullPayment)
	})

	t.Run("rejects empty number, nil student, no lines, bad amounts", func(t *testing.T) {
		sid := uuid.New()
		_, err := NewInvoice("", sid, []LineInput{{NetAmount: d("1")}})
		assert.Error(t, err)
		_, err = NewInvoice("INV-003", uuid.Nil, []LineInput{{NetAmount: d("1")}})
		assert.Error(t, err)
		_, err = NewInvoice("INV-003", sid, nil)
		assert.Error(t, err)
		_, err = NewInvoice("INV-003", sid, []LineInput{{NetAmount: d("0")}})
		assert.Error(t, err)
	})
}

func TestInvoiceStatusTransitions(t *testing.T) {
	t.Run("issue only from draft", func(t *testing.T) {
		inv, _ := NewInvoice("INV-010", uuid.New(), []LineInput{{NetAmount: d("100")}})
		require.NoError(t, inv.Issue())
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.NotNil(t, inv.IssuedAt)
		assert.Error(t, inv.Issue())
	})

	t.Run("cancel rejects paid invoices", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("100")}})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("40")}})
		assert.Error(t, inv.Cancel())
	})

	t.Run("cancel from issued without payments", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("100")}})
		require.NoError(t, inv.Cancel())
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.Error(t, inv.Void())
	})

	t.Run("void from issued without payments", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("100")}})
		require.NoError(t, inv.Void())
		assert.Equal(t, InvoiceStatusVoid, inv.Status)
	})
}

func TestRecalculatePayments(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{Description: "Tuition", NetAmount: d("1000")}})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("400")}})

		assert.True(t, inv.PaidTotal.Equal(d("400")))
		assert.True(t, inv.AmountDue.Equal(d("600")))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("full payment", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("1000")}})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("600")}, {Amount: d("400")}})

		assert.True(t, inv.AmountDue.IsZero())
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("all allocations removed reverts to issued", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("1000")}})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("1000")}})
		require.Equal(t, InvoiceStatusPaid, inv.Status)

		inv.RecalculatePayments(nil)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.True(t, inv.PaidTotal.IsZero())
		assert.True(t, inv.AmountDue.Equal(d("1000")))
		for _, line := range inv.Lines {
			assert.True(t, line.PaidAmount.IsZero())
			assert.True(t, line.Remaining.Equal(line.NetAmount))
		}
	})

	t.Run("paid plus due equals total after every recompute", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("333.33")}, {NetAmount: d("666.67")}})
		for _, amt := range []string{"100.01", "250.49", "649.50"} {
			allocs := []AllocationAmount{{Amount: d(amt)}}
			inv.RecalculatePayments(allocs)
			assert.True(t, inv.PaidTotal.Add(inv.AmountDue).Equal(inv.Total))
		}
	})

	t.Run("line-scoped allocation pays only its line", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{
			{Description: "Tuition", NetAmount: d("800")},
			{Description: "Books", NetAmount: d("200")},
		})
		booksID := inv.Lines[1].ID
		inv.RecalculatePayments([]AllocationAmount{{LineID: &booksID, Amount: d("200")}})

		assert.True(t, inv.Lines[0].PaidAmount.IsZero())
		assert.True(t, inv.Lines[1].PaidAmount.Equal(d("200")))
		assert.True(t, inv.Lines[1].IsFullyPaid())
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("invoice-level allocation distributes proportionally", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{
			{Description: "Tuition", NetAmount: d("750")},
			{Description: "Transport", NetAmount: d("250")},
		})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("400")}})

		// 400 * 750/1000 = 300, 400 * 250/1000 = 100
		assert.True(t, inv.Lines[0].PaidAmount.Equal(d("300")), "got %s", inv.Lines[0].PaidAmount)
		assert.True(t, inv.Lines[1].PaidAmount.Equal(d("100")), "got %s", inv.Lines[1].PaidAmount)
		assert.True(t, inv.Lines[0].Remaining.Equal(d("450")))
		assert.True(t, inv.Lines[1].Remaining.Equal(d("150")))
	})

	t.Run("proportional distribution rounds per line", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{
			{NetAmount: d("100")},
			{NetAmount: d("100")},
			{NetAmount: d("100")},
		})
		inv.RecalculatePayments([]AllocationAmount{{Amount: d("100")}})

		for _, line := range inv.Lines {
			// 100 * 100/300 = 33.333... -> 33.33
			assert.True(t, line.PaidAmount.Equal(d("33.33")), "got %s", line.PaidAmount)
		}
		assert.True(t, inv.PaidTotal.Equal(d("100")))
	})

	t.Run("repeated recompute is stable", func(t *testing.T) {
		inv := makeIssuedInvoice(t, []LineInput{{NetAmount: d("600")}, {NetAmount: d("400")}})
		allocs := []AllocationAmount{{Amount: d("123.45")}}
		inv.RecalculatePayments(allocs)
		first := make([]decimal.Decimal, len(inv.Lines))
		for i, l := range inv.Lines {
			first[i] = l.PaidAmount
		}
		inv.RecalculatePayments(allocs)
		for i, l := range inv.Lines {
			assert.True(t, l.PaidAmount.Equal(first[i]))
		}
	})
}

func TestLineByID(t *testing.T) {
	inv := makeIssuedInvoice(t, []LineInput{{Description: "Tuition", NetAmount: d("100")}})
	assert.NotNil(t, inv.LineByID(inv.Lines[0].ID))
	assert.Nil(t, inv.LineByID(uuid.New()))
}
