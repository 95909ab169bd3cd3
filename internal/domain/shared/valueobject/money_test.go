package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"positive half rounds up", "10.125", "10.13"},
		{"positive below half rounds down", "10.124", "10.12"},
		{"positive above half rounds up", "10.126", "10.13"},
		{"negative half rounds toward zero", "-10.125", "-10.12"},
		{"negative below half rounds toward zero", "-10.124", "-10.12"},
		{"negative above half rounds away", "-10.126", "-10.13"},
		{"already two places unchanged", "42.10", "42.1"},
		{"zero", "0", "0"},
		{"small positive half", "0.005", "0.01"},
		{"small negative half", "-0.005", "0"},
		{"many places positive", "3.14159", "3.14"},
		{"many places negative", "-3.14159", "-3.14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundMoney(d(tt.input))
			assert.True(t, got.Equal(d(tt.want)), "RoundMoney(%s) = %s, want %s", tt.input, got, tt.want)
		})
	}
}

func TestRoundMoneyAsymmetry(t *testing.T) {
	// The rule is deliberately asymmetric around zero: 0.125 and -0.125
	// do not round to values of equal magnitude.
	pos := RoundMoney(d("0.125"))
	neg := RoundMoney(d("-0.125"))
	assert.True(t, pos.Equal(d("0.13")))
	assert.True(t, neg.Equal(d("-0.12")))
	assert.False(t, pos.Equal(neg.Neg()))
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("Add and Subtract", func(t *testing.T) {
		a := NewMoney(d("10.50"))
		b := NewMoney(d("2.25"))
		assert.True(t, a.Add(b).Equals(NewMoney(d("12.75"))))
		assert.True(t, a.Subtract(b).Equals(NewMoney(d("8.25"))))
	})

	t.Run("Multiply and Round", func(t *testing.T) {
		m := NewMoney(d("10.00")).Multiply(d("0.3333"))
		assert.True(t, m.Round().Equals(NewMoney(d("3.33"))))
	})

	t.Run("Negate", func(t *testing.T) {
		assert.True(t, NewMoney(d("5")).Negate().Equals(NewMoney(d("-5"))))
	})

	t.Run("comparisons", func(t *testing.T) {
		a := NewMoney(d("1.00"))
		b := NewMoney(d("2.00"))
		assert.True(t, a.LessThan(b))
		assert.True(t, b.GreaterThan(a))
		assert.True(t, a.LessThanOrEqual(a))
		assert.True(t, a.GreaterThanOrEqual(a))
	})

	t.Run("sign predicates", func(t *testing.T) {
		assert.True(t, ZeroMoney().IsZero())
		assert.True(t, NewMoney(d("1")).IsPositive())
		assert.True(t, NewMoney(d("-1")).IsNegative())
	})
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("99.99")
	require.NoError(t, err)
	assert.Equal(t, "99.99", m.String())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoney(d("10.5"))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"10.50"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"oops"`), &bad))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("12.34"))
	assert.True(t, m.Equals(NewMoney(d("12.34"))))

	require.NoError(t, m.Scan([]byte("56.78")))
	assert.True(t, m.Equals(NewMoney(d("56.78"))))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}

func TestMoneyValue(t *testing.T) {
	v, err := NewMoney(d("7.70")).Value()
	require.NoError(t, err)
	assert.Equal(t, "7.7", v)
}
