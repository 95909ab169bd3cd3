package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal digits carried by all monetary values.
const MoneyPlaces int32 = 2

var (
	oneHundred = decimal.NewFromInt(100)
	oneHalf    = decimal.New(5, -1) // 0.5
)

// RoundMoney rounds a monetary amount to two decimal places using the
// house rule: non-negative values round half up (0.125 -> 0.13), negative
// values round half toward zero (-0.125 -> -0.12). The asymmetry is a
// business policy, not a numeric accident; every amount persisted or
// compared anywhere in the system passes through here first.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	if d.Sign() >= 0 {
		// decimal.Round is half away from zero, which is half up for
		// non-negative values
		return d.Round(MoneyPlaces)
	}
	shifted := d.Abs().Mul(oneHundred)
	floor := shifted.Floor()
	if shifted.Sub(floor).GreaterThan(oneHalf) {
		floor = floor.Add(decimal.NewFromInt(1))
	}
	return floor.Div(oneHundred).Neg()
}

// Money is an immutable value object for monetary amounts in the school's
// single operating currency. All operations return new Money instances.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// ZeroMoney returns a zero-value Money
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg()}
}

// Round returns a new Money rounded with the house rounding rule
func (m Money) Round() Money {
	return Money{amount: RoundMoney(m.amount)}
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// LessThanOrEqual returns true if this Money is at most the other
func (m Money) LessThanOrEqual(other Money) bool {
	return m.amount.LessThanOrEqual(other.amount)
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual returns true if this Money is at least the other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// String returns the amount with two fixed decimal places
func (m Money) String() string {
	return m.amount.StringFixed(MoneyPlaces)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(MoneyPlaces))
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	return nil
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	return nil
}
