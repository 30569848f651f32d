package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency store currency
const DefaultCurrency = "NGN"

// minorUnitExponent kobo per naira, cents per dollar
const minorUnitExponent = 2

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidAmount    = errors.New("amount is not a valid number")
)

// Money value object. The amount is exact decimal, never float.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// ZeroMoney zero amount in the given currency
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

// ParseMoney parses a decimal string such as "49.99". Negative values are rejected.
func ParseMoney(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return NewMoney(d, currency), nil
}

// MustParseMoney is ParseMoney for literals
func MustParseMoney(value string) Money {
	m, err := ParseMoney(value, DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency ISO currency code
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// String decimal string with two fractional digits, the storage format
func (m Money) String() string {
	return m.amount.StringFixed(minorUnitExponent)
}

// MinorUnits amount in the smallest currency unit (kobo for NGN)
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(minorUnitExponent).Round(0).IntPart()
}

// FromMinorUnits builds Money from a minor-unit integer
func FromMinorUnits(units int64, currency string) Money {
	return NewMoney(decimal.New(units, -minorUnitExponent), currency)
}

// Add returns m + other
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.Currency()}, nil
}

// Multiply returns m × qty
func (m Money) Multiply(qty int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))), currency: m.Currency()}
}

// IsZero whether the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount) && m.Currency() == other.Currency()
}

// Sum adds a list of amounts in the default currency
func Sum(values ...Money) (Money, error) {
	total := ZeroMoney(DefaultCurrency)
	for _, v := range values {
		var err error
		total, err = total.Add(v)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
