package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount is held at.
const MoneyScale = 2

// MaxAmountUnits bounds a single posting (in major units).
const MaxAmountUnits = 1_000_000_000_000

// Money is a fixed-point monetary amount held as an integer number of hundredths.
// Values entering the ledger are rounded half away from zero to two digits; arithmetic
// between Money values is exact integer arithmetic.
type Money struct {
	cents int64
}

var (
	// ZeroMoney is the zero amount.
	ZeroMoney = Money{}

	maxAmount = Money{cents: MaxAmountUnits * 100}
)

// ErrMoneyOutOfRange is returned for amounts that cannot be held as int64 hundredths.
var ErrMoneyOutOfRange = errors.New("money out of range")

var (
	maxRepresentable = decimal.New(math.MaxInt64, -MoneyScale)
	maxInput         = decimal.NewFromInt(MaxAmountUnits * 1000)
)

// NewMoney rounds d to two fractional digits. Values whose hundredths do not fit int64
// are rejected.
func NewMoney(d decimal.Decimal) (Money, error) {
	rounded := d.Round(MoneyScale)
	if rounded.Abs().GreaterThan(maxRepresentable) {
		return ZeroMoney, fmt.Errorf("%w: %s", ErrMoneyOutOfRange, d)
	}

	return Money{cents: rounded.Shift(MoneyScale).IntPart()}, nil
}

// moneyFromInput applies the bound every client-supplied amount is held to.
func moneyFromInput(d decimal.Decimal) (Money, error) {
	if d.Abs().GreaterThan(maxInput) {
		return ZeroMoney, fmt.Errorf("%w: %s", ErrMoneyOutOfRange, d)
	}
	return NewMoney(d)
}

// MoneyFromCents builds an amount from hundredths.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// MoneyFromInt builds an amount from whole units.
func MoneyFromInt(units int64) Money {
	return Money{cents: units * 100}
}

// ParseMoney parses a decimal string such as "1000.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney, fmt.Errorf("parse money %q: %w", s, err)
	}

	m, err := moneyFromInput(d)
	if err != nil {
		return ZeroMoney, fmt.Errorf("parse money %q: %w", s, err)
	}

	return m, nil
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64             { return m.cents }
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -MoneyScale) }
func (m Money) String() string           { return m.Decimal().StringFixed(MoneyScale) }
func (m Money) Add(n Money) Money        { return Money{cents: m.cents + n.cents} }
func (m Money) Sub(n Money) Money        { return Money{cents: m.cents - n.cents} }
func (m Money) Neg() Money               { return Money{cents: -m.cents} }
func (m Money) Equal(n Money) bool       { return m.cents == n.cents }
func (m Money) LessThan(n Money) bool    { return m.cents < n.cents }
func (m Money) GreaterThan(n Money) bool { return m.cents > n.cents }
func (m Money) IsZero() bool             { return m.cents == 0 }
func (m Money) IsPositive() bool         { return m.cents > 0 }
func (m Money) IsNegative() bool         { return m.cents < 0 }

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(n Money) int {
	switch {
	case m.cents < n.cents:
		return -1
	case m.cents > n.cents:
		return 1
	default:
		return 0
	}
}

// ClampZero returns zero for negative amounts.
func (m Money) ClampZero() Money {
	if m.cents < 0 {
		return ZeroMoney
	}
	return m
}

// Display formats the amount with the currency's symbol and grouping, e.g. "$1,000.00".
func (m Money) Display(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return m.String() + " " + currency
	}

	units := m.cents
	if cur.Fraction != MoneyScale {
		units = m.Decimal().Shift(int32(cur.Fraction)).Round(0).IntPart()
	}

	return money.New(units, cur.Code).Display()
}

// MarshalJSON encodes the amount as a fixed two-digit string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}

	parsed, err := moneyFromInput(d)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}
