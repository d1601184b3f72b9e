/*
Package fin provides the shared financial math primitives.

PURPOSE:
  This package contains the domain-agnostic numeric building blocks used by
  the waterfall engine: exact decimal money helpers, actual/365 day-count
  arithmetic, compound accrual, and an XIRR solver for irregular cash flows.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: an exact decimal amount (shopspring/decimal, never float64)
  - Rate: an annual rate expressed as a decimal fraction (0.08 = 8%)
  - RoundReport: the ONLY place rounding is allowed to happen

DESIGN PRINCIPLES:
  1. Precision: All intermediate math is exact decimal arithmetic.
  2. Late rounding: Rounding happens once, at external reporting, never
     inside tier math - rounding drift compounds across periods.
  3. Explicit division: Division by zero is a returned error, not a zero.

SEE ALSO:
  - daycount.go: actual/365 calendar arithmetic
  - accrual.go: compound preferred-return growth
  - xirr.go: internal rate of return for dated flows
*/
package fin

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY AND RATES
// =============================================================================

// ReportScale is the fixed-point scale used when amounts leave the engine:
// 2 minor-unit digits plus 4 guard digits.
const ReportScale = 6

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Hundred = decimal.NewFromInt(100)
)

// NewMoney builds an exact decimal amount from integer major units.
func NewMoney(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// MustParse converts a decimal literal string. It panics on malformed input
// and is intended for constants and tests, mirroring config-time usage.
func MustParse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("fin: invalid decimal literal " + s)
	}
	return d
}

// RoundReport rounds half-up to ReportScale. This is the single blessed
// rounding point; tier math must pass amounts through unrounded.
func RoundReport(d decimal.Decimal) decimal.Decimal {
	return d.Round(ReportScale)
}

// SafeDiv divides a by b, returning ErrDivisionByZero when b is zero rather
// than a silent zero result.
func SafeDiv(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.Div(b), nil
}

// MinMoney returns the smaller of two amounts.
func MinMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxMoney returns the larger of two amounts.
func MaxMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampFloor returns d, or floor when d is below it. Used to keep capital
// account balances from drifting below zero on the last repayment.
func ClampFloor(d, floor decimal.Decimal) decimal.Decimal {
	if d.LessThan(floor) {
		return floor
	}
	return d
}
