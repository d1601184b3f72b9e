/*
accrual.go - Compound preferred-return growth

PURPOSE:
  Computes how much compounded preferred return a balance earns over an
  arbitrary day-count interval:

    growth = balance * ((1 + annualRate)^(days/365) - 1)

DAY COUNT:
  actual/365 calendar-day subtraction (see daycount.go). Negative or
  zero-length intervals accrue exactly zero - never negative interest.

PRECISION:
  The fractional exponent has no exact decimal form, so the growth factor is
  computed through a float64 bridge (math.Pow) and multiplied back into the
  exact decimal balance. The balance itself never leaves decimal space, so
  float error is confined to the rate factor (~1e-15 relative).

SEE ALSO:
  - xirr.go: uses the same discounting convention in reverse
*/
package fin

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPOUND ACCRUAL
// =============================================================================

// Accrue returns the compound growth earned by balance at annualRate over
// [from, to]. Intervals of zero or negative length accrue zero.
func Accrue(balance, annualRate decimal.Decimal, from, to time.Time) decimal.Decimal {
	days := DaysBetween(from, to)
	if days <= 0 || balance.IsZero() || annualRate.IsZero() {
		return decimal.Zero
	}
	factor := CompoundFactor(annualRate, days)
	return balance.Mul(factor.Sub(One))
}

// CompoundFactor returns (1+rate)^(days/365) as a decimal, via the float64
// power bridge.
func CompoundFactor(annualRate decimal.Decimal, days int) decimal.Decimal {
	base, _ := One.Add(annualRate).Float64()
	exp := float64(days) / 365.0
	return decimal.NewFromFloat(math.Pow(base, exp))
}

// GrowthAt returns balance compounded forward: balance * (1+rate)^(days/365).
func GrowthAt(balance, annualRate decimal.Decimal, from, to time.Time) decimal.Decimal {
	days := DaysBetween(from, to)
	if days <= 0 {
		return balance
	}
	return balance.Mul(CompoundFactor(annualRate, days))
}
