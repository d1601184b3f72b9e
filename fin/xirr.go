/*
xirr.go - Internal rate of return for irregularly dated cash flows

PURPOSE:
  Solves sum(CF_i / (1+r)^((date_i - date_0)/365)) = 0 for r, where date_0 is
  the first flow's date. This is the only computation in the engine without a
  closed form, so it is isolated behind a pure function with explicit
  iteration and tolerance parameters.

FAILURE MODE:
  "No IRR" is a VALID result, not an error. The solver returns an invalid
  decimal.NullDecimal when:
    - the series is empty or all flows share one sign
    - no sign change exists inside the search bracket
    - iteration exhausts without converging
  Callers surface this as "N/A", never as zero.

ALGORITHM:
  Grid scan for a sign-change bracket, then bisection refinement. Bisection
  trades speed for unconditional convergence inside the bracket; with a 100
  iteration cap the bracket width shrinks below any practical tolerance.

SEE ALSO:
  - accrual.go: forward compounding with the same actual/365 convention
*/
package fin

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FLOW - A dated signed amount
// =============================================================================

// Flow is one dated cash flow. Negative = money in (contribution),
// positive = money out (distribution), from the investor's perspective.
type Flow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// =============================================================================
// XIRR SOLVER
// =============================================================================

const (
	// XIRRMaxIterations bounds the bisection refinement.
	XIRRMaxIterations = 100

	// XIRRTolerance is the convergence tolerance on the residual.
	XIRRTolerance = 1e-6

	// Search bracket. Rates below -99.99% or above 1000% are treated as
	// undefined rather than chased further out.
	xirrRateMin = -0.9999
	xirrRateMax = 10.0
)

// XIRR finds the rate that zeroes the present value of the flow series,
// using the default iteration cap and tolerance.
func XIRR(flows []Flow) decimal.NullDecimal {
	return XIRRWithParams(flows, XIRRMaxIterations, XIRRTolerance)
}

// XIRRWithParams is XIRR with explicit solver parameters, exposed so the
// solver can be unit-tested independently of the allocator.
func XIRRWithParams(flows []Flow, maxIterations int, tolerance float64) decimal.NullDecimal {
	if len(flows) < 2 || !hasBothSigns(flows) {
		return decimal.NullDecimal{}
	}

	anchor := flows[0].Date
	residual := func(rate float64) float64 {
		var nv float64
		for _, f := range flows {
			amt, _ := f.Amount.Float64()
			years := float64(DaysBetween(anchor, f.Date)) / 365.0
			nv += amt / math.Pow(1+rate, years)
		}
		return nv
	}

	lo, hi, ok := bracketSignChange(residual)
	if !ok {
		return decimal.NullDecimal{}
	}

	fLo := residual(lo)
	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := residual(mid)
		if math.Abs(fMid) < tolerance {
			return decimal.NullDecimal{Decimal: decimal.NewFromFloat(mid), Valid: true}
		}
		if (fLo < 0) == (fMid < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return decimal.NullDecimal{}
}

// bracketSignChange scans the search range for an interval where the
// residual changes sign. Returns ok=false when every probe shares a sign.
func bracketSignChange(residual func(float64) float64) (lo, hi float64, ok bool) {
	probes := []float64{
		xirrRateMin, -0.99, -0.9, -0.75, -0.5, -0.25, -0.1,
		0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, xirrRateMax,
	}
	prev := probes[0]
	fPrev := residual(prev)
	for _, p := range probes[1:] {
		f := residual(p)
		if (fPrev < 0) != (f < 0) {
			return prev, p, true
		}
		prev, fPrev = p, f
	}
	return 0, 0, false
}

func hasBothSigns(flows []Flow) bool {
	var pos, neg bool
	for _, f := range flows {
		if f.Amount.IsPositive() {
			pos = true
		}
		if f.Amount.IsNegative() {
			neg = true
		}
	}
	return pos && neg
}

// =============================================================================
// FUTURE VALUE - Closed-form hurdle arithmetic
// =============================================================================

// FutureValue compounds every flow forward to asOf at the given annual rate
// and returns the net: sum(amount_i * (1+rate)^(days_i/365)).
//
// For a partner's history (contributions negative, distributions positive)
// the NEGATED result is the additional distribution needed today for the
// partner's IRR to reach the rate - the closed form behind IRR hurdle
// capacity, avoiding root finding inside the allocator.
func FutureValue(flows []Flow, annualRate decimal.Decimal, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, f := range flows {
		// Flows dated on or after asOf enter at face value (GrowthAt with a
		// non-positive interval is the identity).
		total = total.Add(GrowthAt(f.Amount, annualRate, f.Date, asOf))
	}
	return total
}
