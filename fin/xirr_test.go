package fin_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waterfall-engine/fin"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func flow(year int, month time.Month, day int, amount string) fin.Flow {
	return fin.Flow{Date: fin.Date(year, month, day), Amount: fin.MustParse(amount)}
}

func rateOf(t *testing.T, nd decimal.NullDecimal) float64 {
	t.Helper()
	if !nd.Valid {
		t.Fatal("expected a defined IRR, got undefined")
	}
	f, _ := nd.Decimal.Float64()
	return f
}

// =============================================================================
// XIRR - KNOWN VALUES
// =============================================================================

func TestXIRR_OneYearTenPercent(t *testing.T) {
	// GIVEN: -1000 at t0, +1100 exactly 365 days later
	// THEN: IRR is 10%
	flows := []fin.Flow{
		flow(2023, time.January, 1, "-1000"),
		flow(2024, time.January, 1, "1100"),
	}

	r := rateOf(t, fin.XIRR(flows))
	if math.Abs(r-0.10) > 1e-6 {
		t.Errorf("expected rate 0.10, got %v", r)
	}
}

func TestXIRR_RoundTrip(t *testing.T) {
	// GIVEN: a two-flow series [-X at t0, Y at t1] with Y > X
	// WHEN: solving for r
	// THEN: X * (1+r)^((t1-t0)/365) recovers Y within 1e-6 relative error
	t0 := fin.Date(2022, time.March, 15)
	t1 := fin.Date(2023, time.September, 12)
	x, y := 250000.0, 311000.0

	flows := []fin.Flow{
		{Date: t0, Amount: decimal.NewFromFloat(-x)},
		{Date: t1, Amount: decimal.NewFromFloat(y)},
	}

	r := rateOf(t, fin.XIRR(flows))
	years := float64(fin.DaysBetween(t0, t1)) / 365.0
	recovered := x * math.Pow(1+r, years)
	if math.Abs(recovered-y)/y > 1e-6 {
		t.Errorf("round trip: expected %v, recovered %v (rate %v)", y, recovered, r)
	}
}

func TestXIRR_MultiFlowResidualNearZero(t *testing.T) {
	// GIVEN: an irregular series with several flows of both signs
	// THEN: the solved rate zeroes the present value within tolerance
	flows := []fin.Flow{
		flow(2021, time.January, 1, "-500000"),
		flow(2021, time.July, 1, "-250000"),
		flow(2022, time.April, 1, "100000"),
		flow(2023, time.January, 1, "400000"),
		flow(2024, time.January, 1, "450000"),
	}

	r := rateOf(t, fin.XIRR(flows))
	anchor := flows[0].Date
	var nv float64
	for _, f := range flows {
		amt, _ := f.Amount.Float64()
		nv += amt / math.Pow(1+r, float64(fin.DaysBetween(anchor, f.Date))/365.0)
	}
	if math.Abs(nv) > 1e-3 {
		t.Errorf("residual at solved rate should be ~0, got %v", nv)
	}
}

// =============================================================================
// XIRR - DEGENERATE SERIES
// =============================================================================

func TestXIRR_AllPositiveIsUndefined(t *testing.T) {
	// An all-positive series has no IRR: undefined, never zero, never a panic.
	flows := []fin.Flow{
		flow(2023, time.January, 1, "100"),
		flow(2024, time.January, 1, "200"),
	}
	if got := fin.XIRR(flows); got.Valid {
		t.Errorf("expected undefined IRR, got %v", got.Decimal)
	}
}

func TestXIRR_AllNegativeIsUndefined(t *testing.T) {
	flows := []fin.Flow{
		flow(2023, time.January, 1, "-100"),
		flow(2024, time.January, 1, "-200"),
	}
	if got := fin.XIRR(flows); got.Valid {
		t.Errorf("expected undefined IRR, got %v", got.Decimal)
	}
}

func TestXIRR_EmptyAndSingleFlow(t *testing.T) {
	if got := fin.XIRR(nil); got.Valid {
		t.Errorf("empty series: expected undefined, got %v", got.Decimal)
	}
	if got := fin.XIRR([]fin.Flow{flow(2023, time.January, 1, "-100")}); got.Valid {
		t.Errorf("single flow: expected undefined, got %v", got.Decimal)
	}
}

func TestXIRR_RateOutsideBracketIsUndefined(t *testing.T) {
	// GIVEN: a return so extreme the rate sits far above the search bracket
	// THEN: undefined, not a wild extrapolation
	flows := []fin.Flow{
		flow(2023, time.January, 1, "-1"),
		flow(2024, time.January, 1, "1000000000"),
	}
	if got := fin.XIRR(flows); got.Valid {
		t.Errorf("expected undefined IRR outside bracket, got %v", got.Decimal)
	}
}

func TestXIRRWithParams_IterationExhaustion(t *testing.T) {
	// With a hostile iteration budget the solver gives up cleanly.
	flows := []fin.Flow{
		flow(2023, time.January, 1, "-1000"),
		flow(2024, time.January, 1, "1137"),
	}
	if got := fin.XIRRWithParams(flows, 1, 1e-12); got.Valid {
		t.Errorf("expected undefined IRR when iterations exhaust, got %v", got.Decimal)
	}
}

// =============================================================================
// FUTURE VALUE
// =============================================================================

func TestFutureValue_CompoundsContributionsForward(t *testing.T) {
	// GIVEN: -1000 contributed, valued 365 days later at 8%
	// THEN: net FV is -1080; the 80 top-up need is its negation minus capital
	flows := []fin.Flow{flow(2023, time.January, 1, "-1000")}
	fv := fin.FutureValue(flows, fin.MustParse("0.08"), fin.Date(2024, time.January, 1))

	diff := fv.Add(fin.MustParse("1080")).Abs()
	if diff.GreaterThan(fin.MustParse("0.000001")) {
		t.Errorf("expected FV -1080, got %v", fv)
	}
}

func TestFutureValue_SameDayFlowsAtFaceValue(t *testing.T) {
	// Flows dated on or after asOf are not discounted or compounded.
	asOf := fin.Date(2023, time.June, 1)
	flows := []fin.Flow{
		{Date: asOf, Amount: fin.MustParse("-500")},
		{Date: asOf, Amount: fin.MustParse("200")},
	}
	fv := fin.FutureValue(flows, fin.MustParse("0.10"), asOf)
	if !fv.Equal(fin.MustParse("-300")) {
		t.Errorf("expected FV -300, got %v", fv)
	}
}
