/*
Package waterfall implements the multi-tier equity waterfall distribution
engine.

PURPOSE:
  Allocates periodic cash flows (capital calls and distributions) between two
  capital classes - Limited Partner and General Partner - across an ordered
  ladder of economic tiers: preferred return, catch-up/promote, and residual.
  Each tier is governed by a return hurdle (IRR or equity multiple) and a
  split ratio.

KEY CONCEPTS IN THIS FILE (types.go):
  - Partner: LP or GP
  - CashFlow: one signed, dated net flow per period
  - HurdleType / HurdleMethod / ReturnOfCapital / CatchUpBasis enums

DESIGN PRINCIPLES:
  1. Pure: Calculate is a deterministic function of its inputs - no I/O,
     no clock reads, no randomness. Identical inputs give identical output.
  2. Exact: All money is decimal.Decimal; splits assign the remainder to the
     last party so conservation holds to the fixed-point scale.
  3. Sequential: Periods are processed strictly in order; the ledger carries
     state forward. Independent runs are freely parallel - nothing is shared.

USAGE:
  plan, err := waterfall.NewPlan(settings, tiers)
  engine := waterfall.NewEngine(plan)
  result, err := engine.Calculate(cashFlows)

SEE ALSO:
  - config.go: TierConfig, WaterfallSettings, construction-time validation
  - ledger.go: per-{partner,tier} capital accounts carried across periods
  - engine.go: the per-period allocation state machine
  - result.go: PeriodResult, WaterfallResult, partner summaries
*/
package waterfall

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARTNERS
// =============================================================================

// Partner identifies a capital class.
type Partner string

const (
	LP Partner = "lp"
	GP Partner = "gp"
)

// Partners lists the two classes in allocation order.
var Partners = []Partner{LP, GP}

// =============================================================================
// ENUMS
// =============================================================================

// HurdleType selects how a tier's return threshold is tested.
type HurdleType string

const (
	// HurdleIRR: the tier caps once the partner's running IRR, computed as if
	// the tier's remaining capacity were paid now, reaches the hurdle rate.
	HurdleIRR HurdleType = "irr"

	// HurdleEquityMultiple: cumulative distributions / cumulative
	// contributions against a multiple threshold.
	HurdleEquityMultiple HurdleType = "equity_multiple"

	// HurdleNone: residual tier - unlimited capacity, never blocks.
	HurdleNone HurdleType = "none"
)

// ReturnOfCapital controls how unreturned principal is repaid in tier 1.
type ReturnOfCapital string

const (
	// PariPassu: principal is repaid proportionally alongside accrued
	// preferred return.
	PariPassu ReturnOfCapital = "pari_passu"

	// Sequential: principal is repaid strictly before preferred return, and
	// no tier above tier 1 distributes until principal is fully returned.
	Sequential ReturnOfCapital = "sequential"
)

// CatchUpBasis selects the catch-up termination condition. The reference
// model's exact rule is a policy choice, so it is configuration here.
type CatchUpBasis string

const (
	// CatchUpOnProfit: GP takes 100% of a catch-up tier until its share of
	// cumulative distributed PROFIT (tier-1 principal excluded) reaches the
	// tier's promote percent. This is the default.
	CatchUpOnProfit CatchUpBasis = "profit"

	// CatchUpOnGross: same test against gross distributions.
	CatchUpOnGross CatchUpBasis = "gross"
)

// =============================================================================
// CASH FLOW - One net flow per period
// =============================================================================

// CashFlow is the net flow for one period, produced upstream.
// Negative = capital contribution required from partners.
// Positive = cash available for distribution.
//
// INVARIANTS (validated before processing):
//   - PeriodID strictly increasing, >= 1
//   - Date non-decreasing
type CashFlow struct {
	PeriodID int             `json:"period_id"`
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
}
