/*
result.go - Immutable per-period results and the run-level aggregate

PURPOSE:
  PeriodResult is the audit record emitted once per period: what came in,
  what each tier paid each partner, and the running IRRs. WaterfallResult
  rolls the full period sequence into partner-level summaries.

  The engine never serializes these itself; the JSON tags exist because the
  declared contract is that a host process serializes results for reporting.

NULLABLE IRR:
  IRR fields are decimal.NullDecimal. Valid=false means "IRR undefined for
  this partner in this scenario" (all flows one sign, or the solver did not
  converge) - to be displayed as N/A, never coerced to zero.
*/
package waterfall

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waterfall-engine/fin"
)

// =============================================================================
// PERIOD RESULT - One immutable snapshot per period
// =============================================================================

// TierDistribution is one tier's LP/GP payout for a single period.
type TierDistribution struct {
	Tier   int             `json:"tier"`
	Name   string          `json:"name,omitempty"`
	LPDist decimal.Decimal `json:"tier_lp_dist"`
	GPDist decimal.Decimal `json:"tier_gp_dist"`
}

// PeriodResult records everything that happened in one period.
type PeriodResult struct {
	PeriodID    int             `json:"period_id"`
	Date        time.Time       `json:"date"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`

	LPContribution decimal.Decimal `json:"lp_contribution"`
	GPContribution decimal.Decimal `json:"gp_contribution"`

	// Tiers holds one entry per configured tier, in ladder order, including
	// zero rows for tiers the cash never reached.
	Tiers []TierDistribution `json:"tiers"`

	LPIRRToDate decimal.NullDecimal `json:"lp_irr_to_date"`
	GPIRRToDate decimal.NullDecimal `json:"gp_irr_to_date"`

	// Ledger is the post-period account state, for audit.
	Ledger LedgerSnapshot `json:"ledger"`
}

// TotalDistributed sums both partners across all tiers for this period.
func (r PeriodResult) TotalDistributed() decimal.Decimal {
	total := fin.Zero
	for _, td := range r.Tiers {
		total = total.Add(td.LPDist).Add(td.GPDist)
	}
	return total
}

// =============================================================================
// PARTNER SUMMARY + WATERFALL RESULT
// =============================================================================

// PartnerSummary is the lifetime rollup for one capital class.
type PartnerSummary struct {
	Partner            Partner             `json:"partner"`
	TotalContributions decimal.Decimal     `json:"total_contributions"`
	TotalDistributions decimal.Decimal     `json:"total_distributions"`
	IRR                decimal.NullDecimal `json:"irr"`
	EquityMultiple     decimal.Decimal     `json:"equity_multiple"`
}

// WaterfallResult is the top-level output of Calculate.
type WaterfallResult struct {
	Periods []PeriodResult `json:"periods"`
	LP      PartnerSummary `json:"lp"`
	GP      PartnerSummary `json:"gp"`
}

// SummaryOf returns the requested partner's summary.
func (r *WaterfallResult) SummaryOf(p Partner) PartnerSummary {
	if p == LP {
		return r.LP
	}
	return r.GP
}

// =============================================================================
// AGGREGATION
// =============================================================================

// summarize rolls the final ledger into a partner summary. Equity multiple
// with zero contributions is a defined error, not infinity.
func summarize(l *Ledger, p Partner) (PartnerSummary, error) {
	contributions := l.TotalContributed(p)
	distributions := l.TotalDistributed(p)

	multiple, err := fin.SafeDiv(distributions, contributions)
	if err != nil {
		return PartnerSummary{}, &SummaryError{Partner: p, Err: ErrZeroContributions}
	}

	return PartnerSummary{
		Partner:            p,
		TotalContributions: contributions,
		TotalDistributions: distributions,
		IRR:                fin.XIRR(l.Flows(p)),
		EquityMultiple:     multiple,
	}, nil
}
