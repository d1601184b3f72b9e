/*
config.go - Tier and settings configuration with construction-time validation

PURPOSE:
  Defines the read-only configuration for a waterfall run: the ordered tier
  ladder (TierConfig) and the run-level settings (WaterfallSettings).
  NewPlan validates everything eagerly and resolves each tier into its final
  form - hurdle test selected, splits derived - so the allocator never
  branches on raw configuration strings.

SPLIT DERIVATION:
  gp_split = 1 - (lp_ownership * (1 - promote_percent))

  Splits may also be supplied directly. When both paths are present they must
  agree within rounding tolerance; disagreement is a configuration error,
  never a silent preference for one side.

HURDLE DISPATCH:
  Each tier's hurdle test is chosen ONCE here as a shortfall function
  (tagged-variant style), so the period processor just calls it:
    - IRR:             net future value of the partner's flow history at the
                       hurdle rate (closed form - no root finding)
    - Equity multiple: multiple * contributions - distributions
    - None:            residual, unlimited capacity

SEE ALSO:
  - engine.go: walks the resolved tiers
  - factory/waterfall.go: builds Plans from JSON documents
*/
package waterfall

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waterfall-engine/fin"
)

// splitTolerance bounds the allowed disagreement between supplied and
// promote-derived splits, and the allowed deviation of their sum from 100%.
var splitTolerance = fin.MustParse("0.000001")

// =============================================================================
// TIER CONFIG - Immutable, one per tier
// =============================================================================

// TierConfig describes one tier of the ladder. Ordered by TierNumber;
// tier 1 is filled first.
type TierConfig struct {
	TierNumber int    `json:"tier_number"`
	TierName   string `json:"tier_name"` // reporting label only

	// HurdleType; empty falls back to WaterfallSettings.HurdleMethod.
	// The final tier conventionally uses HurdleNone (residual).
	HurdleType HurdleType `json:"hurdle_type,omitempty"`

	// HurdleRate is required unless HurdleType resolves to HurdleNone.
	// IRR tiers: annual rate (0.12 = 12%). Multiple tiers: the multiple (1.5).
	HurdleRate decimal.NullDecimal `json:"hurdle_rate,omitempty"`

	// PromotePercent is the GP's contractual promote above this tier's
	// hurdle; drives the LP/GP split when splits are not supplied directly.
	PromotePercent decimal.Decimal `json:"promote_percent"`

	// Optional direct splits (fractions summing to 1). When present they
	// must agree with the promote-derived values.
	LPSplitPct decimal.NullDecimal `json:"lp_split_pct,omitempty"`
	GPSplitPct decimal.NullDecimal `json:"gp_split_pct,omitempty"`

	// CatchUp designates this tier as the GP catch-up tier. Requires
	// WaterfallSettings.GPCatchUp.
	CatchUp bool `json:"catch_up,omitempty"`
}

// =============================================================================
// WATERFALL SETTINGS - One per calculation
// =============================================================================

// WaterfallSettings is the run-level configuration, constructed once and
// treated as read-only for the run.
type WaterfallSettings struct {
	// HurdleMethod is the default test basis for tiers that do not set one.
	HurdleMethod HurdleType `json:"hurdle_method"`

	// NumTiers must equal the length of the tier list.
	NumTiers int `json:"num_tiers"`

	// ReturnOfCapital: pari passu or sequential principal repayment.
	ReturnOfCapital ReturnOfCapital `json:"return_of_capital"`

	// GPCatchUp enables the accelerated GP share in catch-up tiers.
	GPCatchUp bool `json:"gp_catch_up"`

	// CatchUpBasis selects the catch-up termination test. Empty = profit.
	CatchUpBasis CatchUpBasis `json:"catch_up_basis,omitempty"`

	// LPOwnership is the LP's pro-rata share of contributions (0.90 = 90%).
	// GP's share is the complement.
	LPOwnership decimal.Decimal `json:"lp_ownership"`

	// PreferredReturnPct is the annual compounding rate applied to
	// unreturned LP (and, if pari passu, GP) capital in tier 1.
	PreferredReturnPct decimal.Decimal `json:"preferred_return_pct"`
}

// GPOwnership returns the complement of LPOwnership.
func (s WaterfallSettings) GPOwnership() decimal.Decimal {
	return fin.One.Sub(s.LPOwnership)
}

// OwnershipOf returns the partner's pro-rata contribution share.
func (s WaterfallSettings) OwnershipOf(p Partner) decimal.Decimal {
	if p == LP {
		return s.LPOwnership
	}
	return s.GPOwnership()
}

// =============================================================================
// PLAN - Validated, resolved configuration
// =============================================================================

// Tier is a TierConfig after resolution: hurdle type defaulted, splits
// derived, shortfall function selected.
type Tier struct {
	Number     int
	Name       string
	HurdleType HurdleType
	HurdleRate decimal.Decimal
	Promote    decimal.Decimal
	LPSplit    decimal.Decimal
	GPSplit    decimal.Decimal
	CatchUp    bool

	// shortfall returns the additional distribution the partner needs from
	// this tier, as of a date, for the hurdle to be met. Nil for residual
	// tiers (unlimited capacity).
	shortfall shortfallFunc
}

// shortfallFunc computes a partner's remaining requirement for one tier.
// history carries the partner's dated flows (contributions negative).
type shortfallFunc func(history []fin.Flow, contributed, distributed decimal.Decimal, asOf time.Time) decimal.Decimal

// SplitOf returns the partner's split fraction in this tier.
func (t Tier) SplitOf(p Partner) decimal.Decimal {
	if p == LP {
		return t.LPSplit
	}
	return t.GPSplit
}

// Plan bundles validated settings with the resolved tier ladder. Plans are
// immutable and safe to share across concurrent runs.
type Plan struct {
	Settings WaterfallSettings
	Tiers    []Tier
}

// ResidualTier reports whether the final tier is a residual (HurdleNone)
// tier. Plans without one can overflow on large distributions.
func (p *Plan) ResidualTier() bool {
	return len(p.Tiers) > 0 && p.Tiers[len(p.Tiers)-1].HurdleType == HurdleNone
}

// =============================================================================
// CONSTRUCTION + VALIDATION
// =============================================================================

// NewPlan validates settings and tiers and resolves the tier ladder.
// All configuration errors are rejected here, before any period is
// processed - fail fast, never silently coerce.
func NewPlan(settings WaterfallSettings, tiers []TierConfig) (*Plan, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	if settings.NumTiers != len(tiers) {
		return nil, &ConfigError{Field: "num_tiers", Err: ErrTierCountMismatch}
	}
	if len(tiers) == 0 {
		return nil, &ConfigError{Field: "tiers", Err: ErrTierCountMismatch}
	}

	resolved := make([]Tier, 0, len(tiers))
	for i, tc := range tiers {
		if tc.TierNumber != i+1 {
			return nil, &ConfigError{TierNumber: tc.TierNumber, Field: "tier_number",
				Err: ErrInvalidConfig}
		}
		tier, err := resolveTier(tc, settings, i == len(tiers)-1)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, tier)
	}

	if settings.CatchUpBasis == "" {
		settings.CatchUpBasis = CatchUpOnProfit
	}
	return &Plan{Settings: settings, Tiers: resolved}, nil
}

func validateSettings(s WaterfallSettings) error {
	switch s.HurdleMethod {
	case HurdleIRR, HurdleEquityMultiple:
	default:
		return &ConfigError{Field: "hurdle_method", Err: ErrInvalidConfig}
	}
	switch s.ReturnOfCapital {
	case PariPassu, Sequential:
	default:
		return &ConfigError{Field: "return_of_capital", Err: ErrInvalidConfig}
	}
	switch s.CatchUpBasis {
	case "", CatchUpOnProfit, CatchUpOnGross:
	default:
		return &ConfigError{Field: "catch_up_basis", Err: ErrInvalidConfig}
	}
	if !s.LPOwnership.IsPositive() || s.LPOwnership.GreaterThanOrEqual(fin.One) {
		return &ConfigError{Field: "lp_ownership", Err: ErrInvalidOwnership}
	}
	if s.PreferredReturnPct.IsNegative() {
		return &ConfigError{Field: "preferred_return_pct", Err: ErrInvalidConfig}
	}
	return nil
}

func resolveTier(tc TierConfig, settings WaterfallSettings, isLast bool) (Tier, error) {
	hurdleType := tc.HurdleType
	if hurdleType == "" {
		hurdleType = settings.HurdleMethod
	}
	switch hurdleType {
	case HurdleIRR, HurdleEquityMultiple, HurdleNone:
	default:
		return Tier{}, &ConfigError{TierNumber: tc.TierNumber, Field: "hurdle_type",
			Err: ErrInvalidConfig}
	}

	if hurdleType == HurdleNone && !isLast {
		return Tier{}, &ConfigError{TierNumber: tc.TierNumber, Field: "hurdle_type",
			Err: ErrResidualNotLast}
	}
	if hurdleType != HurdleNone && !tc.HurdleRate.Valid {
		return Tier{}, &ConfigError{TierNumber: tc.TierNumber, Field: "hurdle_rate",
			Err: ErrMissingHurdleRate}
	}
	if tc.CatchUp && !settings.GPCatchUp {
		return Tier{}, &ConfigError{TierNumber: tc.TierNumber, Field: "catch_up",
			Err: ErrCatchUpDisabled}
	}
	if tc.PromotePercent.IsNegative() || tc.PromotePercent.GreaterThan(fin.One) {
		return Tier{}, &ConfigError{TierNumber: tc.TierNumber, Field: "promote_percent",
			Err: ErrInvalidConfig}
	}

	lpSplit, gpSplit, err := resolveSplits(tc, settings)
	if err != nil {
		return Tier{}, err
	}

	tier := Tier{
		Number:     tc.TierNumber,
		Name:       tc.TierName,
		HurdleType: hurdleType,
		Promote:    tc.PromotePercent,
		LPSplit:    lpSplit,
		GPSplit:    gpSplit,
		CatchUp:    tc.CatchUp,
	}
	if tc.HurdleRate.Valid {
		tier.HurdleRate = tc.HurdleRate.Decimal
	}

	// Select the hurdle test once, here, not per period.
	switch hurdleType {
	case HurdleIRR:
		rate := tier.HurdleRate
		tier.shortfall = func(history []fin.Flow, _, _ decimal.Decimal, asOf time.Time) decimal.Decimal {
			// Net FV of the history at the hurdle rate; negate to get the
			// top-up needed today. Contributions are negative flows, so a
			// partner still short has a negative FV.
			need := fin.FutureValue(history, rate, asOf).Neg()
			return fin.MaxMoney(need, fin.Zero)
		}
	case HurdleEquityMultiple:
		multiple := tier.HurdleRate
		tier.shortfall = func(_ []fin.Flow, contributed, distributed decimal.Decimal, _ time.Time) decimal.Decimal {
			need := multiple.Mul(contributed).Sub(distributed)
			return fin.MaxMoney(need, fin.Zero)
		}
	case HurdleNone:
		tier.shortfall = nil
	}
	return tier, nil
}

func resolveSplits(tc TierConfig, settings WaterfallSettings) (lp, gp decimal.Decimal, err error) {
	// Derived path: lp = ownership * (1 - promote), gp = complement.
	derivedLP := settings.LPOwnership.Mul(fin.One.Sub(tc.PromotePercent))
	derivedGP := fin.One.Sub(derivedLP)

	if !tc.LPSplitPct.Valid && !tc.GPSplitPct.Valid {
		return derivedLP, derivedGP, nil
	}
	if !tc.LPSplitPct.Valid || !tc.GPSplitPct.Valid {
		return lp, gp, &ConfigError{TierNumber: tc.TierNumber, Field: "splits",
			Err: ErrSplitSum}
	}

	suppliedLP := tc.LPSplitPct.Decimal
	suppliedGP := tc.GPSplitPct.Decimal
	if suppliedLP.Add(suppliedGP).Sub(fin.One).Abs().GreaterThan(splitTolerance) {
		return lp, gp, &ConfigError{TierNumber: tc.TierNumber, Field: "splits",
			Err: ErrSplitSum}
	}
	// Both paths present: they must agree within rounding tolerance.
	if !tc.PromotePercent.IsZero() &&
		suppliedLP.Sub(derivedLP).Abs().GreaterThan(splitTolerance) {
		return lp, gp, &ConfigError{TierNumber: tc.TierNumber, Field: "splits",
			Err: ErrSplitDisagreement}
	}
	return suppliedLP, suppliedGP, nil
}
