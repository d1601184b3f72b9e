/*
presets.go - Constructors for common waterfall structures

PURPOSE:
  Most real deal structures are variations on the same ladder: a preferred
  return tier, one or two promote tiers, and a residual. These constructors
  build those ladders so hosts and tests don't repeat the boilerplate.
*/
package waterfall

import (
	"github.com/shopspring/decimal"
)

// StandardThreeTier builds the classic pref / promote / residual ladder.
//
//	tier 1: preferred return at prefRate (IRR hurdle = prefRate)
//	tier 2: promote tier to promoteHurdle IRR at promotePct promote
//	tier 3: residual at residualPromotePct promote
func StandardThreeTier(prefRate, promoteHurdle, promotePct, residualPromotePct decimal.Decimal) []TierConfig {
	return []TierConfig{
		{
			TierNumber: 1,
			TierName:   "Preferred Return",
			HurdleType: HurdleIRR,
			HurdleRate: decimal.NullDecimal{Decimal: prefRate, Valid: true},
		},
		{
			TierNumber:     2,
			TierName:       "Promote",
			HurdleType:     HurdleIRR,
			HurdleRate:     decimal.NullDecimal{Decimal: promoteHurdle, Valid: true},
			PromotePercent: promotePct,
		},
		{
			TierNumber:     3,
			TierName:       "Residual",
			HurdleType:     HurdleNone,
			PromotePercent: residualPromotePct,
		},
	}
}

// StandardSettings builds run settings for the common pari passu, no
// catch-up case.
func StandardSettings(numTiers int, lpOwnership, prefRate decimal.Decimal) WaterfallSettings {
	return WaterfallSettings{
		HurdleMethod:       HurdleIRR,
		NumTiers:           numTiers,
		ReturnOfCapital:    PariPassu,
		LPOwnership:        lpOwnership,
		PreferredReturnPct: prefRate,
	}
}
