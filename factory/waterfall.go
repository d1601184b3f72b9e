/*
Package factory provides JSON to Go waterfall configuration conversion.

PURPOSE:
  Converts JSON waterfall definitions into a validated waterfall.Plan. This
  enables deal-structure configuration without code changes - analysts define
  tier ladders in JSON, and the factory builds the proper Go structs.

JSON SCHEMA:
  {
    "settings": {
      "hurdle_method": "irr",
      "num_tiers": 3,
      "return_of_capital": "pari_passu",
      "gp_catch_up": true,
      "lp_ownership": "0.90",
      "preferred_return_pct": "0.08"
    },
    "tiers": [
      {"tier_number": 1, "tier_name": "Preferred Return",
       "hurdle_type": "irr", "hurdle_rate": "0.08"},
      {"tier_number": 2, "tier_name": "Promote",
       "hurdle_rate": "0.12", "promote_percent": "0.20", "catch_up": true},
      {"tier_number": 3, "tier_name": "Residual",
       "hurdle_type": "none", "promote_percent": "0.50"}
    ]
  }

KEY FEATURES:
  - Rates accept JSON numbers or strings ("0.08"), exactly as decimal parses
  - num_tiers defaults to the tier list length when omitted
  - Tiers missing hurdle_type fall back to settings.hurdle_method
  - All validation is delegated to waterfall.NewPlan - the factory never
    accepts a document NewPlan would reject

USAGE:
  plan, err := factory.ParsePlan(jsonStr)
  result, err := waterfall.NewEngine(plan).Calculate(flows)

SEE ALSO:
  - waterfall/config.go: the validation the factory delegates to
  - waterfall/presets.go: Go-based ladder constructors for common structures
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/waterfall-engine/waterfall"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a full waterfall configuration.
// Field types reuse the engine's own structs: shopspring decimals accept
// both JSON numbers and quoted strings.
type PlanJSON struct {
	Settings waterfall.WaterfallSettings `json:"settings"`
	Tiers    []waterfall.TierConfig      `json:"tiers"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParsePlan parses and validates a JSON waterfall definition.
func ParsePlan(jsonStr string) (*waterfall.Plan, error) {
	var doc PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, fmt.Errorf("parse waterfall config: %w", err)
	}
	applyDefaults(&doc)
	return waterfall.NewPlan(doc.Settings, doc.Tiers)
}

func applyDefaults(doc *PlanJSON) {
	if doc.Settings.NumTiers == 0 {
		doc.Settings.NumTiers = len(doc.Tiers)
	}
	if doc.Settings.CatchUpBasis == "" {
		doc.Settings.CatchUpBasis = waterfall.CatchUpOnProfit
	}
	for i := range doc.Tiers {
		if doc.Tiers[i].TierNumber == 0 {
			doc.Tiers[i].TierNumber = i + 1
		}
	}
}
