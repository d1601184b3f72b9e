package factory_test

import (
	"errors"
	"testing"

	"github.com/warp/waterfall-engine/factory"
	"github.com/warp/waterfall-engine/fin"
	"github.com/warp/waterfall-engine/waterfall"
)

const standardPlanJSON = `{
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
}`

func TestParsePlan_StandardThreeTier(t *testing.T) {
	plan, err := factory.ParsePlan(standardPlanJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(plan.Tiers))
	}

	// Tier 2 omitted hurdle_type: it falls back to settings.hurdle_method,
	// and its split derives from the promote.
	promote := plan.Tiers[1]
	if promote.HurdleType != waterfall.HurdleIRR {
		t.Errorf("expected irr hurdle, got %v", promote.HurdleType)
	}
	if !promote.LPSplit.Equal(fin.MustParse("0.72")) || !promote.GPSplit.Equal(fin.MustParse("0.28")) {
		t.Errorf("expected 0.72/0.28 split, got %v/%v", promote.LPSplit, promote.GPSplit)
	}
	if !promote.CatchUp {
		t.Error("expected the promote tier to carry the catch-up flag")
	}
	if !plan.ResidualTier() {
		t.Error("expected a residual final tier")
	}
}

func TestParsePlan_RatesAcceptNumbersAndStrings(t *testing.T) {
	// The same rate may arrive quoted or bare; both parse to the same plan.
	bare := `{
		"settings": {"hurdle_method": "irr", "return_of_capital": "pari_passu",
		             "lp_ownership": 0.90, "preferred_return_pct": 0.08},
		"tiers": [
			{"tier_name": "Preferred Return", "hurdle_rate": 0.08},
			{"tier_name": "Residual", "hurdle_type": "none", "promote_percent": 0.50}
		]
	}`
	plan, err := factory.ParsePlan(bare)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// num_tiers and tier_number were omitted: both default from list position.
	if plan.Settings.NumTiers != 2 {
		t.Errorf("expected num_tiers defaulted to 2, got %d", plan.Settings.NumTiers)
	}
	if plan.Tiers[1].Number != 2 {
		t.Errorf("expected tier_number defaulted to 2, got %d", plan.Tiers[1].Number)
	}
	if !plan.Settings.LPOwnership.Equal(fin.MustParse("0.90")) {
		t.Errorf("expected lp_ownership 0.90, got %v", plan.Settings.LPOwnership)
	}
}

func TestParsePlan_MalformedJSON(t *testing.T) {
	if _, err := factory.ParsePlan(`{"settings": `); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParsePlan_RejectsInvalidPlan(t *testing.T) {
	// Validation is delegated wholesale: a document NewPlan would reject
	// comes back with the engine's own configuration error.
	missing := `{
		"settings": {"hurdle_method": "irr", "return_of_capital": "pari_passu",
		             "lp_ownership": "0.90", "preferred_return_pct": "0.08"},
		"tiers": [
			{"tier_name": "Preferred Return", "hurdle_rate": "0.08"},
			{"tier_name": "Promote", "promote_percent": "0.20"},
			{"tier_name": "Residual", "hurdle_type": "none", "promote_percent": "0.50"}
		]
	}`
	_, err := factory.ParsePlan(missing)
	if !errors.Is(err, waterfall.ErrMissingHurdleRate) {
		t.Fatalf("expected ErrMissingHurdleRate, got %v", err)
	}
	if !waterfall.IsConfigError(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestParsePlan_ParsedPlanDrivesTheEngine(t *testing.T) {
	plan, err := factory.ParsePlan(standardPlanJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := waterfall.NewEngine(plan).Calculate([]waterfall.CashFlow{
		{PeriodID: 1, Date: fin.Date(2023, 1, 1), Amount: fin.MustParse("-1000000")},
		{PeriodID: 2, Date: fin.Date(2024, 1, 1), Amount: fin.MustParse("1200000")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := result.LP.TotalDistributions.Add(result.GP.TotalDistributions)
	if !total.Equal(fin.MustParse("1200000")) {
		t.Errorf("expected 1200000 distributed, got %v", total)
	}
}
