package waterfall

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/waterfall-engine/fin"
)

func testPlan(t *testing.T) *Plan {
	t.Helper()
	settings := WaterfallSettings{
		HurdleMethod:       HurdleIRR,
		NumTiers:           3,
		ReturnOfCapital:    PariPassu,
		LPOwnership:        fin.MustParse("0.90"),
		PreferredReturnPct: fin.MustParse("0.08"),
	}
	plan, err := NewPlan(settings, StandardThreeTier(
		fin.MustParse("0.08"), fin.MustParse("0.12"),
		fin.MustParse("0.20"), fin.MustParse("0.50"),
	))
	require.NoError(t, err)
	return plan
}

func jan(day int) time.Time { return fin.Date(2023, time.January, day) }

func TestLedger_ContributionsEnterTierOneOnly(t *testing.T) {
	l := NewLedger(testPlan(t))

	l.ApplyContribution(LP, fin.MustParse("900"), jan(1))
	l.ApplyContribution(GP, fin.MustParse("100"), jan(1))

	assert.True(t, l.Account(LP, 1).Contributed.Equal(fin.MustParse("900")))
	assert.True(t, l.Account(GP, 1).Contributed.Equal(fin.MustParse("100")))
	for tier := 2; tier <= 3; tier++ {
		assert.True(t, l.Account(LP, tier).Contributed.IsZero(), "tier %d must stay empty", tier)
		assert.True(t, l.Account(GP, tier).Contributed.IsZero(), "tier %d must stay empty", tier)
	}

	// Contributions are negative flows in the partner history.
	flows := l.Flows(LP)
	require.Len(t, flows, 1)
	assert.True(t, flows[0].Amount.Equal(fin.MustParse("-900")))
	assert.True(t, l.TotalContributed(LP).Equal(fin.MustParse("900")))
}

func TestLedger_AccruePreferredCompoundsOutstanding(t *testing.T) {
	l := NewLedger(testPlan(t))
	l.ApplyContribution(LP, fin.MustParse("1000"), jan(1))

	// 365 days at 8% on 1000 outstanding.
	growth := l.accruePreferred(LP, fin.MustParse("0.08"), jan(1), fin.Date(2024, time.January, 1))
	assert.True(t, growth.Sub(fin.MustParse("80")).Abs().LessThan(fin.MustParse("0.000001")))
	assert.True(t, l.Account(LP, 1).AccruedUnpaid.Equal(growth))

	// Second accrual compounds on principal + unpaid preferred.
	growth2 := l.accruePreferred(LP, fin.MustParse("0.08"), fin.Date(2024, time.January, 1), fin.Date(2025, time.January, 1))
	assert.True(t, growth2.GreaterThan(growth), "accrual must compound on unpaid preferred")
}

func TestLedger_RecordDistributionTracksProfitSplit(t *testing.T) {
	l := NewLedger(testPlan(t))
	l.ApplyContribution(GP, fin.MustParse("100"), jan(1))

	// 60 principal + 15 profit in one payment.
	l.recordDistribution(GP, 0, fin.MustParse("75"), fin.MustParse("60"), jan(15))

	assert.True(t, l.TotalDistributed(GP).Equal(fin.MustParse("75")))
	assert.True(t, l.principalReturned[GP].Equal(fin.MustParse("60")))
	assert.True(t, l.profitDistributed[GP].Equal(fin.MustParse("15")))
	assert.True(t, l.totalProfit().Equal(fin.MustParse("15")))
	assert.True(t, l.totalGross().Equal(fin.MustParse("75")))
}

func TestLedger_CloneIsDeep(t *testing.T) {
	l := NewLedger(testPlan(t))
	l.ApplyContribution(LP, fin.MustParse("500"), jan(1))
	l.markSatisfied(1)

	c := l.Clone()
	l.ApplyContribution(LP, fin.MustParse("500"), jan(2))
	l.accounts[LP][0].AccruedUnpaid = fin.MustParse("42")
	l.satisfied[2] = true

	assert.True(t, c.Account(LP, 1).Contributed.Equal(fin.MustParse("500")), "clone must not see later mutations")
	assert.True(t, c.Account(LP, 1).AccruedUnpaid.IsZero())
	assert.Len(t, c.Flows(LP), 1)
	assert.True(t, c.Satisfied(2))
	assert.False(t, c.Satisfied(3))
}

func TestLedger_SnapshotCopiesAccounts(t *testing.T) {
	l := NewLedger(testPlan(t))
	l.ApplyContribution(LP, fin.MustParse("500"), jan(1))

	s := l.Snapshot()
	l.accounts[LP][0].Contributed = decimal.Zero

	require.Len(t, s.Accounts[LP], 3)
	assert.True(t, s.Accounts[LP][0].Contributed.Equal(fin.MustParse("500")))
	assert.Equal(t, []bool{false, false, false}, s.SatisfiedTiers)
}

func TestLedger_CheckBalancesRejectsNegative(t *testing.T) {
	l := NewLedger(testPlan(t))
	l.accounts[GP][1].Contributed = fin.MustParse("-0.01")

	err := l.checkBalances(7)
	require.Error(t, err)

	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 7, be.PeriodID)
	assert.Equal(t, GP, be.Partner)
	assert.Equal(t, 2, be.Tier)
}
