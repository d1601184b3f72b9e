/*
ledger.go - Per-{partner, tier} capital accounts carried across periods

PURPOSE:
  The Ledger is the stateful heart of the engine: running balances for each
  partner in each tier, the dated flow history needed for IRR tests, and the
  cumulative totals behind equity-multiple and catch-up arithmetic.

CRITICAL INVARIANTS:
  1. Contributed >= 0 and AccruedUnpaid >= 0 at all times
  2. Contributions enter TIER 1 ONLY (the bottom of the stack)
  3. The ledger is mutated exactly once per period, in chronological order
  4. A satisfied hurdle tier stays satisfied - principal returned and profit
     hurdles met never reappear as new capacity

REPLAYABILITY:
  The ledger is an explicit value threaded through ProcessPeriod calls, not
  hidden engine state. Clone gives a deep copy, so a run is resumable and
  replayable from any period boundary.

SEE ALSO:
  - engine.go: the only mutator
  - result.go: immutable snapshots emitted per period
*/
package waterfall

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/waterfall-engine/fin"
)

// =============================================================================
// ACCOUNT - One ledger cell per {partner, tier}
// =============================================================================

// Account is the capital account for one partner in one tier.
type Account struct {
	// Contributed is principal outstanding; it decreases as repaid.
	Contributed decimal.Decimal `json:"contributed"`

	// AccruedUnpaid is preferred return accrued but not yet distributed.
	// Only tier 1 accrues.
	AccruedUnpaid decimal.Decimal `json:"accrued_unpaid"`

	// CumulativeDistributed is everything paid out of this cell.
	CumulativeDistributed decimal.Decimal `json:"cumulative_distributed"`
}

// Outstanding is principal plus accrued preferred still owed.
func (a Account) Outstanding() decimal.Decimal {
	return a.Contributed.Add(a.AccruedUnpaid)
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger carries all per-period state forward. Created empty at period 0,
// never shared across concurrent runs.
type Ledger struct {
	accounts map[Partner][]Account // indexed by tier number - 1

	// Dated flow history per partner: contributions negative,
	// distributions positive. Input to the XIRR solver and FV hurdles.
	flows map[Partner][]fin.Flow

	totalContributed  map[Partner]decimal.Decimal
	totalDistributed  map[Partner]decimal.Decimal
	principalReturned map[Partner]decimal.Decimal
	profitDistributed map[Partner]decimal.Decimal

	// satisfied is monotonic per hurdle tier: once true, never false again.
	satisfied []bool

	// lastDate is the prior period's date; accrual intervals start here.
	lastDate time.Time
	started  bool
}

// NewLedger returns a zeroed ledger sized for the plan's tier ladder.
func NewLedger(plan *Plan) *Ledger {
	l := &Ledger{
		accounts:          make(map[Partner][]Account, len(Partners)),
		flows:             make(map[Partner][]fin.Flow, len(Partners)),
		totalContributed:  make(map[Partner]decimal.Decimal, len(Partners)),
		totalDistributed:  make(map[Partner]decimal.Decimal, len(Partners)),
		principalReturned: make(map[Partner]decimal.Decimal, len(Partners)),
		profitDistributed: make(map[Partner]decimal.Decimal, len(Partners)),
		satisfied:         make([]bool, len(plan.Tiers)),
	}
	for _, p := range Partners {
		l.accounts[p] = make([]Account, len(plan.Tiers))
		l.totalContributed[p] = fin.Zero
		l.totalDistributed[p] = fin.Zero
		l.principalReturned[p] = fin.Zero
		l.profitDistributed[p] = fin.Zero
	}
	return l
}

// Clone returns a deep copy, for replaying from a period boundary.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		accounts:          make(map[Partner][]Account, len(l.accounts)),
		flows:             make(map[Partner][]fin.Flow, len(l.flows)),
		totalContributed:  make(map[Partner]decimal.Decimal, len(l.totalContributed)),
		totalDistributed:  make(map[Partner]decimal.Decimal, len(l.totalDistributed)),
		principalReturned: make(map[Partner]decimal.Decimal, len(l.principalReturned)),
		profitDistributed: make(map[Partner]decimal.Decimal, len(l.profitDistributed)),
		satisfied:         append([]bool(nil), l.satisfied...),
		lastDate:          l.lastDate,
		started:           l.started,
	}
	for p, accs := range l.accounts {
		c.accounts[p] = append([]Account(nil), accs...)
	}
	for p, fl := range l.flows {
		c.flows[p] = append([]fin.Flow(nil), fl...)
	}
	for p := range l.totalContributed {
		c.totalContributed[p] = l.totalContributed[p]
		c.totalDistributed[p] = l.totalDistributed[p]
		c.principalReturned[p] = l.principalReturned[p]
		c.profitDistributed[p] = l.profitDistributed[p]
	}
	return c
}

// =============================================================================
// MUTATIONS (called by the engine, in period order)
// =============================================================================

// ApplyContribution records a capital contribution. It increases the
// partner's Contributed balance in tier 1 only - contributions always enter
// at the bottom of the stack.
func (l *Ledger) ApplyContribution(p Partner, amount decimal.Decimal, date time.Time) {
	acc := &l.accounts[p][0]
	acc.Contributed = acc.Contributed.Add(amount)
	l.totalContributed[p] = l.totalContributed[p].Add(amount)
	l.flows[p] = append(l.flows[p], fin.Flow{Date: date, Amount: amount.Neg()})
}

// accruePreferred adds compounded preferred return on the partner's tier-1
// outstanding balance (principal + unpaid preferred) for [from, to].
func (l *Ledger) accruePreferred(p Partner, rate decimal.Decimal, from, to time.Time) decimal.Decimal {
	acc := &l.accounts[p][0]
	growth := fin.Accrue(acc.Outstanding(), rate, from, to)
	acc.AccruedUnpaid = acc.AccruedUnpaid.Add(growth)
	return growth
}

// recordDistribution pays amount to the partner out of the given tier.
// principalPortion is the slice of amount that returns tier-1 principal;
// the rest is profit for catch-up accounting.
func (l *Ledger) recordDistribution(p Partner, tierIdx int, amount, principalPortion decimal.Decimal, date time.Time) {
	if amount.IsZero() {
		return
	}
	acc := &l.accounts[p][tierIdx]
	acc.CumulativeDistributed = acc.CumulativeDistributed.Add(amount)
	l.totalDistributed[p] = l.totalDistributed[p].Add(amount)
	l.principalReturned[p] = l.principalReturned[p].Add(principalPortion)
	l.profitDistributed[p] = l.profitDistributed[p].Add(amount.Sub(principalPortion))
	l.flows[p] = append(l.flows[p], fin.Flow{Date: date, Amount: amount})
}

// markSatisfied latches a hurdle tier as met. Monotonic by construction.
func (l *Ledger) markSatisfied(tierIdx int) { l.satisfied[tierIdx] = true }

// advance moves the accrual reference date to the just-processed period.
func (l *Ledger) advance(date time.Time) {
	l.lastDate = date
	l.started = true
}

// =============================================================================
// READS
// =============================================================================

// Account returns a copy of the {partner, tier} cell (tier is 1-based).
func (l *Ledger) Account(p Partner, tier int) Account {
	return l.accounts[p][tier-1]
}

// Flows returns the partner's dated flow history (contributions negative).
func (l *Ledger) Flows(p Partner) []fin.Flow {
	return append([]fin.Flow(nil), l.flows[p]...)
}

// TotalContributed returns the partner's lifetime contributions.
func (l *Ledger) TotalContributed(p Partner) decimal.Decimal {
	return l.totalContributed[p]
}

// TotalDistributed returns the partner's lifetime distributions.
func (l *Ledger) TotalDistributed(p Partner) decimal.Decimal {
	return l.totalDistributed[p]
}

// Satisfied reports whether the hurdle tier (1-based) has been latched met.
func (l *Ledger) Satisfied(tier int) bool { return l.satisfied[tier-1] }

// totalProfit is all profit distributed so far across both partners.
func (l *Ledger) totalProfit() decimal.Decimal {
	return l.profitDistributed[LP].Add(l.profitDistributed[GP])
}

// totalGross is all distributions so far across both partners.
func (l *Ledger) totalGross() decimal.Decimal {
	return l.totalDistributed[LP].Add(l.totalDistributed[GP])
}

// checkBalances enforces the non-negativity invariant after a period.
func (l *Ledger) checkBalances(periodID int) error {
	for _, p := range Partners {
		for i, acc := range l.accounts[p] {
			if acc.Contributed.IsNegative() {
				return &BalanceError{PeriodID: periodID, Partner: p, Tier: i + 1, Balance: acc.Contributed}
			}
			if acc.AccruedUnpaid.IsNegative() {
				return &BalanceError{PeriodID: periodID, Partner: p, Tier: i + 1, Balance: acc.AccruedUnpaid}
			}
		}
	}
	return nil
}

// =============================================================================
// SNAPSHOT - Frozen ledger state for audit
// =============================================================================

// LedgerSnapshot is a deep, read-only copy of the ledger state after a
// period, embedded in PeriodResult for audit.
type LedgerSnapshot struct {
	Accounts       map[Partner][]Account `json:"accounts"`
	SatisfiedTiers []bool                `json:"satisfied_tiers"`
}

// Snapshot captures the current account state.
func (l *Ledger) Snapshot() LedgerSnapshot {
	s := LedgerSnapshot{
		Accounts:       make(map[Partner][]Account, len(l.accounts)),
		SatisfiedTiers: append([]bool(nil), l.satisfied...),
	}
	for p, accs := range l.accounts {
		s.Accounts[p] = append([]Account(nil), accs...)
	}
	return s
}
