/*
engine.go - The period processor / waterfall allocator

PURPOSE:
  The per-period state machine (the core algorithm of this package):

  1. CLASSIFY - negative net flow is a capital call: split it by ownership,
     book it into tier 1, emit a zero-distribution result, stop.
  2. ACCRUE   - non-negative flow: compound preferred return onto tier-1
     outstanding balances for the interval since the prior period.
  3. WALK     - ascending tiers: tier 1 pays return of capital + accrued
     preferred; hurdle tiers pay min(available, capacity) at the tier split,
     with the GP catch-up override; the residual tier absorbs the rest.
  4. CARRY    - reduce available cash and tier balances; unpaid tiers keep
     their capacity for future periods.
  5. EMIT     - per-tier LP/GP amounts, ledger snapshot, running IRRs.

CONSERVATION:
  Every split assigns one side by multiplication and the other as the exact
  remainder, so distributed totals equal the incoming flow to the fixed-point
  scale - no money created or destroyed by rounding.

CONCURRENCY:
  Periods are strictly sequential (the ledger carries state forward).
  Independent runs are freely parallel; a Plan is immutable and shareable,
  each run owns its Ledger.

SEE ALSO:
  - config.go: hurdle shortfall functions selected at plan construction
  - ledger.go: the state this machine mutates
*/
package waterfall

import (
	"github.com/shopspring/decimal"
	"github.com/warp/waterfall-engine/fin"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine processes cash flows against an immutable plan. Engines hold no
// per-run state and may be shared.
type Engine struct {
	plan *Plan
}

// NewEngine wraps a validated plan.
func NewEngine(plan *Plan) *Engine {
	return &Engine{plan: plan}
}

// Calculate validates the plan's cash-flow inputs, processes every period in
// chronological order, and aggregates partner summaries. It is a pure,
// deterministic function of (plan, flows).
func Calculate(settings WaterfallSettings, tiers []TierConfig, flows []CashFlow) (*WaterfallResult, error) {
	plan, err := NewPlan(settings, tiers)
	if err != nil {
		return nil, err
	}
	return NewEngine(plan).Calculate(flows)
}

// Calculate runs the full waterfall over the flow sequence.
func (e *Engine) Calculate(flows []CashFlow) (*WaterfallResult, error) {
	if err := validateFlows(flows); err != nil {
		return nil, err
	}

	ledger := NewLedger(e.plan)
	periods := make([]PeriodResult, 0, len(flows))
	for _, cf := range flows {
		pr, err := e.ProcessPeriod(ledger, cf)
		if err != nil {
			return nil, err
		}
		periods = append(periods, pr)
	}

	lp, err := summarize(ledger, LP)
	if err != nil {
		return nil, err
	}
	gp, err := summarize(ledger, GP)
	if err != nil {
		return nil, err
	}
	return &WaterfallResult{Periods: periods, LP: lp, GP: gp}, nil
}

func validateFlows(flows []CashFlow) error {
	if len(flows) == 0 {
		return &InputError{Index: 0, Err: ErrNoCashFlows}
	}
	for i, cf := range flows {
		if cf.PeriodID < 1 {
			return &InputError{Index: i, Err: ErrPeriodOrder}
		}
		if i == 0 {
			continue
		}
		if cf.PeriodID <= flows[i-1].PeriodID {
			return &InputError{Index: i, Err: ErrPeriodOrder}
		}
		if cf.Date.Before(flows[i-1].Date) {
			return &InputError{Index: i, Err: ErrDateOrder}
		}
	}
	return nil
}

// =============================================================================
// PERIOD PROCESSOR
// =============================================================================

// ProcessPeriod applies one period's net cash flow to the ledger and returns
// the immutable result. Exported so hosts can resume or replay a run from
// any period boundary; callers must preserve chronological order themselves.
func (e *Engine) ProcessPeriod(l *Ledger, cf CashFlow) (PeriodResult, error) {
	pr := PeriodResult{
		PeriodID:       cf.PeriodID,
		Date:           cf.Date,
		NetCashFlow:    cf.Amount,
		LPContribution: fin.Zero,
		GPContribution: fin.Zero,
		Tiers:          emptyTierRows(e.plan),
	}

	if cf.Amount.IsNegative() {
		e.applyCapitalCall(l, cf, &pr)
	} else {
		// Accrual bookkeeping happens on every non-negative period, even a
		// zero flow between two distributions.
		e.accrueStep(l, cf)
		if err := e.walkTiers(l, cf, &pr); err != nil {
			return PeriodResult{}, err
		}
	}

	l.advance(cf.Date)
	if err := l.checkBalances(cf.PeriodID); err != nil {
		return PeriodResult{}, err
	}

	pr.LPIRRToDate = fin.XIRR(l.Flows(LP))
	pr.GPIRRToDate = fin.XIRR(l.Flows(GP))
	pr.Ledger = l.Snapshot()
	return pr, nil
}

func emptyTierRows(plan *Plan) []TierDistribution {
	rows := make([]TierDistribution, len(plan.Tiers))
	for i, t := range plan.Tiers {
		rows[i] = TierDistribution{Tier: t.Number, Name: t.Name, LPDist: fin.Zero, GPDist: fin.Zero}
	}
	return rows
}

// applyCapitalCall splits a negative flow by ownership and books it into
// tier 1. No waterfall walk happens on a capital call.
func (e *Engine) applyCapitalCall(l *Ledger, cf CashFlow, pr *PeriodResult) {
	call := cf.Amount.Abs()
	lpPart := call.Mul(e.plan.Settings.OwnershipOf(LP))
	gpPart := call.Sub(lpPart) // remainder, so the split conserves exactly

	l.ApplyContribution(LP, lpPart, cf.Date)
	l.ApplyContribution(GP, gpPart, cf.Date)
	pr.LPContribution = lpPart
	pr.GPContribution = gpPart
}

// accrueStep compounds preferred return on tier-1 outstanding balances for
// the interval since the prior period's date. GP accrues only under pari
// passu return of capital.
func (e *Engine) accrueStep(l *Ledger, cf CashFlow) {
	if !l.started {
		return
	}
	rate := e.plan.Settings.PreferredReturnPct
	l.accruePreferred(LP, rate, l.lastDate, cf.Date)
	if e.plan.Settings.ReturnOfCapital == PariPassu {
		l.accruePreferred(GP, rate, l.lastDate, cf.Date)
	}
}

// =============================================================================
// TIER WALK
// =============================================================================

func (e *Engine) walkTiers(l *Ledger, cf CashFlow, pr *PeriodResult) error {
	available := cf.Amount

	for i, tier := range e.plan.Tiers {
		if available.IsZero() {
			break // remaining tiers keep their capacity for future periods
		}

		var lpPaid, gpPaid decimal.Decimal
		switch {
		case i == 0 && tier.HurdleType != HurdleNone:
			lpPaid, gpPaid = e.payPreferredTier(l, cf, available)
		case tier.HurdleType == HurdleNone:
			lpPaid, gpPaid = e.payResidualTier(l, tier, cf, i, available)
		default:
			lpPaid, gpPaid = e.payHurdleTier(l, tier, cf, i, available)
		}

		pr.Tiers[i].LPDist = pr.Tiers[i].LPDist.Add(lpPaid)
		pr.Tiers[i].GPDist = pr.Tiers[i].GPDist.Add(gpPaid)
		available = available.Sub(lpPaid).Sub(gpPaid)
	}

	// Cash left after the final tier is an overflow into an undefined tier:
	// reject, never silently absorb.
	if available.IsPositive() {
		return &DistributionOverflowError{PeriodID: cf.PeriodID, Remaining: available}
	}
	return nil
}

// payPreferredTier services tier 1: return of capital plus accrued preferred.
// Split between partners follows their outstanding balances, not the tier
// split - each partner is owed its own capital back.
func (e *Engine) payPreferredTier(l *Ledger, cf CashFlow, available decimal.Decimal) (lpPaid, gpPaid decimal.Decimal) {
	lpPaid, gpPaid = fin.Zero, fin.Zero

	if e.plan.Settings.ReturnOfCapital == Sequential {
		// Principal strictly before preferred.
		available, lpPaid, gpPaid = e.payTierOneComponent(l, cf, available, principalComponent)
		_, lpPref, gpPref := e.payTierOneComponent(l, cf, available, preferredComponent)
		return lpPaid.Add(lpPref), gpPaid.Add(gpPref)
	}

	// Pari passu: principal and preferred pro-rata together.
	lpOut := l.accounts[LP][0].Outstanding()
	gpOut := l.accounts[GP][0].Outstanding()
	total := lpOut.Add(gpOut)
	if total.IsZero() {
		return lpPaid, gpPaid
	}
	pay := fin.MinMoney(available, total)
	lpPaid = pay.Mul(lpOut).Div(total)
	gpPaid = pay.Sub(lpPaid)

	e.settleTierOne(l, LP, lpPaid, cf)
	e.settleTierOne(l, GP, gpPaid, cf)
	return lpPaid, gpPaid
}

type tierOneComponent int

const (
	principalComponent tierOneComponent = iota
	preferredComponent
)

// payTierOneComponent pays down one component (principal or preferred)
// pro-rata across partners, returning the cash left over.
func (e *Engine) payTierOneComponent(l *Ledger, cf CashFlow, available decimal.Decimal, comp tierOneComponent) (left, lpPaid, gpPaid decimal.Decimal) {
	balance := func(p Partner) decimal.Decimal {
		acc := l.accounts[p][0]
		if comp == principalComponent {
			return acc.Contributed
		}
		return acc.AccruedUnpaid
	}

	total := balance(LP).Add(balance(GP))
	if total.IsZero() || available.IsZero() {
		return available, fin.Zero, fin.Zero
	}
	pay := fin.MinMoney(available, total)
	lpPaid = pay.Mul(balance(LP)).Div(total)
	gpPaid = pay.Sub(lpPaid)

	for _, pp := range []struct {
		p   Partner
		amt decimal.Decimal
	}{{LP, lpPaid}, {GP, gpPaid}} {
		acc := &l.accounts[pp.p][0]
		principal := fin.Zero
		if comp == principalComponent {
			principal = fin.MinMoney(pp.amt, acc.Contributed)
			acc.Contributed = fin.ClampFloor(acc.Contributed.Sub(pp.amt), fin.Zero)
		} else {
			acc.AccruedUnpaid = fin.ClampFloor(acc.AccruedUnpaid.Sub(pp.amt), fin.Zero)
		}
		l.recordDistribution(pp.p, 0, pp.amt, principal, cf.Date)
	}
	return available.Sub(pay), lpPaid, gpPaid
}

// settleTierOne applies a pari-passu tier-1 payment to one partner,
// splitting it pro-rata between principal and accrued preferred.
func (e *Engine) settleTierOne(l *Ledger, p Partner, amount decimal.Decimal, cf CashFlow) {
	if amount.IsZero() {
		return
	}
	acc := &l.accounts[p][0]
	out := acc.Outstanding()
	principal := amount
	if !out.IsZero() {
		principal = amount.Mul(acc.Contributed).Div(out)
	}
	principal = fin.MinMoney(principal, acc.Contributed)
	pref := amount.Sub(principal)

	acc.Contributed = fin.ClampFloor(acc.Contributed.Sub(principal), fin.Zero)
	acc.AccruedUnpaid = fin.ClampFloor(acc.AccruedUnpaid.Sub(pref), fin.Zero)
	l.recordDistribution(p, 0, amount, principal, cf.Date)
}

// payHurdleTier services an IRR or equity-multiple tier: capacity is the
// cash needed for both partners to meet the hurdle at the tier split, the
// payment is min(available, capacity), split per the tier - unless this is
// the designated catch-up tier, where the GP takes 100% until its profit
// share reaches the promote target.
func (e *Engine) payHurdleTier(l *Ledger, tier Tier, cf CashFlow, tierIdx int, available decimal.Decimal) (lpPaid, gpPaid decimal.Decimal) {
	lpPaid, gpPaid = fin.Zero, fin.Zero
	if l.Satisfied(tier.Number) {
		return lpPaid, gpPaid
	}

	preCapacity := e.tierCapacity(l, tier, cf)
	if preCapacity.IsZero() {
		// Hurdle already met: latch so it never re-opens.
		l.markSatisfied(tierIdx)
		return lpPaid, gpPaid
	}

	// Catch-up phase: GP takes 100% of the tier's flow until its share of
	// the catch-up basis reaches the promote target.
	if tier.CatchUp && e.plan.Settings.GPCatchUp {
		gpCatch := fin.MinMoney(available, fin.MinMoney(e.catchUpRemaining(l, tier), preCapacity))
		if gpCatch.IsPositive() {
			l.recordDistribution(GP, tierIdx, gpCatch, fin.Zero, cf.Date)
			gpPaid = gpPaid.Add(gpCatch)
			available = available.Sub(gpCatch)
		}
	}

	// Split phase: capacity recomputed after any catch-up, paid at the
	// configured tier split.
	capacity := e.tierCapacity(l, tier, cf)
	pay := fin.MinMoney(available, capacity)
	if pay.IsPositive() {
		lpPart := pay.Mul(tier.LPSplit)
		gpPart := pay.Sub(lpPart)
		l.recordDistribution(LP, tierIdx, lpPart, fin.Zero, cf.Date)
		l.recordDistribution(GP, tierIdx, gpPart, fin.Zero, cf.Date)
		lpPaid = lpPaid.Add(lpPart)
		gpPaid = gpPaid.Add(gpPart)
	}

	if e.tierCapacity(l, tier, cf).IsZero() {
		l.markSatisfied(tierIdx)
	}
	return lpPaid, gpPaid
}

// tierCapacity is the cash needed to satisfy the hurdle for both partners at
// the tier's split. A partner with a zero split can never be served by this
// tier, so it places no requirement on it.
func (e *Engine) tierCapacity(l *Ledger, tier Tier, cf CashFlow) decimal.Decimal {
	capacity := fin.Zero
	for _, p := range Partners {
		split := tier.SplitOf(p)
		if split.IsZero() {
			continue
		}
		short := tier.shortfall(l.flows[p], l.totalContributed[p], l.totalDistributed[p], cf.Date)
		if short.IsPositive() {
			capacity = fin.MaxMoney(capacity, short.Div(split))
		}
	}
	return capacity
}

// catchUpRemaining is the 100%-to-GP amount x that brings the GP's share of
// the chosen basis up to the promote target:
//
//	(gpTaken + x) / (basisTotal + x) = promote
//	x = (promote*basisTotal - gpTaken) / (1 - promote)
func (e *Engine) catchUpRemaining(l *Ledger, tier Tier) decimal.Decimal {
	promote := tier.Promote
	basisTotal, gpTaken := l.totalProfit(), l.profitDistributed[GP]
	if e.plan.Settings.CatchUpBasis == CatchUpOnGross {
		basisTotal, gpTaken = l.totalGross(), l.totalDistributed[GP]
	}

	need := promote.Mul(basisTotal).Sub(gpTaken)
	if !need.IsPositive() {
		return fin.Zero
	}
	denom := fin.One.Sub(promote)
	if !denom.IsPositive() {
		// 100% promote: the GP catch-up never terminates by share.
		return need.Mul(fin.Hundred)
	}
	return need.Div(denom)
}

// payResidualTier absorbs all remaining cash at the tier split. It never
// blocks and never latches.
func (e *Engine) payResidualTier(l *Ledger, tier Tier, cf CashFlow, tierIdx int, available decimal.Decimal) (lpPaid, gpPaid decimal.Decimal) {
	lpPaid = available.Mul(tier.LPSplit)
	gpPaid = available.Sub(lpPaid)
	l.recordDistribution(LP, tierIdx, lpPaid, fin.Zero, cf.Date)
	l.recordDistribution(GP, tierIdx, gpPaid, fin.Zero, cf.Date)
	return lpPaid, gpPaid
}
