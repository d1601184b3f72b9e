/*
errors.go - Error taxonomy for the waterfall engine

PURPOSE:
  All engine error types in one place, split along the lifecycle:
  1. Configuration errors - rejected at NewPlan, before any period runs
  2. Input errors - rejected before processing begins
  3. Processing errors - invariant violations that identify the period

  Non-convergent IRR is NOT an error anywhere in this package: it is the
  valid value decimal.NullDecimal{Valid: false}.

USAGE:
  if waterfall.IsConfigError(err) { ... reject the plan ... }
  var oe *waterfall.DistributionOverflowError
  if errors.As(err, &oe) { ... oe.PeriodID ... }
*/
package waterfall

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// Configuration errors (construction time).
	ErrInvalidConfig     = errors.New("invalid waterfall configuration")
	ErrTierCountMismatch = errors.New("num_tiers does not match tier list")
	ErrSplitSum          = errors.New("tier splits do not sum to 100%")
	ErrSplitDisagreement = errors.New("supplied splits disagree with promote-derived splits")
	ErrMissingHurdleRate = errors.New("hurdle rate required for non-residual tier")
	ErrResidualNotLast   = errors.New("residual tier must be the final tier")
	ErrInvalidOwnership  = errors.New("lp_ownership must be in (0, 1)")
	ErrCatchUpDisabled   = errors.New("catch-up tier configured but gp_catch_up disabled")

	// Input errors (before processing).
	ErrNoCashFlows = errors.New("cash-flow list is empty")
	ErrPeriodOrder = errors.New("period_id not strictly increasing")
	ErrDateOrder   = errors.New("cash-flow dates not non-decreasing")

	// Processing errors (invariant violations, carry the period).
	ErrNegativeBalance      = errors.New("capital account balance went negative")
	ErrDistributionOverflow = errors.New("distribution exceeds total tier capacity")
	ErrZeroContributions    = errors.New("equity multiple undefined: zero contributions")
)

// =============================================================================
// STRUCTURED ERRORS - Carry period/partner context
// =============================================================================

// ConfigError annotates a configuration sentinel with the offending tier.
type ConfigError struct {
	TierNumber int // 0 when the error is settings-level
	Field      string
	Err        error
}

func (e *ConfigError) Error() string {
	if e.TierNumber > 0 {
		return fmt.Sprintf("tier %d: %s: %v", e.TierNumber, e.Field, e.Err)
	}
	return fmt.Sprintf("settings: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InputError identifies the offending cash-flow index.
type InputError struct {
	Index int
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cash flow %d: %v", e.Index, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// DistributionOverflowError reports cash left over after the tier ladder was
// exhausted - an undefined-tier overflow that must never be absorbed.
type DistributionOverflowError struct {
	PeriodID  int
	Remaining decimal.Decimal
}

func (e *DistributionOverflowError) Error() string {
	return fmt.Sprintf("period %d: %v undistributed after final tier", e.PeriodID, e.Remaining)
}

func (e *DistributionOverflowError) Unwrap() error { return ErrDistributionOverflow }

// BalanceError reports a negative capital-account balance.
type BalanceError struct {
	PeriodID int
	Partner  Partner
	Tier     int
	Balance  decimal.Decimal
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("period %d: %s tier %d balance %v is negative",
		e.PeriodID, e.Partner, e.Tier, e.Balance)
}

func (e *BalanceError) Unwrap() error { return ErrNegativeBalance }

// SummaryError reports an aggregation failure for one partner.
type SummaryError struct {
	Partner Partner
	Err     error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summary for %s: %v", e.Partner, e.Err)
}

func (e *SummaryError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError reports whether err was raised at construction time.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrTierCountMismatch) ||
		errors.Is(err, ErrSplitSum) ||
		errors.Is(err, ErrSplitDisagreement) ||
		errors.Is(err, ErrMissingHurdleRate) ||
		errors.Is(err, ErrResidualNotLast) ||
		errors.Is(err, ErrInvalidOwnership) ||
		errors.Is(err, ErrCatchUpDisabled)
}

// IsInputError reports whether err was raised by cash-flow validation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoCashFlows) ||
		errors.Is(err, ErrPeriodOrder) ||
		errors.Is(err, ErrDateOrder)
}
