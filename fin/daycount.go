package fin

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY COUNT - actual/365, calendar-day subtraction
// =============================================================================

// DaysPerYear is the actual/365 denominator. Not 360, not 30/360: the
// reference spreadsheet model uses actual/365 and results must match it.
var DaysPerYear = decimal.NewFromInt(365)

// DaysBetween returns the calendar-day difference to - from.
// Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	f := midnightUTC(from)
	t := midnightUTC(to)
	return int(t.Sub(f).Hours() / 24)
}

// YearFraction returns DaysBetween(from, to)/365 as an exact decimal.
func YearFraction(from, to time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(DaysBetween(from, to))).Div(DaysPerYear)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date is a shorthand constructor for a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
