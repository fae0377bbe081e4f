/*
earnings.go - Earned-to-date and advanceable ceiling calculation

PURPOSE:
  Converts elapsed pay-period time and an hourly rate into earned-to-date
  wages, and applies the employer's advance cap to produce the advanceable
  ceiling. This is a policy approximation, not timesheet-accurate: every
  elapsed calendar day is assumed to contain AssumedDailyHours of work.

GUARANTEES:
  - Results are always >= 0.
  - EarnedToDate is monotonically non-decreasing in `now` within a period.
  - The balance resets to 0 at each period boundary. This is an explicit
    design choice: advances are against the CURRENT period's accrued
    earnings only.

SEE ALSO:
  - period.go: Pay-period boundaries
  - fees.go: Fee on a requested advance
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssumedDailyHours is the policy approximation of hours worked per
// elapsed calendar day. Not timesheet-accurate.
const AssumedDailyHours = 8

// Earnings computes earned-to-date wages and the advanceable ceiling.
type Earnings struct {
	Period PeriodPolicy
}

func NewEarnings(policy PeriodPolicy) *Earnings {
	return &Earnings{Period: policy}
}

// EarnedToDate returns elapsedDays * AssumedDailyHours * hourlyRate for the
// current pay period.
func (e *Earnings) EarnedToDate(user User, employer Employer, now time.Time) Money {
	start := e.Period.PeriodStart(now, employer)
	days := ElapsedWorkingDays(now, start)

	earned := decimal.NewFromInt(int64(days)).
		Mul(decimal.NewFromInt(AssumedDailyHours)).
		Mul(user.HourlyRate)

	return Money{Value: earned}
}

// AdvanceableCeiling returns earnedToDate * employer.AdvanceCap.
// The ceiling is a function of time, so callers re-check it at the moment
// of approval rather than caching it.
func (e *Earnings) AdvanceableCeiling(user User, employer Employer, now time.Time) Money {
	return e.EarnedToDate(user, employer, now).Mul(employer.AdvanceCap)
}
