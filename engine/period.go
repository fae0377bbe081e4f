/*
period.go - Pay-period boundary calculation

PURPOSE:
  Determines the start of the current pay period for a user, and from it
  the elapsed working time that earnings accrue over. Earnings are always
  computed for the CURRENT period only; the balance resets to zero at each
  period boundary because advances are against this period's accrued wages.

PERIOD POLICIES:
  AnchorCalendarMonth (default):
    Period start = first calendar day of the month containing `now`.

  AnchorPayrollDay:
    Period runs from the employer's previous payroll day to the next.
    A distinct configuration option, materially different near month
    boundaries.

SEE ALSO:
  - earnings.go: Consumes ElapsedWorkingDays
*/
package engine

import "time"

// =============================================================================
// PERIOD POLICY - How pay-period boundaries are anchored
// =============================================================================

type PeriodAnchor string

const (
	AnchorCalendarMonth PeriodAnchor = "calendar_month"
	AnchorPayrollDay    PeriodAnchor = "payroll_day"
)

type PeriodPolicy struct {
	Anchor PeriodAnchor
}

func DefaultPeriodPolicy() PeriodPolicy {
	return PeriodPolicy{Anchor: AnchorCalendarMonth}
}

// =============================================================================
// PERIOD CALCULATION
// =============================================================================

// PeriodStart returns the start of the pay period containing now.
// The payroll-day anchor clamps the employer's payroll day into the
// month (a payrollDay of 31 in February anchors to Feb 28/29).
func (p PeriodPolicy) PeriodStart(now time.Time, employer Employer) time.Time {
	now = now.UTC()

	switch p.Anchor {
	case AnchorPayrollDay:
		day := clampDayToMonth(now.Year(), now.Month(), employer.PayrollDay)
		anchor := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
		if now.Before(anchor) {
			prev := now.AddDate(0, -1, 0)
			day = clampDayToMonth(prev.Year(), prev.Month(), employer.PayrollDay)
			anchor = time.Date(prev.Year(), prev.Month(), day, 0, 0, 0, 0, time.UTC)
		}
		return anchor

	default: // AnchorCalendarMonth
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// ElapsedWorkingDays counts whole calendar days between periodStart and now.
// Returns 0 if now precedes periodStart.
func ElapsedWorkingDays(now, periodStart time.Time) int {
	start := startOfDay(periodStart)
	end := startOfDay(now)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clampDayToMonth(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}
