package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testEmployer() engine.Employer {
	return engine.Employer{
		ID:         "emp-acme",
		Name:       "Acme Holdings",
		PayrollDay: 25,
		AdvanceCap: decimal.NewFromFloat(0.25),
		FeeStructure: engine.FeeStructure{
			Flat:       engine.NewMoney(25),
			Percentage: decimal.NewFromFloat(0.01),
			Max:        engine.NewMoney(60),
		},
	}
}

func testUser() engine.User {
	return engine.User{
		ID:                     "user-thandi",
		EmployerID:             "emp-acme",
		HourlyRate:             decimal.NewFromInt(150),
		IsFullTime:             true,
		PreferredPaymentMethod: engine.PaymentEFT,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// PERIOD CALCULATION
// =============================================================================

func TestPeriodStart_CalendarMonth(t *testing.T) {
	// GIVEN: The default calendar-month anchor
	// WHEN: Now is mid-month
	// THEN: Period starts on the 1st of that month

	policy := engine.DefaultPeriodPolicy()
	start := policy.PeriodStart(date(2025, time.March, 17), testEmployer())
	assert.Equal(t, date(2025, time.March, 1), start)
}

func TestPeriodStart_PayrollDayAnchor(t *testing.T) {
	employer := testEmployer() // payroll day 25
	policy := engine.PeriodPolicy{Anchor: engine.AnchorPayrollDay}

	// After this month's payroll day: period started on the 25th
	start := policy.PeriodStart(date(2025, time.March, 28), employer)
	assert.Equal(t, date(2025, time.March, 25), start)

	// Before this month's payroll day: period started on last month's 25th
	start = policy.PeriodStart(date(2025, time.March, 10), employer)
	assert.Equal(t, date(2025, time.February, 25), start)
}

func TestPeriodStart_PayrollDayClampedToShortMonth(t *testing.T) {
	// GIVEN: An employer paying on the 31st
	// WHEN: The period is anchored in February
	// THEN: The anchor clamps to the last day of February

	employer := testEmployer()
	employer.PayrollDay = 31
	policy := engine.PeriodPolicy{Anchor: engine.AnchorPayrollDay}

	start := policy.PeriodStart(date(2025, time.March, 2), employer)
	assert.Equal(t, date(2025, time.February, 28), start)
}

func TestElapsedWorkingDays(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start time.Time
		want  int
	}{
		{"same day", date(2025, time.March, 1), date(2025, time.March, 1), 0},
		{"ten days in", date(2025, time.March, 11), date(2025, time.March, 1), 10},
		{"now precedes start", date(2025, time.February, 20), date(2025, time.March, 1), 0},
		{"ignores time of day", date(2025, time.March, 2).Add(23 * time.Hour), date(2025, time.March, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ElapsedWorkingDays(tt.now, tt.start))
		})
	}
}

// =============================================================================
// EARNINGS ENGINE
// =============================================================================

func TestEarnedToDate_ReferenceExample(t *testing.T) {
	// GIVEN: hourlyRate = 150, 10 elapsed days
	// THEN: earnedToDate = 10 * 8 * 150 = 12000, ceiling = 3000

	earnings := engine.NewEarnings(engine.DefaultPeriodPolicy())
	now := date(2025, time.March, 11) // 10 whole days since March 1

	earned := earnings.EarnedToDate(testUser(), testEmployer(), now)
	assert.True(t, earned.Equal(engine.NewMoney(12000)), "earned %s", earned)

	ceiling := earnings.AdvanceableCeiling(testUser(), testEmployer(), now)
	assert.True(t, ceiling.Equal(engine.NewMoney(3000)), "ceiling %s", ceiling)
}

func TestEarnedToDate_MonotonicWithinPeriod(t *testing.T) {
	// GIVEN: now1 < now2 within the same pay period
	// THEN: earnedToDate(now1) <= earnedToDate(now2)

	earnings := engine.NewEarnings(engine.DefaultPeriodPolicy())
	user, employer := testUser(), testEmployer()

	prev := engine.ZeroMoney()
	for day := 1; day <= 31; day++ {
		earned := earnings.EarnedToDate(user, employer, date(2025, time.March, day))
		assert.False(t, earned.LessThan(prev),
			"earnings decreased on day %d: %s < %s", day, earned, prev)
		prev = earned
	}
}

func TestEarnedToDate_ResetsAtPeriodBoundary(t *testing.T) {
	// Advances are against the current period's accrued earnings only,
	// so the balance resets to zero on the first of the next month.

	earnings := engine.NewEarnings(engine.DefaultPeriodPolicy())

	endOfMarch := earnings.EarnedToDate(testUser(), testEmployer(), date(2025, time.March, 31))
	assert.True(t, endOfMarch.IsPositive())

	firstOfApril := earnings.EarnedToDate(testUser(), testEmployer(), date(2025, time.April, 1))
	assert.True(t, firstOfApril.IsZero(), "expected reset, got %s", firstOfApril)
}

func TestAdvanceableCeiling_NeverNegative(t *testing.T) {
	earnings := engine.NewEarnings(engine.DefaultPeriodPolicy())

	// Period start is in the future relative to now: zero, not negative.
	ceiling := earnings.AdvanceableCeiling(testUser(), testEmployer(), date(2025, time.March, 1))
	assert.False(t, ceiling.IsNegative())
	assert.True(t, ceiling.IsZero())
}

// =============================================================================
// FEE CALCULATOR
// =============================================================================

func TestComputeFee_ReferenceExample(t *testing.T) {
	// GIVEN: feeStructure {flat: 25, percentage: 0.01, max: 60}
	// WHEN: amount = 500
	// THEN: fee = min(25 + 5, 60) = 30, total repay = 530

	fee, err := engine.ComputeFee(engine.NewMoney(500), testEmployer().FeeStructure)
	require.NoError(t, err)
	assert.True(t, fee.Equal(engine.NewMoney(30)), "fee %s", fee)

	tx := engine.Transaction{Amount: engine.NewMoney(500), Fee: fee}
	assert.True(t, tx.TotalRepayable().Equal(engine.NewMoney(530)))
}

func TestComputeFee_CappedAtMax(t *testing.T) {
	// 25 + 10000*0.01 = 125, capped at 60
	fee, err := engine.ComputeFee(engine.NewMoney(10000), testEmployer().FeeStructure)
	require.NoError(t, err)
	assert.True(t, fee.Equal(engine.NewMoney(60)), "fee %s", fee)
}

func TestComputeFee_InvalidAmount(t *testing.T) {
	// Zero or negative amounts fail with ErrInvalidAmount, not a zero fee.
	for _, amount := range []engine.Money{engine.ZeroMoney(), engine.NewMoney(-5)} {
		_, err := engine.ComputeFee(amount, testEmployer().FeeStructure)
		assert.ErrorIs(t, err, engine.ErrInvalidAmount)
	}
}

func TestComputeFee_BoundsHoldAcrossAmounts(t *testing.T) {
	// For all amount > 0: flat <= fee <= max (when percentage >= 0).
	fs := testEmployer().FeeStructure

	for _, amount := range []float64{0.01, 1, 50, 500, 3499.99, 3500, 100000} {
		fee, err := engine.ComputeFee(engine.NewMoney(amount), fs)
		require.NoError(t, err)
		assert.False(t, fee.GreaterThan(fs.Max), "amount %v: fee %s above max", amount, fee)
		assert.False(t, fee.LessThan(fs.Flat), "amount %v: fee %s below flat", amount, fee)
	}
}

// =============================================================================
// TYPE INVARIANTS
// =============================================================================

func TestValidStatusTransition(t *testing.T) {
	assert.True(t, engine.ValidStatusTransition(engine.StatusPending, engine.StatusApproved))
	assert.True(t, engine.ValidStatusTransition(engine.StatusPending, engine.StatusFailed))
	assert.True(t, engine.ValidStatusTransition(engine.StatusApproved, engine.StatusCompleted))

	// Completed and failed are terminal.
	assert.False(t, engine.ValidStatusTransition(engine.StatusCompleted, engine.StatusPending))
	assert.False(t, engine.ValidStatusTransition(engine.StatusFailed, engine.StatusApproved))
}

func TestValidWellnessScore(t *testing.T) {
	assert.True(t, engine.ValidWellnessScore(0))
	assert.True(t, engine.ValidWellnessScore(850))
	assert.False(t, engine.ValidWellnessScore(-1))
	assert.False(t, engine.ValidWellnessScore(851))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, engine.ValidPaymentMethod(engine.PaymentInstant))
	assert.True(t, engine.ValidPaymentMethod(engine.PaymentEFT))
	assert.True(t, engine.ValidPaymentMethod(engine.PaymentEWallet))
	assert.False(t, engine.ValidPaymentMethod("cash"))
}
