/*
Package engine provides the core earned-wage-access domain model.

PURPOSE:
  This package contains the types and algorithms that turn a user's
  employment facts (hourly rate, employer policy, elapsed pay-period time)
  into an advanceable amount and a fee, and defines the transaction and
  voucher records those calculations produce.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency quantity backed by decimal.Decimal
  - User/Employer: Employment facts and the policy applied to them
  - Transaction: An immutable ledger entry (only status transitions)
  - Voucher/VoucherPurchase: Marketplace catalog entry and purchase receipt

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors on money
  2. Immutability: Transactions are never edited; only status transitions
  3. Type Safety: Strong typing for IDs prevents mixing user/employer IDs
  4. Policy over code: advance caps and fee structures live on the Employer

USAGE:
  earnings := engine.NewEarnings(engine.DefaultPeriodPolicy())
  ceiling := earnings.AdvanceableCeiling(user, employer, now)
  fee, err := engine.ComputeFee(engine.NewMoney(500), employer.FeeStructure)

SEE ALSO:
  - period.go: Pay-period boundary calculation
  - earnings.go: Earned-to-date and ceiling calculation
  - fees.go: Fee calculation
  - errors.go: Error taxonomy
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency quantity (single implicit currency for this system)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money    { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int) Money { return Money{Value: decimal.NewFromInt(int64(value))} }
func ZeroMoney() Money                { return Money{Value: decimal.Zero} }

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(b Money) Money           { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money           { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool    { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool       { return m.Value.LessThan(b.Value) }
func (m Money) Equal(b Money) bool          { return m.Value.Equal(b.Value) }
func (m Money) Float64() float64            { f, _ := m.Value.Float64(); return f }
func (m Money) String() string              { return m.Value.StringFixed(2) }

func (m Money) Min(b Money) Money {
	if m.LessThan(b) {
		return m
	}
	return b
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type EmployerID string
type TransactionID string
type VoucherID string

// =============================================================================
// USER - Employment facts for one employee
// =============================================================================

type PaymentMethod string

const (
	PaymentInstant PaymentMethod = "instant"
	PaymentEFT     PaymentMethod = "eft"
	PaymentEWallet PaymentMethod = "ewallet"
)

// ValidPaymentMethod reports whether m is one of the supported methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentInstant, PaymentEFT, PaymentEWallet:
		return true
	}
	return false
}

// MaxWellnessScore is the upper bound of the financial wellness scale.
const MaxWellnessScore = 850

type User struct {
	ID         UserID
	Name       string
	Email      string
	EmployerID EmployerID

	HourlyRate decimal.Decimal // must be > 0
	StartDate  time.Time
	IsFullTime bool

	// BiometricEnabled gates the step-up authentication factor on advances.
	BiometricEnabled bool

	PreferredPaymentMethod PaymentMethod

	// WellnessScore is 0..MaxWellnessScore when present.
	WellnessScore *int

	CreatedAt time.Time
}

// ValidWellnessScore reports whether a score is within the 0..850 scale.
func ValidWellnessScore(score int) bool {
	return score >= 0 && score <= MaxWellnessScore
}

// =============================================================================
// EMPLOYER - The policy applied to its employees' advances
// =============================================================================

// FeeStructure defines how an advance fee is computed:
// fee = min(Flat + amount*Percentage, Max).
type FeeStructure struct {
	Flat       Money           // >= 0
	Percentage decimal.Decimal // 0..1
	Max        Money           // >= 0, hard cap on any single fee
}

type Employer struct {
	ID   EmployerID
	Name string

	// PayrollDay is the day of month (1-31) wages are disbursed.
	PayrollDay int

	// AdvanceCap is the fraction (0..1) of earned-to-date wages that
	// may be advanced.
	AdvanceCap decimal.Decimal

	FeeStructure FeeStructure

	CreatedAt time.Time
}

// =============================================================================
// TRANSACTION - Append-only ledger entry; only status transitions
// =============================================================================

type TransactionType string

const (
	TxAdvance   TransactionType = "advance"   // Cash advance against earned wages
	TxRepayment TransactionType = "repayment" // Payroll-day recovery of advance + fee
	TxVoucher   TransactionType = "voucher"   // Marketplace voucher purchase
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// ValidStatusTransition reports whether a status change is allowed.
// Transactions are otherwise immutable.
func ValidStatusTransition(from, to TransactionStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusCompleted || to == StatusFailed
	case StatusApproved:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

type Transaction struct {
	ID            TransactionID
	UserID        UserID
	Type          TransactionType
	Status        TransactionStatus
	Amount        Money
	Fee           Money
	PaymentMethod PaymentMethod

	// VoucherDetails is set only for TxVoucher transactions.
	VoucherDetails *VoucherPurchase

	// ReferenceID links repayments to the period they settle, and
	// voucher transactions to the voucher purchased.
	ReferenceID string

	CreatedAt time.Time
}

// TotalRepayable is the amount recovered on payroll day: amount + fee.
func (t Transaction) TotalRepayable() Money {
	return t.Amount.Add(t.Fee)
}

// =============================================================================
// VOUCHER - Marketplace catalog entry
// =============================================================================

type Voucher struct {
	ID       VoucherID
	Provider string
	Name     string
	Category string

	Price Money

	// Discount is the fraction (0..1) off the face value.
	Discount decimal.Decimal

	// Stock is a mutable counter, decremented on purchase, never negative.
	// Mutation is serialized per voucher by the marketplace/store.
	Stock int
}

// VoucherPurchase is the receipt embedded in a voucher Transaction.
// Immutable once created.
type VoucherPurchase struct {
	VoucherID  VoucherID
	Code       string
	ExpiryDate time.Time
}
