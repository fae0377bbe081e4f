/*
fixture.go - In-memory backend with seeded demo data

PURPOSE:
  The fixture keeps the app usable when no real backend is reachable:
  demo login, a seeded voucher catalog, and an in-memory transaction
  ledger. It is also the fallback target of the Resilient wrapper and
  the storage used by most tests.

SEED DATA:
  Two employers with different advance policies, three users (one with
  the step-up factor enabled, one without, one admin), and a small
  voucher catalog. All demo accounts share DemoPassword.
*/
package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/engine"
)

// DemoPassword is the password for all seeded fixture accounts.
const DemoPassword = "payquick-demo"

// TokenMinter issues session tokens at login. Satisfied by auth.Signer.
type TokenMinter interface {
	Mint(userID engine.UserID, role auth.Role) (string, error)
}

// Fixture is an in-memory Backend implementation.
type Fixture struct {
	mu sync.RWMutex

	minter TokenMinter

	users     map[engine.UserID]engine.User
	passwords map[string]string // email -> bcrypt hash
	admins    map[engine.UserID]bool
	employers map[engine.EmployerID]engine.Employer
	vouchers  map[engine.VoucherID]engine.Voucher
	txs       []engine.Transaction
}

// NewFixture returns a fixture seeded with the demo dataset.
func NewFixture(minter TokenMinter) *Fixture {
	f := NewEmptyFixture(minter)
	f.seed()
	return f
}

// NewEmptyFixture returns a fixture with no records. Used by tests that
// want full control over the dataset.
func NewEmptyFixture(minter TokenMinter) *Fixture {
	return &Fixture{
		minter:    minter,
		users:     make(map[engine.UserID]engine.User),
		passwords: make(map[string]string),
		admins:    make(map[engine.UserID]bool),
		employers: make(map[engine.EmployerID]engine.Employer),
		vouchers:  make(map[engine.VoucherID]engine.Voucher),
	}
}

func (f *Fixture) seed() {
	now := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	f.employers["emp-acme"] = engine.Employer{
		ID:         "emp-acme",
		Name:       "Acme Holdings",
		PayrollDay: 25,
		AdvanceCap: decimal.NewFromFloat(0.25),
		FeeStructure: engine.FeeStructure{
			Flat:       engine.NewMoney(25),
			Percentage: decimal.NewFromFloat(0.01),
			Max:        engine.NewMoney(60),
		},
		CreatedAt: now,
	}
	f.employers["emp-borealis"] = engine.Employer{
		ID:         "emp-borealis",
		Name:       "Borealis Logistics",
		PayrollDay: 28,
		AdvanceCap: decimal.NewFromFloat(0.5),
		FeeStructure: engine.FeeStructure{
			Flat:       engine.NewMoney(10),
			Percentage: decimal.NewFromFloat(0.015),
			Max:        engine.NewMoney(80),
		},
		CreatedAt: now,
	}

	score := 640
	f.users["user-thandi"] = engine.User{
		ID:                     "user-thandi",
		Name:                   "Thandi Mokoena",
		Email:                  "thandi@example.com",
		EmployerID:             "emp-acme",
		HourlyRate:             decimal.NewFromInt(150),
		StartDate:              time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
		IsFullTime:             true,
		BiometricEnabled:       true,
		PreferredPaymentMethod: engine.PaymentEFT,
		WellnessScore:          &score,
		CreatedAt:              now,
	}
	score2 := 505
	f.users["user-sipho"] = engine.User{
		ID:                     "user-sipho",
		Name:                   "Sipho Dlamini",
		Email:                  "sipho@example.com",
		EmployerID:             "emp-borealis",
		HourlyRate:             decimal.NewFromInt(95),
		StartDate:              time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC),
		IsFullTime:             false,
		BiometricEnabled:       false,
		PreferredPaymentMethod: engine.PaymentInstant,
		WellnessScore:          &score2,
		CreatedAt:              now,
	}
	f.users["user-admin"] = engine.User{
		ID:                     "user-admin",
		Name:                   "Operations Admin",
		Email:                  "admin@example.com",
		EmployerID:             "emp-acme",
		HourlyRate:             decimal.NewFromInt(1),
		StartDate:              now,
		IsFullTime:             true,
		PreferredPaymentMethod: engine.PaymentEFT,
		CreatedAt:              now,
	}
	f.admins["user-admin"] = true

	hash := auth.MustHashPassword(DemoPassword)
	f.passwords["thandi@example.com"] = hash
	f.passwords["sipho@example.com"] = hash
	f.passwords["admin@example.com"] = hash

	f.vouchers["v-freshmart-50"] = engine.Voucher{
		ID: "v-freshmart-50", Provider: "FreshMart", Name: "R50 Grocery Voucher",
		Category: "groceries", Price: engine.NewMoney(48),
		Discount: decimal.NewFromFloat(0.04), Stock: 25,
	}
	f.vouchers["v-airlink-1gb"] = engine.Voucher{
		ID: "v-airlink-1gb", Provider: "AirLink", Name: "1GB Mobile Data",
		Category: "airtime", Price: engine.NewMoney(79),
		Discount: decimal.NewFromFloat(0.07), Stock: 40,
	}
	f.vouchers["v-fuelgo-200"] = engine.Voucher{
		ID: "v-fuelgo-200", Provider: "FuelGo", Name: "R200 Fuel Voucher",
		Category: "transport", Price: engine.NewMoney(190),
		Discount: decimal.NewFromFloat(0.05), Stock: 10,
	}
	f.vouchers["v-cineworld-1"] = engine.Voucher{
		ID: "v-cineworld-1", Provider: "CineWorld", Name: "Movie Ticket",
		Category: "entertainment", Price: engine.NewMoney(48),
		Discount: decimal.NewFromFloat(0.2), Stock: 1,
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func (f *Fixture) Login(_ context.Context, email, password string) (Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	hash, ok := f.passwords[email]
	if !ok || !auth.CheckPassword(hash, password) {
		return Session{}, engine.ErrInvalidCredentials
	}

	user, ok := f.userByEmailLocked(email)
	if !ok {
		return Session{}, engine.ErrInvalidCredentials
	}

	role := auth.RoleEmployee
	if f.admins[user.ID] {
		role = auth.RoleAdmin
	}

	token, err := f.minter.Mint(user.ID, role)
	if err != nil {
		return Session{}, fmt.Errorf("failed to mint session token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

func (f *Fixture) userByEmailLocked(email string) (engine.User, bool) {
	for _, u := range f.users {
		if u.Email == email {
			return u, true
		}
	}
	return engine.User{}, false
}

// =============================================================================
// USERS & EMPLOYERS
// =============================================================================

func (f *Fixture) GetUser(_ context.Context, id engine.UserID) (engine.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	user, ok := f.users[id]
	if !ok {
		return engine.User{}, fmt.Errorf("user %s: %w", id, engine.ErrNotFound)
	}
	return user, nil
}

func (f *Fixture) ListUsers(_ context.Context) ([]engine.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	users := make([]engine.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *Fixture) SaveUser(_ context.Context, user engine.User) error {
	if user.WellnessScore != nil && !engine.ValidWellnessScore(*user.WellnessScore) {
		return fmt.Errorf("wellness score %d out of range: %w", *user.WellnessScore, engine.ErrInvalidAmount)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.employers[user.EmployerID]; !ok {
		return fmt.Errorf("employer %s: %w", user.EmployerID, engine.ErrNotFound)
	}
	f.users[user.ID] = user
	return nil
}

// SetPassword stores a bcrypt hash for an email. Onboarding is external to
// the core, so this exists for admin seeding and tests.
func (f *Fixture) SetPassword(email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[email] = hash
	return nil
}

// SetAdmin grants or revokes the admin role for a user.
func (f *Fixture) SetAdmin(id engine.UserID, admin bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[id] = admin
}

func (f *Fixture) GetEmployer(_ context.Context, id engine.EmployerID) (engine.Employer, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	employer, ok := f.employers[id]
	if !ok {
		return engine.Employer{}, fmt.Errorf("employer %s: %w", id, engine.ErrNotFound)
	}
	return employer, nil
}

func (f *Fixture) ListEmployers(_ context.Context) ([]engine.Employer, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	employers := make([]engine.Employer, 0, len(f.employers))
	for _, e := range f.employers {
		employers = append(employers, e)
	}
	sort.Slice(employers, func(i, j int) bool { return employers[i].ID < employers[j].ID })
	return employers, nil
}

func (f *Fixture) SaveEmployer(_ context.Context, employer engine.Employer) error {
	if employer.PayrollDay < 1 || employer.PayrollDay > 31 {
		return fmt.Errorf("payroll day %d out of range: %w", employer.PayrollDay, engine.ErrInvalidAmount)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.employers[employer.ID] = employer
	return nil
}

// =============================================================================
// TRANSACTIONS - Append-only
// =============================================================================

func (f *Fixture) ListTransactions(_ context.Context, userID engine.UserID) ([]engine.Transaction, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []engine.Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *Fixture) ListAllTransactions(_ context.Context) ([]engine.Transaction, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]engine.Transaction, len(f.txs))
	copy(out, f.txs)
	sortNewestFirst(out)
	return out, nil
}

func (f *Fixture) RecordTransaction(_ context.Context, tx engine.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[tx.UserID]; !ok {
		return fmt.Errorf("user %s: %w", tx.UserID, engine.ErrNotFound)
	}
	for _, existing := range f.txs {
		if existing.ID == tx.ID {
			return fmt.Errorf("transaction %s already recorded", tx.ID)
		}
	}

	f.txs = append(f.txs, tx)
	return nil
}

func (f *Fixture) UpdateTransactionStatus(_ context.Context, id engine.TransactionID, status engine.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, tx := range f.txs {
		if tx.ID != id {
			continue
		}
		if !engine.ValidStatusTransition(tx.Status, status) {
			return fmt.Errorf("%s -> %s: %w", tx.Status, status, engine.ErrInvalidStatusTransition)
		}
		f.txs[i].Status = status
		return nil
	}
	return fmt.Errorf("transaction %s: %w", id, engine.ErrNotFound)
}

func sortNewestFirst(txs []engine.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// =============================================================================
// VOUCHERS
// =============================================================================

func (f *Fixture) ListVouchers(_ context.Context, category string) ([]engine.Voucher, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	vouchers := make([]engine.Voucher, 0, len(f.vouchers))
	for _, v := range f.vouchers {
		if category != "" && v.Category != category {
			continue
		}
		vouchers = append(vouchers, v)
	}
	sort.Slice(vouchers, func(i, j int) bool { return vouchers[i].ID < vouchers[j].ID })
	return vouchers, nil
}

func (f *Fixture) GetVoucher(_ context.Context, id engine.VoucherID) (engine.Voucher, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.vouchers[id]
	if !ok {
		return engine.Voucher{}, fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}
	return v, nil
}

func (f *Fixture) SaveVoucher(_ context.Context, v engine.Voucher) error {
	if v.Stock < 0 {
		return fmt.Errorf("negative stock %d: %w", v.Stock, engine.ErrInvalidAmount)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.vouchers[v.ID] = v
	return nil
}

func (f *Fixture) DecrementVoucherStock(_ context.Context, id engine.VoucherID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.vouchers[id]
	if !ok {
		return fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}
	if v.Stock == 0 {
		return &engine.OutOfStockError{VoucherID: id}
	}

	v.Stock--
	f.vouchers[id] = v
	return nil
}

func (f *Fixture) RestoreVoucherStock(_ context.Context, id engine.VoucherID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.vouchers[id]
	if !ok {
		return fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}

	v.Stock++
	f.vouchers[id] = v
	return nil
}

// =============================================================================
// WELLNESS
// =============================================================================

func (f *Fixture) GetWellnessScore(_ context.Context, userID engine.UserID) (WellnessScore, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	user, ok := f.users[userID]
	if !ok {
		return WellnessScore{}, fmt.Errorf("user %s: %w", userID, engine.ErrNotFound)
	}

	score := 0
	if user.WellnessScore != nil {
		score = *user.WellnessScore
	}
	return WellnessScore{Score: score, MaxScore: engine.MaxWellnessScore}, nil
}

var _ Backend = (*Fixture)(nil)
