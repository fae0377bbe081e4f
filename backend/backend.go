/*
Package backend defines the persistence collaborator for the wage engine.

PURPOSE:
  The core treats storage and login as an external collaborator: every
  method may fail, and callers must be able to substitute a real backend
  without changing core logic. Three implementations exist:

    - Fixture:   in-memory, seeded with demo data (fixture.go)
    - sqlite:    durable store (store/sqlite)
    - Resilient: wraps a primary and falls back to the fixture when the
                 primary reports ErrBackendUnavailable (resilient.go)

CONTRACTS:
  - Transactions are append-only: RecordTransaction is the only write,
    UpdateTransactionStatus the only mutation, and it validates the
    status transition.
  - DecrementVoucherStock is atomic per voucher and refuses to take
    stock below zero (ErrOutOfStock).
  - Referential integrity (user -> employer) is the store's concern;
    the core only reads the links.

SEE ALSO:
  - engine/errors.go: Error taxonomy these methods return
  - market/market.go: Serializes the decrement-and-record pair
*/
package backend

import (
	"context"

	"github.com/payquick/wage-engine/engine"
)

// Session is the result of a successful login.
type Session struct {
	Token string
	User  engine.User
}

// WellnessScore is the user's financial wellness standing.
type WellnessScore struct {
	Score    int
	MaxScore int
}

// Backend persists users, employers, transactions, and vouchers, and
// answers login and wellness queries. All methods may fail; recoverable
// failures are reported as engine.ErrBackendUnavailable.
type Backend interface {
	// Login authenticates by email/password and returns a session token
	// plus the user record. Fails with engine.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (Session, error)

	GetUser(ctx context.Context, id engine.UserID) (engine.User, error)
	ListUsers(ctx context.Context) ([]engine.User, error)
	SaveUser(ctx context.Context, user engine.User) error

	GetEmployer(ctx context.Context, id engine.EmployerID) (engine.Employer, error)
	ListEmployers(ctx context.Context) ([]engine.Employer, error)
	SaveEmployer(ctx context.Context, employer engine.Employer) error

	// ListTransactions returns a user's transactions, newest first.
	ListTransactions(ctx context.Context, userID engine.UserID) ([]engine.Transaction, error)
	ListAllTransactions(ctx context.Context) ([]engine.Transaction, error)
	RecordTransaction(ctx context.Context, tx engine.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id engine.TransactionID, status engine.TransactionStatus) error

	// ListVouchers returns catalog entries, optionally filtered by exact
	// category. Filtering by search term is the marketplace's concern.
	ListVouchers(ctx context.Context, category string) ([]engine.Voucher, error)
	GetVoucher(ctx context.Context, id engine.VoucherID) (engine.Voucher, error)
	SaveVoucher(ctx context.Context, v engine.Voucher) error

	// DecrementVoucherStock atomically takes one unit of stock.
	// Fails with engine.ErrOutOfStock when stock is exhausted.
	DecrementVoucherStock(ctx context.Context, id engine.VoucherID) error

	// RestoreVoucherStock returns one unit of stock. Compensation for a
	// decrement whose paired transaction record failed.
	RestoreVoucherStock(ctx context.Context, id engine.VoucherID) error

	GetWellnessScore(ctx context.Context, userID engine.UserID) (WellnessScore, error)
}
