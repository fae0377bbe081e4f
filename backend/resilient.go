/*
resilient.go - Primary backend with fixture fallback

PURPOSE:
  When the primary backend is unreachable, the app degrades to the
  seeded fixture instead of breaking: reads return demo data and writes
  land in memory. Only recoverable failures (ErrBackendUnavailable)
  trigger the fallback; domain errors like ErrInvalidCredentials or
  ErrOutOfStock pass through untouched, since retrying them elsewhere
  would change their meaning.
*/
package backend

import (
	"context"
	"log"

	"github.com/payquick/wage-engine/engine"
)

// Resilient wraps a primary Backend and falls back to a secondary (normally
// the seeded Fixture) when the primary reports a recoverable failure.
type Resilient struct {
	primary  Backend
	fallback Backend
	logger   *log.Logger
}

func NewResilient(primary, fallback Backend, logger *log.Logger) *Resilient {
	if logger == nil {
		logger = log.Default()
	}
	return &Resilient{primary: primary, fallback: fallback, logger: logger}
}

// shouldFallBack reports whether the fallback should handle the call.
func (r *Resilient) shouldFallBack(op string, err error) bool {
	if err == nil || !engine.IsRecoverable(err) {
		return false
	}
	r.logger.Printf("[Backend] %s: primary unavailable, using fixture: %v", op, err)
	return true
}

func (r *Resilient) Login(ctx context.Context, email, password string) (Session, error) {
	s, err := r.primary.Login(ctx, email, password)
	if r.shouldFallBack("Login", err) {
		return r.fallback.Login(ctx, email, password)
	}
	return s, err
}

func (r *Resilient) GetUser(ctx context.Context, id engine.UserID) (engine.User, error) {
	u, err := r.primary.GetUser(ctx, id)
	if r.shouldFallBack("GetUser", err) {
		return r.fallback.GetUser(ctx, id)
	}
	return u, err
}

func (r *Resilient) ListUsers(ctx context.Context) ([]engine.User, error) {
	users, err := r.primary.ListUsers(ctx)
	if r.shouldFallBack("ListUsers", err) {
		return r.fallback.ListUsers(ctx)
	}
	return users, err
}

func (r *Resilient) SaveUser(ctx context.Context, user engine.User) error {
	err := r.primary.SaveUser(ctx, user)
	if r.shouldFallBack("SaveUser", err) {
		return r.fallback.SaveUser(ctx, user)
	}
	return err
}

func (r *Resilient) GetEmployer(ctx context.Context, id engine.EmployerID) (engine.Employer, error) {
	e, err := r.primary.GetEmployer(ctx, id)
	if r.shouldFallBack("GetEmployer", err) {
		return r.fallback.GetEmployer(ctx, id)
	}
	return e, err
}

func (r *Resilient) ListEmployers(ctx context.Context) ([]engine.Employer, error) {
	employers, err := r.primary.ListEmployers(ctx)
	if r.shouldFallBack("ListEmployers", err) {
		return r.fallback.ListEmployers(ctx)
	}
	return employers, err
}

func (r *Resilient) SaveEmployer(ctx context.Context, employer engine.Employer) error {
	err := r.primary.SaveEmployer(ctx, employer)
	if r.shouldFallBack("SaveEmployer", err) {
		return r.fallback.SaveEmployer(ctx, employer)
	}
	return err
}

func (r *Resilient) ListTransactions(ctx context.Context, userID engine.UserID) ([]engine.Transaction, error) {
	txs, err := r.primary.ListTransactions(ctx, userID)
	if r.shouldFallBack("ListTransactions", err) {
		return r.fallback.ListTransactions(ctx, userID)
	}
	return txs, err
}

func (r *Resilient) ListAllTransactions(ctx context.Context) ([]engine.Transaction, error) {
	txs, err := r.primary.ListAllTransactions(ctx)
	if r.shouldFallBack("ListAllTransactions", err) {
		return r.fallback.ListAllTransactions(ctx)
	}
	return txs, err
}

func (r *Resilient) RecordTransaction(ctx context.Context, tx engine.Transaction) error {
	err := r.primary.RecordTransaction(ctx, tx)
	if r.shouldFallBack("RecordTransaction", err) {
		return r.fallback.RecordTransaction(ctx, tx)
	}
	return err
}

func (r *Resilient) UpdateTransactionStatus(ctx context.Context, id engine.TransactionID, status engine.TransactionStatus) error {
	err := r.primary.UpdateTransactionStatus(ctx, id, status)
	if r.shouldFallBack("UpdateTransactionStatus", err) {
		return r.fallback.UpdateTransactionStatus(ctx, id, status)
	}
	return err
}

func (r *Resilient) ListVouchers(ctx context.Context, category string) ([]engine.Voucher, error) {
	vouchers, err := r.primary.ListVouchers(ctx, category)
	if r.shouldFallBack("ListVouchers", err) {
		return r.fallback.ListVouchers(ctx, category)
	}
	return vouchers, err
}

func (r *Resilient) GetVoucher(ctx context.Context, id engine.VoucherID) (engine.Voucher, error) {
	v, err := r.primary.GetVoucher(ctx, id)
	if r.shouldFallBack("GetVoucher", err) {
		return r.fallback.GetVoucher(ctx, id)
	}
	return v, err
}

func (r *Resilient) SaveVoucher(ctx context.Context, v engine.Voucher) error {
	err := r.primary.SaveVoucher(ctx, v)
	if r.shouldFallBack("SaveVoucher", err) {
		return r.fallback.SaveVoucher(ctx, v)
	}
	return err
}

func (r *Resilient) DecrementVoucherStock(ctx context.Context, id engine.VoucherID) error {
	err := r.primary.DecrementVoucherStock(ctx, id)
	if r.shouldFallBack("DecrementVoucherStock", err) {
		return r.fallback.DecrementVoucherStock(ctx, id)
	}
	return err
}

func (r *Resilient) RestoreVoucherStock(ctx context.Context, id engine.VoucherID) error {
	err := r.primary.RestoreVoucherStock(ctx, id)
	if r.shouldFallBack("RestoreVoucherStock", err) {
		return r.fallback.RestoreVoucherStock(ctx, id)
	}
	return err
}

func (r *Resilient) GetWellnessScore(ctx context.Context, userID engine.UserID) (WellnessScore, error) {
	w, err := r.primary.GetWellnessScore(ctx, userID)
	if r.shouldFallBack("GetWellnessScore", err) {
		return r.fallback.GetWellnessScore(ctx, userID)
	}
	return w, err
}

var _ Backend = (*Resilient)(nil)
