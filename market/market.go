/*
Package market implements the voucher marketplace.

PURPOSE:
  Search is a pure projection over the catalog: optional category
  equality plus a case-insensitive substring match on provider and
  name. Purchase is the only mutation: it takes one unit of stock and
  records a completed voucher transaction, atomically per voucher.

ATOMICITY:
  Two simultaneous purchases against stock == 1 must yield exactly one
  Transaction and one OutOfStock. A per-voucher mutex serializes the
  decrement-and-record pair; if recording fails after the decrement,
  the stock unit is restored so no money moves without a ledger entry
  and no ledger entry exists without its stock unit.

ISSUANCE:
  Redemption codes and expiry dates come from an external issuer
  collaborator. The default issuer generates a UUID code valid for 90
  days; a production issuer would call the voucher provider instead.

SEE ALSO:
  - backend/backend.go: DecrementVoucherStock / RestoreVoucherStock
  - engine/types.go: Voucher, VoucherPurchase
*/
package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/idgen"
	"github.com/payquick/wage-engine/notify"
)

// =============================================================================
// ISSUER - External code/expiry generation
// =============================================================================

// Issuer generates the redemption code and expiry for a purchased voucher.
type Issuer interface {
	Issue(v engine.Voucher, now time.Time) engine.VoucherPurchase
}

// DefaultVoucherValidity is how long an issued code stays redeemable.
const DefaultVoucherValidity = 90 * 24 * time.Hour

// UUIDIssuer issues UUID redemption codes with the default validity.
type UUIDIssuer struct{}

func (UUIDIssuer) Issue(v engine.Voucher, now time.Time) engine.VoucherPurchase {
	return engine.VoucherPurchase{
		VoucherID:  v.ID,
		Code:       uuid.NewString(),
		ExpiryDate: now.Add(DefaultVoucherValidity),
	}
}

// =============================================================================
// MARKETPLACE
// =============================================================================

// Notifier receives user-facing purchase outcomes.
type Notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

type Config struct {
	Backend  backend.Backend
	Issuer   Issuer // defaults to UUIDIssuer
	Notifier Notifier

	// NotifierFor resolves a per-user notifier, overriding Notifier when set.
	NotifierFor func(engine.UserID) Notifier

	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Marketplace struct {
	cfg Config

	mu    sync.Mutex
	locks map[engine.VoucherID]*sync.Mutex
}

func New(cfg Config) *Marketplace {
	if cfg.Issuer == nil {
		cfg.Issuer = UUIDIssuer{}
	}
	return &Marketplace{
		cfg:   cfg,
		locks: make(map[engine.VoucherID]*sync.Mutex),
	}
}

func (m *Marketplace) now() time.Time {
	if m.cfg.Clock != nil {
		return m.cfg.Clock()
	}
	return time.Now().UTC()
}

// voucherLock returns the mutex serializing purchases of one voucher.
func (m *Marketplace) voucherLock(id engine.VoucherID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// =============================================================================
// SEARCH - Pure projection, no mutation
// =============================================================================

// Search filters the catalog by optional exact category and an optional
// case-insensitive substring match against provider and name. An empty
// term matches everything.
func (m *Marketplace) Search(ctx context.Context, category, term string) ([]engine.Voucher, error) {
	vouchers, err := m.cfg.Backend.ListVouchers(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load voucher catalog: %w", err)
	}
	return FilterByTerm(vouchers, term), nil
}

// FilterByTerm is the search projection on an in-memory catalog slice.
func FilterByTerm(vouchers []engine.Voucher, term string) []engine.Voucher {
	if term == "" {
		return vouchers
	}

	needle := strings.ToLower(term)
	out := make([]engine.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if strings.Contains(strings.ToLower(v.Provider), needle) ||
			strings.Contains(strings.ToLower(v.Name), needle) {
			out = append(out, v)
		}
	}
	return out
}

// =============================================================================
// PURCHASE - Serialized per voucher
// =============================================================================

// Purchase takes one unit of stock and records a completed voucher
// transaction. Fails with engine.ErrOutOfStock when stock is exhausted at
// the instant of purchase.
func (m *Marketplace) Purchase(ctx context.Context, user engine.User, voucherID engine.VoucherID) (engine.Transaction, error) {
	lock := m.voucherLock(voucherID)
	lock.Lock()
	defer lock.Unlock()

	voucher, err := m.cfg.Backend.GetVoucher(ctx, voucherID)
	if err != nil {
		return engine.Transaction{}, err
	}

	if err := m.cfg.Backend.DecrementVoucherStock(ctx, voucherID); err != nil {
		if engine.IsClientError(err) {
			m.notifyError(user.ID, fmt.Sprintf("%s is out of stock.", voucher.Name))
		}
		return engine.Transaction{}, err
	}

	now := m.now()
	purchase := m.cfg.Issuer.Issue(voucher, now)

	tx := engine.Transaction{
		ID:            engine.TransactionID(idgen.NewAt(now)),
		UserID:        user.ID,
		Type:          engine.TxVoucher,
		Status:        engine.StatusCompleted,
		Amount:        voucher.Price,
		Fee:           engine.ZeroMoney(),
		PaymentMethod: user.PreferredPaymentMethod,
		VoucherDetails: &purchase,
		ReferenceID:   string(voucher.ID),
		CreatedAt:     now,
	}

	if err := m.cfg.Backend.RecordTransaction(ctx, tx); err != nil {
		// Compensate: the decrement must not stand without its ledger entry.
		if restoreErr := m.cfg.Backend.RestoreVoucherStock(ctx, voucherID); restoreErr != nil {
			return engine.Transaction{}, fmt.Errorf("failed to record purchase (stock restore also failed: %v): %w", restoreErr, err)
		}
		m.notifyError(user.ID, "Your purchase could not be recorded. Please try again.")
		return engine.Transaction{}, fmt.Errorf("failed to record purchase: %w", err)
	}

	m.notifySuccess(user.ID, fmt.Sprintf("Purchased %s for %s. Code: %s", voucher.Name, voucher.Price, purchase.Code))
	return tx, nil
}

func (m *Marketplace) notifierFor(userID engine.UserID) Notifier {
	if m.cfg.NotifierFor != nil {
		return m.cfg.NotifierFor(userID)
	}
	return m.cfg.Notifier
}

func (m *Marketplace) notifySuccess(userID engine.UserID, message string) {
	if n := m.notifierFor(userID); n != nil {
		n.Success(message)
	}
}

func (m *Marketplace) notifyError(userID engine.UserID, message string) {
	if n := m.notifierFor(userID); n != nil {
		n.Error(message)
	}
}
