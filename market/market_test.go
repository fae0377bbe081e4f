package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
)

func newTestMarket(t *testing.T) (*Marketplace, *backend.Fixture) {
	t.Helper()
	signer := auth.NewSigner([]byte("test-secret"), "wage-engine-test", time.Hour)
	fixture := backend.NewFixture(signer)
	return New(Config{Backend: fixture}), fixture
}

func testUser() engine.User {
	return engine.User{ID: "user-thandi", PreferredPaymentMethod: engine.PaymentEFT}
}

func TestSearchProjection(t *testing.T) {
	m, _ := newTestMarket(t)
	ctx := context.Background()

	t.Run("empty query returns the whole catalog", func(t *testing.T) {
		vouchers, err := m.Search(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, vouchers, 4)
	})

	t.Run("term matches provider case-insensitively", func(t *testing.T) {
		vouchers, err := m.Search(ctx, "", "FRESHMART")
		require.NoError(t, err)
		require.Len(t, vouchers, 1)
		assert.Equal(t, engine.VoucherID("v-freshmart-50"), vouchers[0].ID)
	})

	t.Run("term matches name substring", func(t *testing.T) {
		vouchers, err := m.Search(ctx, "", "fuel")
		require.NoError(t, err)
		require.Len(t, vouchers, 1)
		assert.Equal(t, "FuelGo", vouchers[0].Provider)
	})

	t.Run("category and term combine", func(t *testing.T) {
		vouchers, err := m.Search(ctx, "groceries", "fuel")
		require.NoError(t, err)
		assert.Empty(t, vouchers)
	})

	t.Run("search never mutates the catalog", func(t *testing.T) {
		before, err := m.Search(ctx, "", "")
		require.NoError(t, err)
		_, err = m.Search(ctx, "entertainment", "movie")
		require.NoError(t, err)
		after, err := m.Search(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a completed voucher transaction with a receipt", func(t *testing.T) {
		m, fixture := newTestMarket(t)
		purchasedAt := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		m.cfg.Clock = func() time.Time { return purchasedAt }

		tx, err := m.Purchase(ctx, testUser(), "v-freshmart-50")
		require.NoError(t, err)

		assert.Equal(t, engine.TxVoucher, tx.Type)
		assert.Equal(t, engine.StatusCompleted, tx.Status)
		assert.True(t, tx.Amount.Equal(engine.NewMoney(48)))
		assert.True(t, tx.Fee.IsZero())

		require.NotNil(t, tx.VoucherDetails)
		assert.Equal(t, engine.VoucherID("v-freshmart-50"), tx.VoucherDetails.VoucherID)
		assert.NotEmpty(t, tx.VoucherDetails.Code)
		assert.Equal(t, purchasedAt.Add(DefaultVoucherValidity), tx.VoucherDetails.ExpiryDate)

		// Stock went down and the ledger has the entry.
		v, err := fixture.GetVoucher(ctx, "v-freshmart-50")
		require.NoError(t, err)
		assert.Equal(t, 24, v.Stock)

		txs, err := fixture.ListTransactions(ctx, "user-thandi")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, tx.ID, txs[0].ID)
	})

	t.Run("refused once stock reaches zero", func(t *testing.T) {
		m, fixture := newTestMarket(t)

		// GIVEN the single-unit voucher purchased once
		_, err := m.Purchase(ctx, testUser(), "v-cineworld-1")
		require.NoError(t, err)

		// WHEN purchased again
		_, err = m.Purchase(ctx, testUser(), "v-cineworld-1")

		// THEN out of stock, stock stays at zero
		assert.ErrorIs(t, err, engine.ErrOutOfStock)
		v, getErr := fixture.GetVoucher(ctx, "v-cineworld-1")
		require.NoError(t, getErr)
		assert.Equal(t, 0, v.Stock)
	})

	t.Run("unknown voucher reports not found", func(t *testing.T) {
		m, _ := newTestMarket(t)
		_, err := m.Purchase(ctx, testUser(), "v-ghost")
		assert.ErrorIs(t, err, engine.ErrNotFound)
	})
}

func TestPurchaseConcurrentLastUnit(t *testing.T) {
	// GIVEN stock == 1 and two simultaneous purchasers
	m, fixture := newTestMarket(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Purchase(ctx, testUser(), "v-cineworld-1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// THEN exactly one success and one OutOfStock
	var successes, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, engine.ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, outOfStock)

	txs, err := fixture.ListTransactions(ctx, "user-thandi")
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	v, err := fixture.GetVoucher(ctx, "v-cineworld-1")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Stock)
}

// recordFailBackend fails every RecordTransaction to exercise compensation.
type recordFailBackend struct {
	backend.Backend
}

func (b *recordFailBackend) RecordTransaction(ctx context.Context, tx engine.Transaction) error {
	return errors.New("ledger write failed")
}

func TestPurchaseRestoresStockWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	signer := auth.NewSigner([]byte("test-secret"), "wage-engine-test", time.Hour)
	fixture := backend.NewFixture(signer)
	m := New(Config{Backend: &recordFailBackend{Backend: fixture}})

	_, err := m.Purchase(ctx, testUser(), "v-cineworld-1")
	require.Error(t, err)

	// The decremented unit was restored.
	v, err := fixture.GetVoucher(ctx, "v-cineworld-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Stock)

	txs, err := fixture.ListTransactions(ctx, "user-thandi")
	require.NoError(t, err)
	assert.Empty(t, txs)
}
