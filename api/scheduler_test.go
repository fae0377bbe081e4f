package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
)

func TestRepaymentScheduler(t *testing.T) {
	signer := auth.NewSigner([]byte("test-secret"), "wage-engine-test", time.Hour)
	fixture := backend.NewFixture(signer)
	ctx := context.Background()

	// GIVEN a completed advance taken in March
	advanceTx := engine.Transaction{
		ID:            "tx-advance",
		UserID:        "user-thandi",
		Type:          engine.TxAdvance,
		Status:        engine.StatusCompleted,
		Amount:        engine.NewMoney(500),
		Fee:           engine.NewMoney(30),
		PaymentMethod: engine.PaymentEFT,
		CreatedAt:     time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fixture.RecordTransaction(ctx, advanceTx))

	scheduler := NewRepaymentScheduler(fixture, engine.NewEarnings(engine.DefaultPeriodPolicy()))

	t.Run("not due within the same period", func(t *testing.T) {
		scheduler.Clock = func() time.Time {
			return time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)
		}
		scheduler.RunNow()

		txs, err := fixture.ListTransactions(ctx, "user-thandi")
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("repaid once the period has ended", func(t *testing.T) {
		scheduler.Clock = func() time.Time {
			return time.Date(2025, time.April, 1, 6, 0, 0, 0, time.UTC)
		}
		scheduler.RunNow()

		txs, err := fixture.ListTransactions(ctx, "user-thandi")
		require.NoError(t, err)
		require.Len(t, txs, 2)

		repayment := txs[0] // newest first
		assert.Equal(t, engine.TxRepayment, repayment.Type)
		assert.Equal(t, engine.StatusCompleted, repayment.Status)
		assert.True(t, repayment.Amount.Equal(engine.NewMoney(530)))
		assert.True(t, repayment.Fee.IsZero())
		assert.Equal(t, "tx-advance", repayment.ReferenceID)
	})

	t.Run("idempotent across repeated runs", func(t *testing.T) {
		scheduler.RunNow()
		scheduler.RunNow()

		txs, err := fixture.ListTransactions(ctx, "user-thandi")
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})
}
