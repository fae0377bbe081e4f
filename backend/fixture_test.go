package backend

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/engine"
)

func testSigner() *auth.Signer {
	return auth.NewSigner([]byte("test-secret"), "wage-engine-test", time.Hour)
}

func TestFixtureLogin(t *testing.T) {
	signer := testSigner()
	f := NewFixture(signer)
	ctx := context.Background()

	t.Run("valid credentials yield a verifiable session", func(t *testing.T) {
		session, err := f.Login(ctx, "thandi@example.com", DemoPassword)
		require.NoError(t, err)
		assert.Equal(t, engine.UserID("user-thandi"), session.User.ID)

		claims, err := signer.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, engine.UserID("user-thandi"), claims.UserID)
		assert.Equal(t, auth.RoleEmployee, claims.Role)
	})

	t.Run("admin account carries the admin role", func(t *testing.T) {
		session, err := f.Login(ctx, "admin@example.com", DemoPassword)
		require.NoError(t, err)

		claims, err := signer.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := f.Login(ctx, "thandi@example.com", "not-the-password")
		assert.ErrorIs(t, err, engine.ErrInvalidCredentials)
	})

	t.Run("unknown email is rejected", func(t *testing.T) {
		_, err := f.Login(ctx, "nobody@example.com", DemoPassword)
		assert.ErrorIs(t, err, engine.ErrInvalidCredentials)
	})
}

func TestFixtureUsersAndEmployers(t *testing.T) {
	f := NewFixture(testSigner())
	ctx := context.Background()

	t.Run("seeded user resolves with employer link", func(t *testing.T) {
		user, err := f.GetUser(ctx, "user-thandi")
		require.NoError(t, err)

		employer, err := f.GetEmployer(ctx, user.EmployerID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Holdings", employer.Name)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		_, err := f.GetUser(ctx, "user-ghost")
		assert.ErrorIs(t, err, engine.ErrNotFound)
	})

	t.Run("saving a user with an unknown employer fails", func(t *testing.T) {
		err := f.SaveUser(ctx, engine.User{ID: "user-new", EmployerID: "emp-ghost"})
		assert.ErrorIs(t, err, engine.ErrNotFound)
	})

	t.Run("wellness score outside the scale is rejected", func(t *testing.T) {
		bad := 900
		err := f.SaveUser(ctx, engine.User{ID: "user-new", EmployerID: "emp-acme", WellnessScore: &bad})
		assert.Error(t, err)
	})

	t.Run("payroll day is bounded", func(t *testing.T) {
		err := f.SaveEmployer(ctx, engine.Employer{ID: "emp-bad", PayrollDay: 32})
		assert.Error(t, err)
	})
}

func TestFixtureTransactionLedger(t *testing.T) {
	f := NewFixture(testSigner())
	ctx := context.Background()

	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	mkTx := func(id string, at time.Time) engine.Transaction {
		return engine.Transaction{
			ID:            engine.TransactionID(id),
			UserID:        "user-thandi",
			Type:          engine.TxAdvance,
			Status:        engine.StatusPending,
			Amount:        engine.NewMoney(500),
			Fee:           engine.NewMoney(30),
			PaymentMethod: engine.PaymentEFT,
			CreatedAt:     at,
		}
	}

	// GIVEN three transactions recorded out of chronological order
	require.NoError(t, f.RecordTransaction(ctx, mkTx("tx-2", base.Add(time.Hour))))
	require.NoError(t, f.RecordTransaction(ctx, mkTx("tx-1", base)))
	require.NoError(t, f.RecordTransaction(ctx, mkTx("tx-3", base.Add(2*time.Hour))))

	t.Run("listing returns newest first", func(t *testing.T) {
		txs, err := f.ListTransactions(ctx, "user-thandi")
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, engine.TransactionID("tx-3"), txs[0].ID)
		assert.Equal(t, engine.TransactionID("tx-2"), txs[1].ID)
		assert.Equal(t, engine.TransactionID("tx-1"), txs[2].ID)
	})

	t.Run("duplicate ids are refused", func(t *testing.T) {
		err := f.RecordTransaction(ctx, mkTx("tx-1", base))
		assert.Error(t, err)
	})

	t.Run("unknown user is refused", func(t *testing.T) {
		tx := mkTx("tx-4", base)
		tx.UserID = "user-ghost"
		assert.ErrorIs(t, f.RecordTransaction(ctx, tx), engine.ErrNotFound)
	})

	t.Run("status follows the allowed transitions", func(t *testing.T) {
		require.NoError(t, f.UpdateTransactionStatus(ctx, "tx-1", engine.StatusApproved))
		require.NoError(t, f.UpdateTransactionStatus(ctx, "tx-1", engine.StatusCompleted))

		// Completed is terminal.
		err := f.UpdateTransactionStatus(ctx, "tx-1", engine.StatusFailed)
		assert.ErrorIs(t, err, engine.ErrInvalidStatusTransition)
	})

	t.Run("listing for another user is empty", func(t *testing.T) {
		txs, err := f.ListTransactions(ctx, "user-sipho")
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestFixtureVoucherStock(t *testing.T) {
	f := NewFixture(testSigner())
	ctx := context.Background()

	t.Run("category filter is exact", func(t *testing.T) {
		vouchers, err := f.ListVouchers(ctx, "groceries")
		require.NoError(t, err)
		require.Len(t, vouchers, 1)
		assert.Equal(t, "FreshMart", vouchers[0].Provider)
	})

	t.Run("decrement drains stock to out-of-stock", func(t *testing.T) {
		// GIVEN the single-unit voucher
		require.NoError(t, f.DecrementVoucherStock(ctx, "v-cineworld-1"))

		// WHEN a second unit is taken
		err := f.DecrementVoucherStock(ctx, "v-cineworld-1")

		// THEN stock never goes negative
		assert.ErrorIs(t, err, engine.ErrOutOfStock)
		v, getErr := f.GetVoucher(ctx, "v-cineworld-1")
		require.NoError(t, getErr)
		assert.Equal(t, 0, v.Stock)
	})

	t.Run("restore compensates a failed purchase", func(t *testing.T) {
		require.NoError(t, f.RestoreVoucherStock(ctx, "v-cineworld-1"))
		require.NoError(t, f.DecrementVoucherStock(ctx, "v-cineworld-1"))
	})

	t.Run("negative stock cannot be saved", func(t *testing.T) {
		err := f.SaveVoucher(ctx, engine.Voucher{ID: "v-bad", Stock: -1})
		assert.Error(t, err)
	})
}

func TestFixtureWellnessScore(t *testing.T) {
	f := NewFixture(testSigner())
	ctx := context.Background()

	score, err := f.GetWellnessScore(ctx, "user-thandi")
	require.NoError(t, err)
	assert.Equal(t, 640, score.Score)
	assert.Equal(t, engine.MaxWellnessScore, score.MaxScore)

	_, err = f.GetWellnessScore(ctx, "user-ghost")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestFixtureSeedPolicy(t *testing.T) {
	f := NewFixture(testSigner())

	employer, err := f.GetEmployer(context.Background(), "emp-acme")
	require.NoError(t, err)

	assert.Equal(t, 25, employer.PayrollDay)
	assert.True(t, employer.AdvanceCap.Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, employer.FeeStructure.Flat.Equal(engine.NewMoney(25)))
	assert.True(t, employer.FeeStructure.Max.Equal(engine.NewMoney(60)))
}
