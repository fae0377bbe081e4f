package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokens(t *testing.T) {
	signer := NewSigner([]byte("secret"), "wage-engine-test", time.Hour)

	t.Run("round trip preserves subject and role", func(t *testing.T) {
		token, err := signer.Mint("user-1", RoleAdmin)
		require.NoError(t, err)

		claims, err := signer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", string(claims.UserID))
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		// NewSigner refuses non-positive TTLs, so build one by hand.
		expired := &Signer{secret: []byte("secret"), issuer: "wage-engine-test", ttl: -time.Minute}
		token, err := expired.Mint("user-1", RoleEmployee)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := NewSigner([]byte("other-secret"), "wage-engine-test", time.Hour)
		token, err := other.Mint("user-1", RoleEmployee)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		other := NewSigner([]byte("secret"), "someone-else", time.Hour)
		token, err := other.Mint("user-1", RoleEmployee)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := signer.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestStepUpGate(t *testing.T) {
	t.Run("resolve unblocks invoke", func(t *testing.T) {
		gate := NewStepUpGate()

		done := make(chan bool, 1)
		go func() {
			approved, err := gate.Invoke(context.Background())
			assert.NoError(t, err)
			done <- approved
		}()

		gate.Resolve(true)
		assert.True(t, <-done)
	})

	t.Run("only the first resolution counts", func(t *testing.T) {
		gate := NewStepUpGate()
		gate.Resolve(false)
		gate.Resolve(true) // no-op

		approved, err := gate.Invoke(context.Background())
		require.NoError(t, err)
		assert.False(t, approved)
	})

	t.Run("cancellation wins over a missing resolution", func(t *testing.T) {
		gate := NewStepUpGate()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := gate.Invoke(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("auto approve honours cancellation", func(t *testing.T) {
		approved, err := AutoApprove{}.Invoke(context.Background())
		require.NoError(t, err)
		assert.True(t, approved)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = AutoApprove{}.Invoke(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
