package backend

import (
	"context"
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payquick/wage-engine/engine"
)

// flaky wraps a Backend and overrides selected calls with a fixed error.
type flaky struct {
	Backend
	loginErr error
	userErr  error
}

func (f *flaky) Login(ctx context.Context, email, password string) (Session, error) {
	if f.loginErr != nil {
		return Session{}, f.loginErr
	}
	return f.Backend.Login(ctx, email, password)
}

func (f *flaky) GetUser(ctx context.Context, id engine.UserID) (engine.User, error) {
	if f.userErr != nil {
		return engine.User{}, f.userErr
	}
	return f.Backend.GetUser(ctx, id)
}

func TestResilientFallsBackWhenPrimaryUnavailable(t *testing.T) {
	ctx := context.Background()
	fixture := NewFixture(testSigner())
	primary := &flaky{
		Backend:  NewEmptyFixture(testSigner()),
		loginErr: fmt.Errorf("dial tcp: connection refused: %w", engine.ErrBackendUnavailable),
		userErr:  fmt.Errorf("dial tcp: connection refused: %w", engine.ErrBackendUnavailable),
	}
	r := NewResilient(primary, fixture, log.Default())

	// GIVEN an unreachable primary, WHEN logging in
	session, err := r.Login(ctx, "thandi@example.com", DemoPassword)

	// THEN the fixture answers
	require.NoError(t, err)
	assert.Equal(t, engine.UserID("user-thandi"), session.User.ID)

	user, err := r.GetUser(ctx, "user-thandi")
	require.NoError(t, err)
	assert.Equal(t, "Thandi Mokoena", user.Name)
}

func TestResilientDomainErrorsPassThrough(t *testing.T) {
	ctx := context.Background()

	// GIVEN a reachable primary
	primary := NewFixture(testSigner())
	fallback := NewFixture(testSigner())
	r := NewResilient(primary, fallback, nil)

	// WHEN credentials are simply wrong
	_, err := r.Login(ctx, "thandi@example.com", "wrong-password")

	// THEN the rejection is not retried against the fallback
	assert.ErrorIs(t, err, engine.ErrInvalidCredentials)

	// AND a genuine not-found from the primary stays a not-found
	_, err = r.GetUser(ctx, "user-ghost")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestResilientPrefersPrimary(t *testing.T) {
	ctx := context.Background()

	primary := NewFixture(testSigner())
	// Distinguishable fallback record.
	fallback := NewFixture(testSigner())
	u, err := fallback.GetUser(ctx, "user-thandi")
	require.NoError(t, err)
	u.Name = "Fallback Copy"
	require.NoError(t, fallback.SaveUser(ctx, u))

	r := NewResilient(primary, fallback, nil)

	got, err := r.GetUser(ctx, "user-thandi")
	require.NoError(t, err)
	assert.Equal(t, "Thandi Mokoena", got.Name)
}
