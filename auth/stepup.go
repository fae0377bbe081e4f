package auth

import (
	"context"
	"sync"
)

// StepUpGate is a step-up authentication factor driven from outside the
// workflow: Invoke suspends until Resolve delivers the user's pass/fail,
// or the context is cancelled. The actual sensor/biometric implementation
// is external; only the pass/fail contract matters here.
//
// A gate covers exactly one authentication attempt: it resolves once and
// then stays spent. Callers create a fresh gate per attempt, so a
// resolution aimed at an abandoned attempt cannot leak into a later one.
//
// Satisfies the advance.Authenticator contract.
type StepUpGate struct {
	once   sync.Once
	result chan bool
}

func NewStepUpGate() *StepUpGate {
	return &StepUpGate{result: make(chan bool, 1)}
}

// Invoke blocks until the gate is resolved or ctx is cancelled.
func (g *StepUpGate) Invoke(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case approved := <-g.result:
		return approved, nil
	}
}

// Resolve delivers the factor's outcome. Only the first resolution counts;
// later calls are no-ops.
func (g *StepUpGate) Resolve(approved bool) {
	g.once.Do(func() { g.result <- approved })
}

// AutoApprove is an Authenticator that always approves immediately.
// Used by tests and the demo scenario where no device factor exists.
type AutoApprove struct{}

func (AutoApprove) Invoke(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
		return true, nil
	}
}
