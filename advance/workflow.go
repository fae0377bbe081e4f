/*
Package advance implements the cash-advance workflow state machine.

PURPOSE:
  Orchestrates an advance request from draft through optional step-up
  authentication to transaction creation. The state machine replaces
  implicit boolean flags (showBiometric, loading) with explicit states,
  eliminating invalid flag combinations.

STATE MACHINE:

  Draft ──▶ PendingAuth ──▶ Authorizing ──▶ Approved ──▶ Completed
    │            │               │
    │            │               ├──▶ Failed   (step-up rejection)
    │            │               └──▶ Draft    (user cancellation, amount preserved)
    └──────────────────────────▶ Approved      (biometric disabled)

  Draft -> PendingAuth requires 0 < amount <= advanceable ceiling.
  PendingAuth is entered only when the user has the step-up factor
  enabled; otherwise the workflow goes straight to Approved.

SUSPENSION:
  The step-up invocation is the sole suspension point. The workflow
  remains re-entrant-safe across it: all transitions happen under the
  workflow mutex, and an attempt generation counter discards late
  step-up results that arrive after the user cancelled. Each attempt
  gets its own factor instance, so a resolution aimed at a cancelled
  attempt can never carry over to a retry. A late success must never
  silently approve an advance the user believes they cancelled.

ATOMICITY:
  Completion computes the fee, records a completed advance Transaction
  through the recorder, and emits a success notification carrying the
  literal fee value. Any failure returns the workflow to Draft with the
  amount preserved and leaves no partial Transaction behind.

SEE ALSO:
  - registry.go: One active workflow per user
  - engine/earnings.go: Ceiling re-checked at the moment of approval
*/
package advance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/idgen"
	"github.com/payquick/wage-engine/notify"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Authenticator is the step-up authentication factor. Invoke suspends until
// the factor resolves: approved, rejected, or cancelled via ctx. No other
// contract (parameters, partial states) is assumed.
type Authenticator interface {
	Invoke(ctx context.Context) (approved bool, err error)
}

// Recorder persists transactions. Creation is atomic: a Transaction either
// exists fully recorded or not at all.
type Recorder interface {
	RecordTransaction(ctx context.Context, tx engine.Transaction) error
}

// Notifier receives user-facing side-channel messages.
type Notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

// =============================================================================
// STATES
// =============================================================================

type State int

const (
	StateDraft State = iota
	StatePendingAuth
	StateAuthorizing
	StateApproved
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StatePendingAuth:
		return "pending_auth"
	case StateAuthorizing:
		return "authorizing"
	case StateApproved:
		return "approved"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition reports an operation not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// =============================================================================
// CONFIGURATION
// =============================================================================

type Config struct {
	Earnings *engine.Earnings
	Recorder Recorder
	Notifier Notifier

	// NotifierFor resolves a per-user notifier, overriding Notifier when
	// set. Lets one registry serve many users with separate queues.
	NotifierFor func(engine.UserID) Notifier

	// NewAuthenticator builds a fresh step-up factor for each auth
	// attempt. May be nil when every user has the factor disabled.
	NewAuthenticator func() Authenticator

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

// =============================================================================
// WORKFLOW
// =============================================================================

type Workflow struct {
	mu sync.Mutex

	user     engine.User
	employer engine.Employer
	cfg      Config

	state  State
	amount engine.Money
	method engine.PaymentMethod

	authenticator Authenticator // current attempt's factor; nil outside Authorizing
	authGen       int
	authCancel    context.CancelFunc
	authDone      chan struct{}

	tx *engine.Transaction
}

func New(user engine.User, employer engine.Employer, cfg Config) *Workflow {
	if cfg.NotifierFor != nil {
		cfg.Notifier = cfg.NotifierFor(user.ID)
	}
	return &Workflow{
		user:     user,
		employer: employer,
		cfg:      cfg,
		state:    StateDraft,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Active reports whether the workflow occupies the user's single slot:
// suspended awaiting step-up authentication.
func (w *Workflow) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == StatePendingAuth || w.state == StateAuthorizing
}

// Amount returns the candidate amount. Preserved across cancellation so the
// user can retry without re-entering it.
func (w *Workflow) Amount() engine.Money {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amount
}

// Result returns the completed transaction, if any.
func (w *Workflow) Result() *engine.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tx
}

// Authenticator exposes the current attempt's step-up factor so the
// transport layer can deliver the user's confirmation to it. Returns nil
// when no attempt is in flight; a confirmation then has nothing to land on.
func (w *Workflow) Authenticator() Authenticator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.authenticator
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Submit validates the candidate amount against the advanceable ceiling and
// either suspends for step-up authentication or approves immediately.
func (w *Workflow) Submit(ctx context.Context, amount engine.Money, method engine.PaymentMethod) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StatePendingAuth || w.state == StateAuthorizing {
		return w.state, engine.ErrWorkflowAlreadyActive
	}
	if w.state != StateDraft {
		return w.state, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, w.state)
	}

	if !amount.IsPositive() {
		w.notifyError("Enter an amount greater than zero.")
		return w.state, engine.ErrInvalidAmount
	}
	if !engine.ValidPaymentMethod(method) {
		w.notifyError("Unsupported payment method.")
		return w.state, fmt.Errorf("%w: payment method %q", engine.ErrInvalidAmount, method)
	}

	ceiling := w.cfg.Earnings.AdvanceableCeiling(w.user, w.employer, w.cfg.now())
	if amount.GreaterThan(ceiling) {
		err := &engine.CeilingExceededError{UserID: w.user.ID, Requested: amount, Ceiling: ceiling}
		w.notifyError(fmt.Sprintf("Requested %s exceeds your advanceable amount of %s.", amount, ceiling))
		return w.state, err
	}

	w.amount = amount
	w.method = method

	if w.user.BiometricEnabled {
		w.state = StatePendingAuth
		return w.state, nil
	}

	w.state = StateApproved
	if err := w.completeLocked(ctx); err != nil {
		return w.state, err
	}
	return w.state, nil
}

// BeginAuth builds a fresh step-up factor, invokes it, and suspends the
// workflow. The factor's result arrives asynchronously; AwaitDecision
// observes it. The factor is scoped to this attempt: cancellation discards
// it along with any resolution delivered to it afterwards.
func (w *Workflow) BeginAuth(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StatePendingAuth {
		return fmt.Errorf("%w: begin auth from %s", ErrInvalidTransition, w.state)
	}
	if w.cfg.NewAuthenticator == nil {
		w.state = StateFailed
		w.notifyError("Step-up authentication is unavailable.")
		return engine.ErrAuthFailed
	}

	w.state = StateAuthorizing
	w.authGen++
	gen := w.authGen

	factor := w.cfg.NewAuthenticator()
	w.authenticator = factor

	authCtx, cancel := context.WithCancel(ctx)
	w.authCancel = cancel
	done := make(chan struct{})
	w.authDone = done

	go func() {
		defer close(done)
		approved, err := factor.Invoke(authCtx)
		w.resolveAuth(ctx, gen, approved, err)
	}()

	return nil
}

// Cancel aborts an in-flight step-up authentication. Only Authorizing is
// cancellable. The workflow returns to Draft with the amount preserved,
// and any step-up result that arrives afterwards is discarded.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateAuthorizing {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, w.state)
	}

	w.authGen++ // invalidate the outstanding attempt
	w.authenticator = nil
	if w.authCancel != nil {
		w.authCancel()
		w.authCancel = nil
	}
	w.state = StateDraft
	return nil
}

// AwaitDecision blocks until the current step-up attempt resolves or ctx
// expires, and returns the resulting state.
func (w *Workflow) AwaitDecision(ctx context.Context) (State, error) {
	w.mu.Lock()
	done := w.authDone
	state := w.state
	w.mu.Unlock()

	if state != StateAuthorizing || done == nil {
		return state, nil
	}

	select {
	case <-ctx.Done():
		return w.State(), ctx.Err()
	case <-done:
		return w.State(), nil
	}
}

func (w *Workflow) resolveAuth(ctx context.Context, gen int, approved bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A stale generation means the user cancelled while the factor was
	// in flight. The workflow is already back in Draft; discard.
	if gen != w.authGen || w.state != StateAuthorizing {
		return
	}
	w.authenticator = nil
	w.authCancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Session torn down mid-auth. Restore Draft, amount preserved.
			w.state = StateDraft
			return
		}
		w.state = StateFailed
		w.notifyError("Step-up authentication failed. Your advance was not processed.")
		return
	}

	if !approved {
		w.state = StateFailed
		w.notifyError("Step-up authentication was rejected. Your advance was not processed.")
		return
	}

	w.state = StateApproved
	_ = w.completeLocked(ctx)
}

// completeLocked runs the Approved -> Completed transition: re-checks the
// ceiling at the moment of approval, computes the fee, and records the
// transaction atomically. Any failure restores Draft and emits an error
// notification; no partial Transaction is ever visible.
func (w *Workflow) completeLocked(ctx context.Context) error {
	now := w.cfg.now()

	// The ceiling is a function of time: checked here, never cached.
	ceiling := w.cfg.Earnings.AdvanceableCeiling(w.user, w.employer, now)
	if w.amount.GreaterThan(ceiling) {
		w.state = StateDraft
		err := &engine.CeilingExceededError{UserID: w.user.ID, Requested: w.amount, Ceiling: ceiling}
		w.notifyError(fmt.Sprintf("Requested %s exceeds your advanceable amount of %s.", w.amount, ceiling))
		return err
	}

	fee, err := engine.ComputeFee(w.amount, w.employer.FeeStructure)
	if err != nil {
		w.state = StateDraft
		w.notifyError("Could not compute the advance fee.")
		return err
	}

	tx := engine.Transaction{
		ID:            engine.TransactionID(idgen.NewAt(now)),
		UserID:        w.user.ID,
		Type:          engine.TxAdvance,
		Status:        engine.StatusCompleted,
		Amount:        w.amount,
		Fee:           fee,
		PaymentMethod: w.method,
		CreatedAt:     now,
	}

	if err := w.cfg.Recorder.RecordTransaction(ctx, tx); err != nil {
		w.state = StateDraft
		w.notifyError("Your advance could not be recorded. Please try again.")
		return fmt.Errorf("failed to record advance transaction: %w", err)
	}

	w.tx = &tx
	w.state = StateCompleted
	if w.cfg.Notifier != nil {
		w.cfg.Notifier.Success(fmt.Sprintf("Advance of %s approved. Fee: %s", tx.Amount, tx.Fee))
	}
	return nil
}

func (w *Workflow) notifyError(message string) {
	if w.cfg.Notifier != nil {
		w.cfg.Notifier.Error(message)
	}
}
