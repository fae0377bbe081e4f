/*
scheduler.go - Automated payroll-day repayment scheduler

PURPOSE:
  On payroll day the employer recovers each advance plus its fee from
  the wage disbursement. The scheduler periodically scans the ledger
  for completed advances whose pay period has ended and records the
  matching repayment transaction.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - An advance is due once `now` is in a later period than its creation
  - Idempotent: a repayment carries the advance's ID as ReferenceID,
    and an advance with an existing repayment reference is skipped
  - Repayments are recorded as completed; recovery from payroll is not
    something the user can fail

USAGE:
  scheduler := NewRepaymentScheduler(backend, earnings)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - engine/period.go: Period boundaries that decide when an advance is due
  - engine/types.go: TotalRepayable
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/idgen"
)

// RepaymentScheduler records repayment transactions for matured advances.
type RepaymentScheduler struct {
	Backend       backend.Backend
	Earnings      *engine.Earnings
	CheckInterval time.Duration
	Enabled       bool

	// Clock defaults to time.Now.
	Clock func() time.Time

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRepaymentScheduler creates a new scheduler.
func NewRepaymentScheduler(b backend.Backend, earnings *engine.Earnings) *RepaymentScheduler {
	return &RepaymentScheduler{
		Backend:       b,
		Earnings:      earnings,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

func (rs *RepaymentScheduler) now() time.Time {
	if rs.Clock != nil {
		return rs.Clock()
	}
	return time.Now().UTC()
}

// Start begins the scheduler.
func (rs *RepaymentScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RepaymentScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RepaymentScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndProcess()
		case <-rs.stop:
			return
		}
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *RepaymentScheduler) RunNow() {
	rs.checkAndProcess()
}

func (rs *RepaymentScheduler) checkAndProcess() {
	ctx := context.Background()
	now := rs.now()

	users, err := rs.Backend.ListUsers(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing users: %v", err)
		return
	}

	processed := 0
	for _, user := range users {
		employer, err := rs.Backend.GetEmployer(ctx, user.EmployerID)
		if err != nil {
			log.Printf("[Scheduler] Error loading employer for %s: %v", user.ID, err)
			continue
		}

		n, err := rs.processUser(ctx, user, employer, now)
		if err != nil {
			log.Printf("[Scheduler] Error processing repayments for %s: %v", user.ID, err)
			continue
		}
		processed += n
	}

	if processed > 0 {
		log.Printf("[Scheduler] Recorded %d repayment(s)", processed)
	}
}

// processUser records repayments for the user's matured advances.
func (rs *RepaymentScheduler) processUser(ctx context.Context, user engine.User, employer engine.Employer, now time.Time) (int, error) {
	txs, err := rs.Backend.ListTransactions(ctx, user.ID)
	if err != nil {
		return 0, err
	}

	// Advances already settled by an earlier run.
	repaid := make(map[string]bool)
	for _, tx := range txs {
		if tx.Type == engine.TxRepayment && tx.ReferenceID != "" {
			repaid[tx.ReferenceID] = true
		}
	}

	currentPeriod := rs.Earnings.Period.PeriodStart(now, employer)

	recorded := 0
	for _, tx := range txs {
		if tx.Type != engine.TxAdvance || tx.Status != engine.StatusCompleted {
			continue
		}
		if repaid[string(tx.ID)] {
			continue
		}
		// Due once the advance's period has ended: its creation time
		// precedes the current period's start.
		if !tx.CreatedAt.Before(currentPeriod) {
			continue
		}

		repayment := engine.Transaction{
			ID:            engine.TransactionID(idgen.NewAt(now)),
			UserID:        user.ID,
			Type:          engine.TxRepayment,
			Status:        engine.StatusCompleted,
			Amount:        tx.TotalRepayable(),
			Fee:           engine.ZeroMoney(),
			PaymentMethod: tx.PaymentMethod,
			ReferenceID:   string(tx.ID),
			CreatedAt:     now,
		}

		if err := rs.Backend.RecordTransaction(ctx, repayment); err != nil {
			return recorded, err
		}
		recorded++
	}
	return recorded, nil
}
