/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PayQuick wage engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize the backend (SQLite store or in-memory fixture)
  3. Create API handler with dependencies
  4. Start the repayment scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port          HTTP server port (default: 8080)
  -db            SQLite database path (default: wage.db)
                 Use ":memory:" for in-memory, "fixture" for demo data
  -period        Pay-period anchor: calendar_month or payroll_day
  -scheduler     Enable the payroll-day repayment scheduler

ENVIRONMENT:
  SESSION_SECRET   HMAC secret for session tokens (required outside demo)
  Loaded from .env when present; flags win over defaults, env wins for
  secrets.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler and close the store
  4. Exit

EXAMPLES:
  # Run against the seeded demo fixture
  ./server -db=fixture

  # Run with a durable database
  ./server -db="./data/wage.db"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Repayment scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/payquick/wage-engine/api"
	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "wage.db", `SQLite path, ":memory:", or "fixture" for demo data`)
	periodAnchor := flag.String("period", "calendar_month", "pay-period anchor: calendar_month or payroll_day")
	schedulerOn := flag.Bool("scheduler", true, "enable the payroll-day repayment scheduler")
	flag.Parse()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "payquick-dev-secret"
		log.Println("[Server] SESSION_SECRET not set, using development secret")
	}
	signer := auth.NewSigner([]byte(secret), "payquick-wage-engine", 12*time.Hour)

	// Backend: durable store with fixture fallback, or fixture only.
	fixture := backend.NewFixture(signer)
	var be backend.Backend
	var store *sqlite.Store
	if *dbPath == "fixture" {
		be = fixture
		log.Println("[Server] Using in-memory fixture backend with demo data")
	} else {
		var err error
		store, err = sqlite.New(*dbPath, signer)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()
		be = backend.NewResilient(store, fixture, log.Default())
	}

	policy := engine.PeriodPolicy{Anchor: engine.PeriodAnchor(*periodAnchor)}
	if policy.Anchor != engine.AnchorCalendarMonth && policy.Anchor != engine.AnchorPayrollDay {
		log.Fatalf("Unknown period anchor %q", *periodAnchor)
	}

	handler := api.NewHandler(api.HandlerConfig{
		Backend:      be,
		Signer:       signer,
		PeriodPolicy: policy,
	})

	scheduler := api.NewRepaymentScheduler(be, handler.Earnings)
	scheduler.Enabled = *schedulerOn
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Listening on http://localhost:%d", *port)
		log.Printf("[Server] API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[Server] Stopped")
}
