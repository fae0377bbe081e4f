/*
handlers.go - HTTP API handlers for the wage engine

PURPOSE:
  Exposes the earned-wage-access engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Session:
    POST   /api/login                    Authenticate, mint session token
    POST   /api/logout                   Tear down session state
    GET    /api/me                       Current user

  Earnings & wellness:
    GET    /api/earnings                 Earned-to-date and advanceable ceiling
    GET    /api/wellness                 Financial wellness score

  Advances:
    GET    /api/advances                 Current workflow state
    POST   /api/advances                 Submit an advance request
    POST   /api/advances/authorize       Start step-up authentication
    POST   /api/advances/confirm         Deliver the step-up outcome
    POST   /api/advances/cancel          Cancel an in-flight authorization

  Marketplace:
    GET    /api/vouchers                 Search the catalog
    POST   /api/vouchers/{id}/purchase   Purchase one unit

  Ledger & notifications:
    GET    /api/transactions             Own transactions, newest first
    GET    /api/notifications            Pending notifications
    DELETE /api/notifications/{id}       Dismiss one

  Admin (JWT admin role required):
    GET/POST /api/admin/users, /api/admin/employers, /api/admin/vouchers
    GET    /api/admin/transactions
    POST   /api/admin/transactions/{id}/status
    POST   /api/admin/vouchers/{id}/restock

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid credentials or session
  - 403: Role violation
  - 404: Resource not found
  - 409: Workflow conflict, stock exhaustion
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Session verification
  - server.go: Router setup
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/payquick/wage-engine/advance"
	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/market"
	"github.com/payquick/wage-engine/notify"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Backend backend.Backend
	Signer  *auth.Signer

	// PeriodPolicy defaults to the calendar-month anchor.
	PeriodPolicy engine.PeriodPolicy

	// NotificationTTL defaults to notify.DefaultTTL.
	NotificationTTL time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Backend  backend.Backend
	Signer   *auth.Signer
	Earnings *engine.Earnings
	Advances *advance.Registry
	Market   *market.Marketplace

	clock func() time.Time
	ttl   time.Duration

	// Per-user notification queues, created on first use and closed at
	// logout. Expiry timers inside them never block workflow operations.
	mu     sync.Mutex
	queues map[engine.UserID]*notify.Queue
}

// NewHandler creates a handler and wires the advance registry and
// marketplace around the given backend.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.PeriodPolicy.Anchor == "" {
		cfg.PeriodPolicy = engine.DefaultPeriodPolicy()
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = notify.DefaultTTL
	}

	h := &Handler{
		Backend: cfg.Backend,
		Signer:  cfg.Signer,
		clock:   cfg.Clock,
		ttl:     cfg.NotificationTTL,
		queues:  make(map[engine.UserID]*notify.Queue),
	}
	h.Earnings = engine.NewEarnings(cfg.PeriodPolicy)

	h.Advances = advance.NewRegistry(advance.Config{
		Earnings:         h.Earnings,
		Recorder:         cfg.Backend,
		NotifierFor:      func(id engine.UserID) advance.Notifier { return h.queueFor(id) },
		NewAuthenticator: func() advance.Authenticator { return auth.NewStepUpGate() },
		Clock:            cfg.Clock,
	})

	h.Market = market.New(market.Config{
		Backend:     cfg.Backend,
		NotifierFor: func(id engine.UserID) market.Notifier { return h.queueFor(id) },
		Clock:       cfg.Clock,
	})

	return h
}

func (h *Handler) now() time.Time {
	if h.clock != nil {
		return h.clock()
	}
	return time.Now().UTC()
}

// queueFor returns the user's notification queue, creating it on demand.
func (h *Handler) queueFor(id engine.UserID) *notify.Queue {
	h.mu.Lock()
	defer h.mu.Unlock()

	q, ok := h.queues[id]
	if !ok {
		q = notify.NewQueue(h.ttl)
		h.queues[id] = q
	}
	return q
}

// dropSession discards the user's workflow and notification queue.
func (h *Handler) dropSession(id engine.UserID) {
	h.Advances.Drop(id)

	h.mu.Lock()
	q, ok := h.queues[id]
	delete(h.queues, id)
	h.mu.Unlock()

	if ok {
		q.Close()
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Login authenticates by email/password.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	session, err := h.Backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token: session.Token,
		User:  toUserDTO(session.User),
	})
}

// Logout tears down session-scoped state. The token itself simply expires.
// POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	h.dropSession(claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	user, err := h.Backend.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// EARNINGS & WELLNESS
// =============================================================================

// GetEarnings returns the current period's earned-to-date summary.
// GET /api/earnings
func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	user, employer, err := h.loadUserEmployer(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to load earnings", err)
		return
	}

	now := h.now()
	periodStart := h.Earnings.Period.PeriodStart(now, employer)

	writeJSON(w, http.StatusOK, EarningsDTO{
		PeriodStart:  periodStart.Format("2006-01-02"),
		ElapsedDays:  engine.ElapsedWorkingDays(now, periodStart),
		EarnedToDate: h.Earnings.EarnedToDate(user, employer, now).String(),
		Advanceable:  h.Earnings.AdvanceableCeiling(user, employer, now).String(),
		AsOf:         now.Format(time.RFC3339),
	})
}

// GetWellness returns the financial wellness score.
// GET /api/wellness
func (h *Handler) GetWellness(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	score, err := h.Backend.GetWellnessScore(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to load wellness score", err)
		return
	}
	writeJSON(w, http.StatusOK, toWellnessDTO(score))
}

// =============================================================================
// ADVANCE WORKFLOW
// =============================================================================

// GetAdvance reports the current workflow state.
// GET /api/advances
func (h *Handler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	workflow, ok := h.Advances.Get(claims.UserID)
	if !ok {
		writeJSON(w, http.StatusOK, WorkflowDTO{State: advance.StateDraft.String()})
		return
	}
	writeJSON(w, http.StatusOK, toWorkflowDTO(workflow))
}

// SubmitAdvance validates and submits an advance request.
// POST /api/advances
func (h *Handler) SubmitAdvance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	user, employer, err := h.loadUserEmployer(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to load user", err)
		return
	}

	method := engine.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = user.PreferredPaymentMethod
	}

	workflow, err := h.Advances.Begin(user, employer)
	if err != nil {
		writeDomainError(w, "Failed to start advance", err)
		return
	}

	_, err = workflow.Submit(r.Context(), engine.Money{Value: amount}, method)
	if err != nil {
		writeDomainError(w, "Advance rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkflowDTO(workflow))
}

// AuthorizeAdvance starts step-up authentication.
// POST /api/advances/authorize
func (h *Handler) AuthorizeAdvance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	workflow, ok := h.Advances.Get(claims.UserID)
	if !ok {
		writeError(w, http.StatusNotFound, "No advance in progress", nil)
		return
	}

	// The authorization outlives this request: its result arrives via
	// the confirm endpoint. Deliberately not bound to r.Context().
	if err := workflow.BeginAuth(context.Background()); err != nil {
		writeDomainError(w, "Failed to start authorization", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkflowDTO(workflow))
}

// ConfirmAdvance delivers the step-up factor's outcome and waits for the
// workflow to settle.
// POST /api/advances/confirm
func (h *Handler) ConfirmAdvance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	var req ConfirmAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	workflow, ok := h.Advances.Get(claims.UserID)
	if !ok {
		writeError(w, http.StatusNotFound, "No advance in progress", nil)
		return
	}

	gate, ok := workflow.Authenticator().(interface{ Resolve(bool) })
	if !ok {
		writeError(w, http.StatusConflict, "Advance is not awaiting authorization", nil)
		return
	}
	gate.Resolve(req.Approved)

	if _, err := workflow.AwaitDecision(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Authorization did not settle", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkflowDTO(workflow))
}

// CancelAdvance cancels an in-flight authorization.
// POST /api/advances/cancel
func (h *Handler) CancelAdvance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	workflow, ok := h.Advances.Get(claims.UserID)
	if !ok {
		writeError(w, http.StatusNotFound, "No advance in progress", nil)
		return
	}

	if err := workflow.Cancel(); err != nil {
		writeError(w, http.StatusConflict, "Advance is not cancellable in its current state", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkflowDTO(workflow))
}

func toWorkflowDTO(w *advance.Workflow) WorkflowDTO {
	dto := WorkflowDTO{State: w.State().String()}
	if amount := w.Amount(); amount.IsPositive() {
		dto.Amount = amount.String()
	}
	if tx := w.Result(); tx != nil {
		t := toTransactionDTO(*tx)
		dto.Transaction = &t
	}
	return dto
}

// =============================================================================
// MARKETPLACE
// =============================================================================

// SearchVouchers filters the catalog.
// GET /api/vouchers?category=...&q=...
func (h *Handler) SearchVouchers(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	term := r.URL.Query().Get("q")

	vouchers, err := h.Market.Search(r.Context(), category, term)
	if err != nil {
		writeDomainError(w, "Failed to search vouchers", err)
		return
	}
	writeJSON(w, http.StatusOK, toVoucherDTOs(vouchers))
}

// PurchaseVoucher buys one unit of a voucher.
// POST /api/vouchers/{id}/purchase
func (h *Handler) PurchaseVoucher(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	voucherID := engine.VoucherID(chi.URLParam(r, "id"))

	user, err := h.Backend.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to load user", err)
		return
	}

	tx, err := h.Market.Purchase(r.Context(), user, voucherID)
	if err != nil {
		writeDomainError(w, "Purchase failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// LEDGER & NOTIFICATIONS
// =============================================================================

// ListTransactions returns the user's transactions, newest first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)

	txs, err := h.Backend.ListTransactions(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// ListNotifications returns pending notifications in display order.
// GET /api/notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	writeJSON(w, http.StatusOK, toNotificationDTOs(h.queueFor(claims.UserID).List()))
}

// DismissNotification removes a notification. Dismissing one that already
// expired is a no-op.
// DELETE /api/notifications/{id}
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	h.queueFor(claims.UserID).Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// AdminListUsers returns all users.
// GET /api/admin/users
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Backend.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdminSaveUser creates or updates a user.
// POST /api/admin/users
func (h *Handler) AdminSaveUser(w http.ResponseWriter, r *http.Request) {
	var req SaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployerID == "" {
		writeError(w, http.StatusBadRequest, "id and employer_id are required", nil)
		return
	}

	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil || !rate.IsPositive() {
		writeError(w, http.StatusBadRequest, "hourly_rate must be a positive decimal", err)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD", err)
		return
	}

	method := engine.PaymentMethod(req.PreferredPaymentMethod)
	if !engine.ValidPaymentMethod(method) {
		writeError(w, http.StatusBadRequest, "Unsupported payment method", nil)
		return
	}

	user := engine.User{
		ID:                     engine.UserID(req.ID),
		Name:                   req.Name,
		Email:                  req.Email,
		EmployerID:             engine.EmployerID(req.EmployerID),
		HourlyRate:             rate,
		StartDate:              startDate,
		IsFullTime:             req.IsFullTime,
		BiometricEnabled:       req.BiometricEnabled,
		PreferredPaymentMethod: method,
		WellnessScore:          req.WellnessScore,
		CreatedAt:              h.now(),
	}

	if err := h.Backend.SaveUser(r.Context(), user); err != nil {
		writeDomainError(w, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// AdminListEmployers returns all employers.
// GET /api/admin/employers
func (h *Handler) AdminListEmployers(w http.ResponseWriter, r *http.Request) {
	employers, err := h.Backend.ListEmployers(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list employers", err)
		return
	}

	dtos := make([]EmployerDTO, len(employers))
	for i, e := range employers {
		dtos[i] = toEmployerDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdminSaveEmployer creates or updates an employer and its policy.
// POST /api/admin/employers
func (h *Handler) AdminSaveEmployer(w http.ResponseWriter, r *http.Request) {
	var req EmployerDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}

	advanceCap, err := decimal.NewFromString(req.AdvanceCap)
	if err != nil || advanceCap.IsNegative() || advanceCap.GreaterThan(decimal.NewFromInt(1)) {
		writeError(w, http.StatusBadRequest, "advance_cap must be a fraction between 0 and 1", err)
		return
	}

	feeFlat, err1 := decimal.NewFromString(req.FeeFlat)
	feePct, err2 := decimal.NewFromString(req.FeePercentage)
	feeMax, err3 := decimal.NewFromString(req.FeeMax)
	if err1 != nil || err2 != nil || err3 != nil {
		writeError(w, http.StatusBadRequest, "Fee structure fields must be decimals", nil)
		return
	}

	employer := engine.Employer{
		ID:         engine.EmployerID(req.ID),
		Name:       req.Name,
		PayrollDay: req.PayrollDay,
		AdvanceCap: advanceCap,
		FeeStructure: engine.FeeStructure{
			Flat:       engine.Money{Value: feeFlat},
			Percentage: feePct,
			Max:        engine.Money{Value: feeMax},
		},
		CreatedAt: h.now(),
	}

	if err := h.Backend.SaveEmployer(r.Context(), employer); err != nil {
		writeDomainError(w, "Failed to save employer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployerDTO(employer))
}

// AdminListTransactions returns every transaction in the ledger.
// GET /api/admin/transactions
func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Backend.ListAllTransactions(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// AdminUpdateTransactionStatus transitions a transaction's status.
// POST /api/admin/transactions/{id}/status
func (h *Handler) AdminUpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := engine.TransactionID(chi.URLParam(r, "id"))

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Backend.UpdateTransactionStatus(r.Context(), id, engine.TransactionStatus(req.Status))
	if err != nil {
		writeDomainError(w, "Failed to update status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminSaveVoucher creates or updates a catalog entry.
// POST /api/admin/vouchers
func (h *Handler) AdminSaveVoucher(w http.ResponseWriter, r *http.Request) {
	var req SaveVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}

	price, err1 := decimal.NewFromString(req.Price)
	discount, err2 := decimal.NewFromString(req.Discount)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "price and discount must be decimals", nil)
		return
	}

	voucher := engine.Voucher{
		ID:       engine.VoucherID(req.ID),
		Provider: req.Provider,
		Name:     req.Name,
		Category: req.Category,
		Price:    engine.Money{Value: price},
		Discount: discount,
		Stock:    req.Stock,
	}

	if err := h.Backend.SaveVoucher(r.Context(), voucher); err != nil {
		writeDomainError(w, "Failed to save voucher", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVoucherDTO(voucher))
}

// AdminRestockVoucher adds one unit of stock.
// POST /api/admin/vouchers/{id}/restock
func (h *Handler) AdminRestockVoucher(w http.ResponseWriter, r *http.Request) {
	id := engine.VoucherID(chi.URLParam(r, "id"))

	if err := h.Backend.RestoreVoucherStock(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to restock voucher", err)
		return
	}

	voucher, err := h.Backend.GetVoucher(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load voucher", err)
		return
	}
	writeJSON(w, http.StatusOK, toVoucherDTO(voucher))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadUserEmployer(ctx context.Context, id engine.UserID) (engine.User, engine.Employer, error) {
	user, err := h.Backend.GetUser(ctx, id)
	if err != nil {
		return engine.User{}, engine.Employer{}, err
	}
	employer, err := h.Backend.GetEmployer(ctx, user.EmployerID)
	if err != nil {
		return engine.User{}, engine.Employer{}, err
	}
	return user, employer, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP status codes and stable
// machine-readable codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	code := ""

	switch {
	case errors.Is(err, engine.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case engine.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrWorkflowAlreadyActive):
		status, code = http.StatusConflict, "workflow_already_active"
	case errors.Is(err, engine.ErrOutOfStock):
		status, code = http.StatusConflict, "out_of_stock"
	case errors.Is(err, engine.ErrAmountExceedsCeiling):
		status, code = http.StatusBadRequest, "amount_exceeds_ceiling"
	case errors.Is(err, engine.ErrInvalidAmount):
		status, code = http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, engine.ErrInvalidStatusTransition):
		status, code = http.StatusBadRequest, "invalid_status_transition"
	case errors.Is(err, engine.ErrAuthFailed):
		status, code = http.StatusForbidden, "auth_failed"
	}

	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
