/*
Package sqlite provides the SQLite-backed Backend implementation.

PURPOSE:
  Durable persistence for users, employers, the transaction ledger, and
  the voucher catalog. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The transactions table is append-only:
  - RecordTransaction is the only INSERT
  - UpdateTransactionStatus is the only UPDATE, and it validates the
    transition before writing
  - No DELETE statements on transactions

STOCK ATOMICITY:
  DecrementVoucherStock uses a conditional UPDATE:

    UPDATE vouchers SET stock = stock - 1 WHERE id = ? AND stock > 0

  so two concurrent purchasers of the last unit yield exactly one
  affected row; the loser gets ErrOutOfStock.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/wage.db", signer)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - backend/backend.go: The Backend interface this implements
  - backend/fixture.go: In-memory implementation with the same contracts
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/payquick/wage-engine/auth"
	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
)

// Store implements backend.Backend on SQLite.
type Store struct {
	db     *sql.DB
	minter backend.TokenMinter
	mu     sync.RWMutex
}

// New opens (or creates) a SQLite store at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string, minter backend.TokenMinter) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, minter: minter}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		payroll_day INTEGER NOT NULL CHECK (payroll_day BETWEEN 1 AND 31),
		advance_cap TEXT NOT NULL,
		fee_flat TEXT NOT NULL,
		fee_percentage TEXT NOT NULL,
		fee_max TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		employer_id TEXT NOT NULL REFERENCES employers(id),
		hourly_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		is_full_time BOOLEAN NOT NULL DEFAULT TRUE,
		biometric_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		preferred_payment_method TEXT NOT NULL,
		wellness_score INTEGER,
		password_hash TEXT NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_employer ON users(employer_id);

	-- Append-only ledger: only status is ever updated.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		amount TEXT NOT NULL,
		fee TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		voucher_id TEXT,
		voucher_code TEXT,
		voucher_expiry TEXT,
		reference_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_created
		ON transactions(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_type
		ON transactions(type);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS vouchers (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price TEXT NOT NULL,
		discount TEXT NOT NULL,
		stock INTEGER NOT NULL CHECK (stock >= 0)
	);

	CREATE INDEX IF NOT EXISTS idx_vouchers_category ON vouchers(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func (s *Store) Login(ctx context.Context, email, password string) (backend.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		hash    string
		isAdmin bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT password_hash, is_admin FROM users WHERE email = ?", email,
	).Scan(&hash, &isAdmin)
	if err == sql.ErrNoRows {
		return backend.Session{}, engine.ErrInvalidCredentials
	}
	if err != nil {
		return backend.Session{}, fmt.Errorf("failed to look up credentials: %w", err)
	}

	if hash == "" || !auth.CheckPassword(hash, password) {
		return backend.Session{}, engine.ErrInvalidCredentials
	}

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return backend.Session{}, err
	}

	role := auth.RoleEmployee
	if isAdmin {
		role = auth.RoleAdmin
	}

	token, err := s.minter.Mint(user.ID, role)
	if err != nil {
		return backend.Session{}, fmt.Errorf("failed to mint session token: %w", err)
	}
	return backend.Session{Token: token, User: user}, nil
}

// SetCredentials stores the bcrypt hash and role flag for a user.
// Onboarding is external to the core; this serves seeding and admin tools.
func (s *Store) SetCredentials(ctx context.Context, id engine.UserID, passwordHash string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, is_admin = ? WHERE id = ?",
		passwordHash, isAdmin, string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to set credentials: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, engine.ErrNotFound)
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

const userColumns = `id, name, email, employer_id, hourly_rate, start_date,
	is_full_time, biometric_enabled, preferred_payment_method, wellness_score, created_at`

func (s *Store) GetUser(ctx context.Context, id engine.UserID) (engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", string(id))
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return engine.User{}, fmt.Errorf("user %s: %w", id, engine.ErrNotFound)
	}
	return user, err
}

func (s *Store) userByEmail(ctx context.Context, email string) (engine.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return engine.User{}, fmt.Errorf("user %s: %w", email, engine.ErrNotFound)
	}
	return user, err
}

func (s *Store) ListUsers(ctx context.Context) ([]engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []engine.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) SaveUser(ctx context.Context, user engine.User) error {
	if user.WellnessScore != nil && !engine.ValidWellnessScore(*user.WellnessScore) {
		return fmt.Errorf("wellness score %d out of range: %w", *user.WellnessScore, engine.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users
		(id, name, email, employer_id, hourly_rate, start_date, is_full_time,
		 biometric_enabled, preferred_payment_method, wellness_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			employer_id = excluded.employer_id,
			hourly_rate = excluded.hourly_rate,
			start_date = excluded.start_date,
			is_full_time = excluded.is_full_time,
			biometric_enabled = excluded.biometric_enabled,
			preferred_payment_method = excluded.preferred_payment_method,
			wellness_score = excluded.wellness_score
	`

	var score sql.NullInt64
	if user.WellnessScore != nil {
		score = sql.NullInt64{Int64: int64(*user.WellnessScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		string(user.ID), user.Name, user.Email, string(user.EmployerID),
		user.HourlyRate.String(), user.StartDate.UTC().Format(time.RFC3339),
		user.IsFullTime, user.BiometricEnabled, string(user.PreferredPaymentMethod),
		score, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("employer %s: %w", user.EmployerID, engine.ErrNotFound)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (engine.User, error) {
	var (
		user       engine.User
		rate       string
		startDate  string
		createdAt  string
		score      sql.NullInt64
		method     string
		employerID string
	)

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &employerID, &rate, &startDate,
		&user.IsFullTime, &user.BiometricEnabled, &method, &score, &createdAt,
	)
	if err != nil {
		return user, err
	}

	user.EmployerID = engine.EmployerID(employerID)
	user.HourlyRate = mustDecimal(rate)
	if user.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return user, fmt.Errorf("failed to parse user start_date: %w", err)
	}
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return user, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	user.PreferredPaymentMethod = engine.PaymentMethod(method)
	if score.Valid {
		v := int(score.Int64)
		user.WellnessScore = &v
	}
	return user, nil
}

// =============================================================================
// EMPLOYERS
// =============================================================================

func (s *Store) GetEmployer(ctx context.Context, id engine.EmployerID) (engine.Employer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, payroll_day, advance_cap, fee_flat, fee_percentage, fee_max, created_at
		FROM employers WHERE id = ?`, string(id))
	employer, err := scanEmployer(row)
	if err == sql.ErrNoRows {
		return engine.Employer{}, fmt.Errorf("employer %s: %w", id, engine.ErrNotFound)
	}
	return employer, err
}

func (s *Store) ListEmployers(ctx context.Context) ([]engine.Employer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, payroll_day, advance_cap, fee_flat, fee_percentage, fee_max, created_at
		FROM employers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employers: %w", err)
	}
	defer rows.Close()

	var employers []engine.Employer
	for rows.Next() {
		employer, err := scanEmployer(rows)
		if err != nil {
			return nil, err
		}
		employers = append(employers, employer)
	}
	return employers, rows.Err()
}

func (s *Store) SaveEmployer(ctx context.Context, employer engine.Employer) error {
	if employer.PayrollDay < 1 || employer.PayrollDay > 31 {
		return fmt.Errorf("payroll day %d out of range: %w", employer.PayrollDay, engine.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employers
		(id, name, payroll_day, advance_cap, fee_flat, fee_percentage, fee_max, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			payroll_day = excluded.payroll_day,
			advance_cap = excluded.advance_cap,
			fee_flat = excluded.fee_flat,
			fee_percentage = excluded.fee_percentage,
			fee_max = excluded.fee_max
	`

	_, err := s.db.ExecContext(ctx, query,
		string(employer.ID), employer.Name, employer.PayrollDay,
		employer.AdvanceCap.String(),
		employer.FeeStructure.Flat.Value.String(),
		employer.FeeStructure.Percentage.String(),
		employer.FeeStructure.Max.Value.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employer: %w", err)
	}
	return nil
}

func scanEmployer(row rowScanner) (engine.Employer, error) {
	var (
		e          engine.Employer
		advanceCap string
		flat       string
		percentage string
		feeMax     string
		createdAt  string
	)

	err := row.Scan(&e.ID, &e.Name, &e.PayrollDay, &advanceCap, &flat, &percentage, &feeMax, &createdAt)
	if err != nil {
		return e, err
	}

	e.AdvanceCap = mustDecimal(advanceCap)
	e.FeeStructure = engine.FeeStructure{
		Flat:       engine.Money{Value: mustDecimal(flat)},
		Percentage: mustDecimal(percentage),
		Max:        engine.Money{Value: mustDecimal(feeMax)},
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return e, fmt.Errorf("failed to parse employer created_at: %w", err)
	}
	return e, nil
}

// =============================================================================
// TRANSACTIONS - Append-only
// =============================================================================

const txColumns = `id, user_id, type, status, amount, fee, payment_method,
	voucher_id, voucher_code, voucher_expiry, reference_id, created_at`

func (s *Store) ListTransactions(ctx context.Context, userID engine.UserID) ([]engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		string(userID))
}

func (s *Store) ListAllTransactions(ctx context.Context) ([]engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx,
		"SELECT "+txColumns+" FROM transactions ORDER BY created_at DESC, id DESC")
}

func (s *Store) RecordTransaction(ctx context.Context, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions
		(id, user_id, type, status, amount, fee, payment_method,
		 voucher_id, voucher_code, voucher_expiry, reference_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var voucherID, voucherCode, voucherExpiry sql.NullString
	if tx.VoucherDetails != nil {
		voucherID = nullString(string(tx.VoucherDetails.VoucherID))
		voucherCode = nullString(tx.VoucherDetails.Code)
		voucherExpiry = nullString(tx.VoucherDetails.ExpiryDate.UTC().Format(time.RFC3339))
	}

	_, err := s.db.ExecContext(ctx, query,
		string(tx.ID), string(tx.UserID), string(tx.Type), string(tx.Status),
		tx.Amount.Value.String(), tx.Fee.Value.String(), string(tx.PaymentMethod),
		voucherID, voucherCode, voucherExpiry,
		nullString(tx.ReferenceID),
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("transaction %s already recorded", tx.ID)
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("user %s: %w", tx.UserID, engine.ErrNotFound)
		}
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id engine.TransactionID, status engine.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx,
		"SELECT status FROM transactions WHERE id = ?", string(id)).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("transaction %s: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read transaction status: %w", err)
	}

	if !engine.ValidStatusTransition(engine.TransactionStatus(current), status) {
		return fmt.Errorf("%s -> %s: %w", current, status, engine.ErrInvalidStatusTransition)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE transactions SET status = ? WHERE id = ?", string(status), string(id))
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]engine.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []engine.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (engine.Transaction, error) {
	var (
		tx            engine.Transaction
		amount        string
		fee           string
		voucherID     sql.NullString
		voucherCode   sql.NullString
		voucherExpiry sql.NullString
		referenceID   sql.NullString
		createdAt     string
	)

	err := rows.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Status, &amount, &fee, &tx.PaymentMethod,
		&voucherID, &voucherCode, &voucherExpiry, &referenceID, &createdAt,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Amount = engine.Money{Value: mustDecimal(amount)}
	tx.Fee = engine.Money{Value: mustDecimal(fee)}
	tx.ReferenceID = referenceID.String
	if tx.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return tx, fmt.Errorf("failed to parse transaction created_at: %w", err)
	}

	if voucherID.Valid {
		var expiry time.Time
		if voucherExpiry.Valid {
			if expiry, err = time.Parse(time.RFC3339, voucherExpiry.String); err != nil {
				return tx, fmt.Errorf("failed to parse voucher expiry: %w", err)
			}
		}
		tx.VoucherDetails = &engine.VoucherPurchase{
			VoucherID:  engine.VoucherID(voucherID.String),
			Code:       voucherCode.String,
			ExpiryDate: expiry,
		}
	}
	return tx, nil
}

// =============================================================================
// VOUCHERS
// =============================================================================

func (s *Store) ListVouchers(ctx context.Context, category string) ([]engine.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, provider, name, category, price, discount, stock FROM vouchers"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []engine.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (s *Store) GetVoucher(ctx context.Context, id engine.VoucherID) (engine.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, provider, name, category, price, discount, stock FROM vouchers WHERE id = ?",
		string(id))
	v, err := scanVoucher(row)
	if err == sql.ErrNoRows {
		return engine.Voucher{}, fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}
	return v, err
}

func (s *Store) SaveVoucher(ctx context.Context, v engine.Voucher) error {
	if v.Stock < 0 {
		return fmt.Errorf("negative stock %d: %w", v.Stock, engine.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO vouchers (id, provider, name, category, price, discount, stock)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			name = excluded.name,
			category = excluded.category,
			price = excluded.price,
			discount = excluded.discount,
			stock = excluded.stock
	`

	_, err := s.db.ExecContext(ctx, query,
		string(v.ID), v.Provider, v.Name, v.Category,
		v.Price.Value.String(), v.Discount.String(), v.Stock,
	)
	if err != nil {
		return fmt.Errorf("failed to save voucher: %w", err)
	}
	return nil
}

// DecrementVoucherStock takes one unit with a conditional UPDATE so the
// check-and-decrement is a single atomic statement.
func (s *Store) DecrementVoucherStock(ctx context.Context, id engine.VoucherID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE vouchers SET stock = stock - 1 WHERE id = ? AND stock > 0",
		string(id))
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if n > 0 {
		return nil
	}

	// No row affected: either the voucher is missing or stock is exhausted.
	var stock int
	scanErr := s.db.QueryRowContext(ctx,
		"SELECT stock FROM vouchers WHERE id = ?", string(id)).Scan(&stock)
	if scanErr == sql.ErrNoRows {
		return fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to check stock: %w", scanErr)
	}
	return &engine.OutOfStockError{VoucherID: id}
}

func (s *Store) RestoreVoucherStock(ctx context.Context, id engine.VoucherID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE vouchers SET stock = stock + 1 WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("voucher %s: %w", id, engine.ErrNotFound)
	}
	return nil
}

func scanVoucher(row rowScanner) (engine.Voucher, error) {
	var (
		v        engine.Voucher
		price    string
		discount string
	)

	err := row.Scan(&v.ID, &v.Provider, &v.Name, &v.Category, &price, &discount, &v.Stock)
	if err != nil {
		return v, err
	}

	v.Price = engine.Money{Value: mustDecimal(price)}
	v.Discount = mustDecimal(discount)
	return v, nil
}

// =============================================================================
// WELLNESS
// =============================================================================

func (s *Store) GetWellnessScore(ctx context.Context, userID engine.UserID) (backend.WellnessScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT wellness_score FROM users WHERE id = ?", string(userID)).Scan(&score)
	if err == sql.ErrNoRows {
		return backend.WellnessScore{}, fmt.Errorf("user %s: %w", userID, engine.ErrNotFound)
	}
	if err != nil {
		return backend.WellnessScore{}, fmt.Errorf("failed to read wellness score: %w", err)
	}

	return backend.WellnessScore{
		Score:    int(score.Int64),
		MaxScore: engine.MaxWellnessScore,
	}, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

var _ backend.Backend = (*Store)(nil)
