/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Money fields are serialized as fixed two-decimal strings ("530.00").
  Clients must never do float arithmetic on them.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/payquick/wage-engine/backend"
	"github.com/payquick/wage-engine/engine"
	"github.com/payquick/wage-engine/notify"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LoginRequest is the request to authenticate.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	EmployerID             string `json:"employer_id"`
	HourlyRate             string `json:"hourly_rate"`
	StartDate              string `json:"start_date"`
	IsFullTime             bool   `json:"is_full_time"`
	BiometricEnabled       bool   `json:"biometric_enabled"`
	PreferredPaymentMethod string `json:"preferred_payment_method"`
	WellnessScore          *int   `json:"wellness_score,omitempty"`
	CreatedAt              string `json:"created_at,omitempty"`
}

// SaveUserRequest is the admin request to create or update a user.
type SaveUserRequest struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	EmployerID             string `json:"employer_id"`
	HourlyRate             string `json:"hourly_rate"`
	StartDate              string `json:"start_date"`
	IsFullTime             bool   `json:"is_full_time"`
	BiometricEnabled       bool   `json:"biometric_enabled"`
	PreferredPaymentMethod string `json:"preferred_payment_method"`
	WellnessScore          *int   `json:"wellness_score,omitempty"`
}

// EmployerDTO represents an employer and its advance policy.
type EmployerDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PayrollDay    int    `json:"payroll_day"`
	AdvanceCap    string `json:"advance_cap"`
	FeeFlat       string `json:"fee_flat"`
	FeePercentage string `json:"fee_percentage"`
	FeeMax        string `json:"fee_max"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// EarningsDTO is the earned-to-date summary for the current pay period.
type EarningsDTO struct {
	PeriodStart  string `json:"period_start"`
	ElapsedDays  int    `json:"elapsed_days"`
	EarnedToDate string `json:"earned_to_date"`
	Advanceable  string `json:"advanceable"`
	AsOf         string `json:"as_of"`
}

// AdvanceRequest is the request to submit a cash advance.
type AdvanceRequest struct {
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

// ConfirmAuthRequest delivers the step-up factor's outcome.
type ConfirmAuthRequest struct {
	Approved bool `json:"approved"`
}

// WorkflowDTO reflects the advance workflow's current state.
type WorkflowDTO struct {
	State       string          `json:"state"`
	Amount      string          `json:"amount,omitempty"`
	Transaction *TransactionDTO `json:"transaction,omitempty"`
}

// TransactionDTO represents a ledger transaction.
type TransactionDTO struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	Amount         string              `json:"amount"`
	Fee            string              `json:"fee"`
	TotalRepayable string              `json:"total_repayable"`
	PaymentMethod  string              `json:"payment_method"`
	VoucherDetails *VoucherPurchaseDTO `json:"voucher_details,omitempty"`
	ReferenceID    string              `json:"reference_id,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

// UpdateStatusRequest is the admin request to transition a transaction.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// VoucherDTO represents a marketplace catalog entry.
type VoucherDTO struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Stock    int    `json:"stock"`
}

// SaveVoucherRequest is the admin request to create or update a voucher.
type SaveVoucherRequest struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Stock    int    `json:"stock"`
}

// VoucherPurchaseDTO is the receipt embedded in a voucher transaction.
type VoucherPurchaseDTO struct {
	VoucherID  string `json:"voucher_id"`
	Code       string `json:"code"`
	ExpiryDate string `json:"expiry_date"`
}

// WellnessDTO is the financial wellness standing.
type WellnessDTO struct {
	Score    int `json:"score"`
	MaxScore int `json:"max_score"`
}

// NotificationDTO represents a transient user notification.
type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u engine.User) UserDTO {
	return UserDTO{
		ID:                     string(u.ID),
		Name:                   u.Name,
		Email:                  u.Email,
		EmployerID:             string(u.EmployerID),
		HourlyRate:             u.HourlyRate.String(),
		StartDate:              u.StartDate.Format("2006-01-02"),
		IsFullTime:             u.IsFullTime,
		BiometricEnabled:       u.BiometricEnabled,
		PreferredPaymentMethod: string(u.PreferredPaymentMethod),
		WellnessScore:          u.WellnessScore,
		CreatedAt:              u.CreatedAt.Format(time.RFC3339),
	}
}

func toEmployerDTO(e engine.Employer) EmployerDTO {
	return EmployerDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		PayrollDay:    e.PayrollDay,
		AdvanceCap:    e.AdvanceCap.String(),
		FeeFlat:       e.FeeStructure.Flat.String(),
		FeePercentage: e.FeeStructure.Percentage.String(),
		FeeMax:        e.FeeStructure.Max.String(),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx engine.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:             string(tx.ID),
		UserID:         string(tx.UserID),
		Type:           string(tx.Type),
		Status:         string(tx.Status),
		Amount:         tx.Amount.String(),
		Fee:            tx.Fee.String(),
		TotalRepayable: tx.TotalRepayable().String(),
		PaymentMethod:  string(tx.PaymentMethod),
		ReferenceID:    tx.ReferenceID,
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.VoucherDetails != nil {
		dto.VoucherDetails = &VoucherPurchaseDTO{
			VoucherID:  string(tx.VoucherDetails.VoucherID),
			Code:       tx.VoucherDetails.Code,
			ExpiryDate: tx.VoucherDetails.ExpiryDate.Format(time.RFC3339),
		}
	}
	return dto
}

func toTransactionDTOs(txs []engine.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toVoucherDTO(v engine.Voucher) VoucherDTO {
	return VoucherDTO{
		ID:       string(v.ID),
		Provider: v.Provider,
		Name:     v.Name,
		Category: v.Category,
		Price:    v.Price.String(),
		Discount: v.Discount.String(),
		Stock:    v.Stock,
	}
}

func toVoucherDTOs(vouchers []engine.Voucher) []VoucherDTO {
	dtos := make([]VoucherDTO, len(vouchers))
	for i, v := range vouchers {
		dtos[i] = toVoucherDTO(v)
	}
	return dtos
}

func toNotificationDTOs(items []notify.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(items))
	for i, n := range items {
		dtos[i] = NotificationDTO{
			ID:        n.ID,
			Type:      string(n.Type),
			Message:   n.Message,
			Timestamp: n.Timestamp.Format(time.RFC3339),
		}
	}
	return dtos
}

func toWellnessDTO(w backend.WellnessScore) WellnessDTO {
	return WellnessDTO{Score: w.Score, MaxScore: w.MaxScore}
}
