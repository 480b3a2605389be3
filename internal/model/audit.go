package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditAction string

const (
	AuditActionLogin              AuditAction = "LOGIN"
	AuditActionSearchUsers        AuditAction = "SEARCH_USERS"
	AuditActionSearchTransactions AuditAction = "SEARCH_TRANSACTIONS"
	AuditActionUnblockUser        AuditAction = "UNBLOCK_USER"
)

// AuditLog se escribe de forma asíncrona y desacoplada de la operación que
// lo origina: nunca bloquea ni hace fallar una operación financiera.
type AuditLog struct {
	ID          int64       `json:"id" db:"id"`
	UserID      int64       `json:"user_id" db:"user_id"`
	Action      AuditAction `json:"action" db:"action"`
	Description string      `json:"description" db:"description"`
	IPAddress   string      `json:"ip_address" db:"ip_address"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

type LoginAttempt struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Attempts    int        `json:"attempts" db:"attempts"`
	LastAttempt *time.Time `json:"last_attempt" db:"last_attempt"`
	IsBlocked   bool       `json:"is_blocked" db:"is_blocked"`
}

type UserAdminResponse struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	DocumentID  string    `json:"document_id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	IsBlocked   bool      `json:"is_blocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserSearchFilter acota el listado administrativo de usuarios.
type UserSearchFilter struct {
	Term      string
	IsActive  *bool
	IsBlocked *bool
}

type BlockedUserSummary struct {
	Name       string     `json:"name"`
	DocumentID string     `json:"document_id"`
	BlockedAt  *time.Time `json:"blocked_at"`
}

type ChartDataPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type AdminDashboardResponse struct {
	RetainedUsersCount     int64                       `json:"retained_users_count"`
	TotalUsersCount        int64                       `json:"total_users_count"`
	TotalBlockedUsersCount int64                       `json:"total_blocked_users_count"`
	LastUsersBlocked       []BlockedUserSummary        `json:"last_users_blocked"`
	TransactionCurve       map[string][]ChartDataPoint `json:"transaction_curve"`
}
