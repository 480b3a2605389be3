package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/repository"
)

// Interfaces sobre el almacén persistente. Las implementan los repositorios
// de Postgres; los tests de servicio usan dobles en memoria.

// TxBeginner abre unidades de trabajo atómicas.
type TxBeginner interface {
	Begin(ctx context.Context) (repository.Tx, error)
}

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	FindActiveByNumber(ctx context.Context, number string) (*model.Account, error)
	FindActiveByNumberForUpdate(ctx context.Context, tx repository.Tx, number string) (*model.Account, error)
	UpdateBalanceTx(ctx context.Context, tx repository.Tx, accountID int64, delta decimal.Decimal) error
	FindAllByUserID(ctx context.Context, userID int64) ([]model.Account, error)
	FindActiveByType(ctx context.Context, accountType model.AccountType) ([]model.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	ExistsByNumberAndUserID(ctx context.Context, number string, userID int64) (bool, error)
	Deactivate(ctx context.Context, accountID, userID int64) error
}

type TransactionStore interface {
	CreateTx(ctx context.Context, tx repository.Tx, t *model.Transaction) error
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)
	FindPageByAccountID(ctx context.Context, accountID int64, filter model.TransactionFilter, page, size int) ([]repository.TransactionRow, int64, error)
	FindPage(ctx context.Context, filter model.TransactionFilter, page, size int) ([]repository.TransactionRow, int64, error)
	CountRetainedUsers(ctx context.Context) (int64, error)
	TransactionCurve(ctx context.Context) (map[string][]model.ChartDataPoint, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByDocumentID(ctx context.Context, documentID string) (bool, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	SearchPage(ctx context.Context, filter model.UserSearchFilter, page, size int) ([]model.UserAdminResponse, int64, error)
}

type BeneficiaryStore interface {
	Create(ctx context.Context, beneficiary *model.Beneficiary) error
	FindByID(ctx context.Context, id int64) (*model.Beneficiary, error)
	FindAllActiveByUserID(ctx context.Context, userID int64) ([]model.Beneficiary, error)
	ExistsActiveByUserAndNumber(ctx context.Context, userID int64, accountNumber string) (bool, error)
	Update(ctx context.Context, beneficiary *model.Beneficiary) error
}

type LoginAttemptStore interface {
	Create(ctx context.Context, userID int64) error
	FindByUserID(ctx context.Context, userID int64) (*model.LoginAttempt, error)
	Update(ctx context.Context, attempt *model.LoginAttempt) error
	CountBlocked(ctx context.Context) (int64, error)
	FindLastBlocked(ctx context.Context, limit int) ([]model.BlockedUserSummary, error)
}

// Converter convierte montos entre monedas.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Notifier envía avisos de movimientos; siempre fuera del camino crítico.
type Notifier interface {
	SendMovementNotification(email, movementType string, amount decimal.Decimal, currency, referenceCode string) error
}
