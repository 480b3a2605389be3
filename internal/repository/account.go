package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// ErrAccountNumberTaken indica una colisión del número de cuenta al
// insertar. El servicio de cuentas regenera el número y reintenta.
var ErrAccountNumberTaken = errors.New("account number already exists")

type AccountRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewAccountRepository(db *sql.DB, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

const accountColumns = `id, user_id, account_type, account_number, currency, current_balance, is_active, created_at`

func scanAccount(row *sql.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountType,
		&account.AccountNumber,
		&account.Currency,
		&account.Balance,
		&account.IsActive,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (user_id, account_type, account_number, currency, current_balance, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		account.UserID,
		account.AccountType,
		account.AccountNumber,
		account.Currency,
		account.Balance,
		account.IsActive,
	).Scan(&account.ID)

	if err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			return ErrAccountNumberTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindActiveByNumber busca una cuenta activa por su número externo. Las
// cuentas desactivadas se tratan como inexistentes.
func (r *AccountRepository) FindActiveByNumber(ctx context.Context, number string) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1 AND is_active = TRUE
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// FindActiveByNumberForUpdate bloquea la fila de la cuenta (FOR UPDATE)
// dentro de la transacción para que la secuencia verificar-saldo y mutar sea
// efectivamente atómica frente a operaciones concurrentes.
func (r *AccountRepository) FindActiveByNumberForUpdate(ctx context.Context, tx Tx, number string) (*model.Account, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1 AND is_active = TRUE
		FOR UPDATE
	`

	account, err := scanAccount(stx.QueryRowContext(ctx, query, number))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// UpdateBalanceTx aplica un delta al saldo como un único read-modify-write
// dentro de la transacción. El CHECK (current_balance >= 0) del esquema es
// el respaldo duro contra saldos negativos.
func (r *AccountRepository) UpdateBalanceTx(ctx context.Context, tx Tx, accountID int64, delta decimal.Decimal) error {
	stx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $1
		WHERE id = $2
	`

	result, err := stx.ExecContext(ctx, query, delta, accountID)
	if err != nil {
		if isCheckViolation(err, "accounts_current_balance_check") {
			return model.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) FindAllByUserID(ctx context.Context, userID int64) ([]model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.AccountType,
			&account.AccountNumber,
			&account.Currency,
			&account.Balance,
			&account.IsActive,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	return accounts, nil
}

// FindActiveByType lista las cuentas activas de un tipo dado. Lo usa el
// planificador de intereses para recorrer las cuentas de ahorro.
func (r *AccountRepository) FindActiveByType(ctx context.Context, accountType model.AccountType) ([]model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_type = $1 AND is_active = TRUE
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by type: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.AccountType,
			&account.AccountNumber,
			&account.Currency,
			&account.Balance,
			&account.IsActive,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	return accounts, nil
}

// ExistsByNumber comprueba si un número de cuenta ya fue emitido, incluyendo
// cuentas desactivadas: los números nunca se reutilizan.
func (r *AccountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) ExistsByNumberAndUserID(ctx context.Context, number string, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, number, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account ownership: %w", err)
	}
	return exists, nil
}

// Deactivate da de baja la cuenta sin borrarla: los movimientos históricos
// siguen referenciando la fila.
func (r *AccountRepository) Deactivate(ctx context.Context, accountID, userID int64) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`

	result, err := r.db.ExecContext(ctx, query, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}
