package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CORRIENTE" // cuenta corriente
	AccountTypeSavings  AccountType = "AHORRO"    // cuenta de ahorros, recibe intereses
)

// Account es una cuenta bancaria. El saldo solo lo muta el motor de
// transacciones dentro de una transacción de base de datos; el invariante
// current_balance >= 0 está además respaldado por un CHECK en el esquema.
type Account struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	AccountType   AccountType     `json:"account_type" db:"account_type"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	Currency      string          `json:"currency" db:"currency"`
	Balance       decimal.Decimal `json:"current_balance" db:"current_balance"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type AccountCreationRequest struct {
	Currency    string      `json:"currency"`
	AccountType AccountType `json:"account_type"`
}

type AccountResponse struct {
	ID            int64           `json:"id"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"current_balance"`
	AccountType   AccountType     `json:"account_type"`
	AccountNumber string          `json:"account_number"`
}

func (r *AccountCreationRequest) Validate() error {
	if len(r.Currency) != 3 {
		return fmt.Errorf("el código de moneda debe tener 3 letras (Ej: USD)")
	}
	if r.AccountType != AccountTypeChecking && r.AccountType != AccountTypeSavings {
		return fmt.Errorf("tipo de cuenta no válido")
	}
	return nil
}
