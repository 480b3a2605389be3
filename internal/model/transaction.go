package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "TRANSFERENCIA"  // transferencia entre cuentas
	TransactionTypeDeposit    TransactionType = "DEPOSITO"       // depósito por ventanilla
	TransactionTypeWithdrawal TransactionType = "RETIRO"         // retiro de efectivo
	TransactionTypePayment    TransactionType = "PAGO_SERVICIO"  // pago de servicio
	TransactionTypeInterest   TransactionType = "PAGO_INTERESES" // abono de intereses
)

type TransactionStatus string

// SUCCESS es el único estado que el motor produce: cada operación se aplica
// completa y se registra, o falla sin dejar rastro. No existen estados
// pendientes ni parciales.
const TransactionStatusSuccess TransactionStatus = "SUCCESS"

// Etiquetas usadas al exponer movimientos sin contraparte interna.
const (
	ExternalSourceLabel = "EXTERNO"
	ExternalTargetLabel = "EXTERNO/VENTANILLA"
)

// Counterparty identifica un extremo de un movimiento: una cuenta interna
// del banco o un origen/destino externo (ventanilla, otro banco). Sustituye
// a una clave foránea anulable para que el caso "sin contraparte" quede
// cubierto de forma explícita.
type Counterparty struct {
	accountID int64
	internal  bool
}

func InternalParty(accountID int64) Counterparty {
	return Counterparty{accountID: accountID, internal: true}
}

func ExternalParty() Counterparty {
	return Counterparty{}
}

// AccountID devuelve el id de la cuenta interna; ok es false para
// contrapartes externas.
func (c Counterparty) AccountID() (id int64, ok bool) {
	return c.accountID, c.internal
}

// Transaction es el asiento inmutable del libro mayor: se crea exactamente
// una vez, junto con la mutación de saldos que representa, y nunca se
// modifica ni se borra. Amount y Currency son los solicitados por el
// cliente, no los montos convertidos aplicados a cada cuenta.
type Transaction struct {
	ID             int64
	Source         Counterparty
	Target         Counterparty
	Type           TransactionType
	Amount         decimal.Decimal
	Currency       string
	Status         TransactionStatus
	ReferenceCode  string
	IdempotencyKey *uuid.UUID
	Description    string
	CreatedAt      time.Time
}

type TransactionResponse struct {
	ID            int64             `json:"id"`
	SourceAccount string            `json:"source_account"`
	TargetAccount string            `json:"target_account"`
	Type          TransactionType   `json:"transaction_type"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"transaction_status"`
	Description   string            `json:"description"`
	ReferenceCode string            `json:"reference_code"`
	Currency      string            `json:"currency"`
	CreatedAt     time.Time         `json:"created_at"`
}

type TransferRequest struct {
	SourceAccount  string          `json:"source_account"`
	TargetAccount  string          `json:"target_account"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type DepositRequest struct {
	TargetAccount  string          `json:"target_account"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type WithdrawRequest struct {
	SourceAccount  string          `json:"source_account"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type PayServiceRequest struct {
	SourceAccount  string          `json:"source_account"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	ServiceName    string          `json:"service_name"`
	SupplyCode     string          `json:"supply_code"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type PayInterestRequest struct {
	TargetAccount string          `json:"target_account"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
}

// TransactionFilter acota la consulta de historial. Los campos nulos o
// vacíos no filtran. To es inclusivo hasta el final del día.
type TransactionFilter struct {
	AccountNumber string
	Status        string
	From          *time.Time
	To            *time.Time
}

// Page replica la forma de página del listado original: contenido más
// totales para que el cliente pagine sin una segunda consulta.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, page, size int, total int64) *Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("el monto debe ser positivo")
	}
	return nil
}

func validateCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("el código de moneda debe tener 3 letras (Ej: USD)")
	}
	return nil
}

func validateIdempotencyKey(key string) error {
	if key == "" {
		return nil
	}
	if _, err := uuid.Parse(key); err != nil {
		return fmt.Errorf("la clave de idempotencia debe ser un UUID válido")
	}
	return nil
}

func (r *TransferRequest) Validate() error {
	if r.SourceAccount == "" {
		return fmt.Errorf("la cuenta de origen es obligatoria")
	}
	if r.TargetAccount == "" {
		return fmt.Errorf("la cuenta de destino es obligatoria")
	}
	if r.SourceAccount == r.TargetAccount {
		return fmt.Errorf("la cuenta de origen y destino no pueden ser la misma")
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := validateCurrency(r.Currency); err != nil {
		return err
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

func (r *DepositRequest) Validate() error {
	if r.TargetAccount == "" {
		return fmt.Errorf("la cuenta de destino es obligatoria")
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := validateCurrency(r.Currency); err != nil {
		return err
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

func (r *WithdrawRequest) Validate() error {
	if r.SourceAccount == "" {
		return fmt.Errorf("la cuenta de origen es obligatoria")
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := validateCurrency(r.Currency); err != nil {
		return err
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

func (r *PayServiceRequest) Validate() error {
	if r.SourceAccount == "" {
		return fmt.Errorf("la cuenta de origen es obligatoria")
	}
	if r.ServiceName == "" {
		return fmt.Errorf("el nombre del servicio es obligatorio")
	}
	if r.SupplyCode == "" {
		return fmt.Errorf("el código de suministro es obligatorio")
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := validateCurrency(r.Currency); err != nil {
		return err
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

func (r *PayInterestRequest) Validate() error {
	if r.TargetAccount == "" {
		return fmt.Errorf("la cuenta de destino es obligatoria")
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	return validateCurrency(r.Currency)
}
