package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// ErrReferenceCodeTaken indica una colisión del código de referencia al
// insertar. Nunca llega al cliente: el motor regenera el código y reintenta.
var ErrReferenceCodeTaken = errors.New("reference code already exists")

type TransactionRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewTransactionRepository(db *sql.DB, logger *logrus.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

// TransactionRow es un asiento junto con los números de cuenta de sus
// contrapartes internas ("" cuando la contraparte es externa).
type TransactionRow struct {
	Transaction  model.Transaction
	SourceNumber string
	TargetNumber string
}

// CreateTx inserta el asiento dentro de la transacción de la operación.
// La fila es inmutable: no existe UPDATE ni DELETE sobre transactions.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx Tx, t *model.Transaction) error {
	stx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"type":           t.Type,
		"amount":         t.Amount,
		"currency":       t.Currency,
		"reference_code": t.ReferenceCode,
	}).Info("Registrando asiento de transacción")

	var sourceID, targetID sql.NullInt64
	if id, ok := t.Source.AccountID(); ok {
		sourceID = sql.NullInt64{Int64: id, Valid: true}
	}
	if id, ok := t.Target.AccountID(); ok {
		targetID = sql.NullInt64{Int64: id, Valid: true}
	}

	var idempotencyKey interface{}
	if t.IdempotencyKey != nil {
		idempotencyKey = t.IdempotencyKey.String()
	}

	query := `
		INSERT INTO transactions
			(source_account_id, target_account_id, transaction_type, amount, currency, status, reference_code, idempotency_key, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = stx.QueryRowContext(
		ctx,
		query,
		sourceID,
		targetID,
		t.Type,
		t.Amount,
		t.Currency,
		t.Status,
		t.ReferenceCode,
		idempotencyKey,
		t.Description,
		t.CreatedAt,
	).Scan(&t.ID)

	if err != nil {
		if isUniqueViolation(err, "transactions_reference_code_key") {
			return ErrReferenceCodeTaken
		}
		if isUniqueViolation(err, "transactions_idempotency_key_key") {
			return model.ErrDuplicateOperation
		}
		r.logger.WithError(err).Error("Error al registrar la transacción")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference_code = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference code: %w", err)
	}
	return exists, nil
}

const transactionSelect = `
	SELECT t.id, t.source_account_id, t.target_account_id, t.transaction_type,
	       t.amount, t.currency, t.status, t.reference_code, t.idempotency_key,
	       t.description, t.created_at,
	       s.account_number, ta.account_number
	FROM transactions t
	LEFT JOIN accounts s ON s.id = t.source_account_id
	LEFT JOIN accounts ta ON ta.id = t.target_account_id
`

const transactionCount = `
	SELECT COUNT(*)
	FROM transactions t
	LEFT JOIN accounts s ON s.id = t.source_account_id
	LEFT JOIN accounts ta ON ta.id = t.target_account_id
`

// buildFilter arma las condiciones WHERE del historial. accountID limita a
// movimientos donde la cuenta participa como origen O destino; el resto de
// filtros son opcionales.
func buildFilter(accountID int64, filter model.TransactionFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if accountID != 0 {
		p := arg(accountID)
		conditions = append(conditions, fmt.Sprintf("(t.source_account_id = %s OR t.target_account_id = %s)", p, p))
	}
	if filter.AccountNumber != "" {
		p := arg(filter.AccountNumber)
		conditions = append(conditions, fmt.Sprintf("(s.account_number = %s OR ta.account_number = %s)", p, p))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = %s", arg(filter.Status)))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at >= %s", arg(*filter.From)))
	}
	if filter.To != nil {
		// Inclusivo hasta el final del día indicado.
		conditions = append(conditions, fmt.Sprintf("t.created_at < %s", arg(filter.To.AddDate(0, 0, 1))))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// FindPageByAccountID devuelve una página de movimientos de la cuenta,
// ordenados del más reciente al más antiguo.
func (r *TransactionRepository) FindPageByAccountID(
	ctx context.Context,
	accountID int64,
	filter model.TransactionFilter,
	page, size int,
) ([]TransactionRow, int64, error) {
	filter.AccountNumber = ""
	return r.findPage(ctx, accountID, filter, page, size)
}

// FindPage devuelve una página de movimientos de todo el banco según el
// filtro administrativo.
func (r *TransactionRepository) FindPage(
	ctx context.Context,
	filter model.TransactionFilter,
	page, size int,
) ([]TransactionRow, int64, error) {
	return r.findPage(ctx, 0, filter, page, size)
}

func (r *TransactionRepository) findPage(
	ctx context.Context,
	accountID int64,
	filter model.TransactionFilter,
	page, size int,
) ([]TransactionRow, int64, error) {
	where, args := buildFilter(accountID, filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, transactionCount+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := transactionSelect + where +
		fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []TransactionRow
	for rows.Next() {
		row, err := scanTransactionRow(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read transactions: %w", err)
	}

	return result, total, nil
}

func scanTransactionRow(rows *sql.Rows) (TransactionRow, error) {
	var (
		row            TransactionRow
		sourceID       sql.NullInt64
		targetID       sql.NullInt64
		idempotencyKey sql.NullString
		description    sql.NullString
		sourceNumber   sql.NullString
		targetNumber   sql.NullString
	)

	err := rows.Scan(
		&row.Transaction.ID,
		&sourceID,
		&targetID,
		&row.Transaction.Type,
		&row.Transaction.Amount,
		&row.Transaction.Currency,
		&row.Transaction.Status,
		&row.Transaction.ReferenceCode,
		&idempotencyKey,
		&description,
		&row.Transaction.CreatedAt,
		&sourceNumber,
		&targetNumber,
	)
	if err != nil {
		return TransactionRow{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if sourceID.Valid {
		row.Transaction.Source = model.InternalParty(sourceID.Int64)
	} else {
		row.Transaction.Source = model.ExternalParty()
	}
	if targetID.Valid {
		row.Transaction.Target = model.InternalParty(targetID.Int64)
	} else {
		row.Transaction.Target = model.ExternalParty()
	}
	if idempotencyKey.Valid {
		if key, err := uuid.Parse(idempotencyKey.String); err == nil {
			row.Transaction.IdempotencyKey = &key
		}
	}
	row.Transaction.Description = description.String
	row.SourceNumber = sourceNumber.String
	row.TargetNumber = targetNumber.String

	return row, nil
}

// CountRetainedUsers cuenta los usuarios con al menos un movimiento, como
// indicador de retención del panel administrativo.
func (r *TransactionRepository) CountRetainedUsers(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT a.user_id)
		FROM accounts a
		WHERE EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.source_account_id = a.id OR t.target_account_id = a.id
		)
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count retained users: %w", err)
	}
	return count, nil
}

// TransactionCurve devuelve el total diario transado agrupado por moneda
// para la curva del panel administrativo.
func (r *TransactionRepository) TransactionCurve(ctx context.Context) (map[string][]model.ChartDataPoint, error) {
	query := `
		SELECT DATE(t.created_at), t.currency, SUM(t.amount)
		FROM transactions t
		GROUP BY DATE(t.created_at), t.currency
		ORDER BY DATE(t.created_at)
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction curve: %w", err)
	}
	defer rows.Close()

	curve := make(map[string][]model.ChartDataPoint)
	for rows.Next() {
		var point model.ChartDataPoint
		var day time.Time
		var currency string
		if err := rows.Scan(&day, &currency, &point.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan curve point: %w", err)
		}
		point.Date = day.Format("2006-01-02")
		curve[currency] = append(curve[currency], point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction curve: %w", err)
	}

	return curve, nil
}
