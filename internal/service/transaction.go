package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/repository"
)

// TransactionService es el motor de transacciones: toda mutación de saldos
// pasa por aquí. Cada operación sigue el mismo camino — validar, resolver y
// bloquear cuentas, convertir moneda, verificar fondos, mutar saldos y
// registrar el asiento — dentro de una única transacción de base de datos.
type TransactionService struct {
	db           TxBeginner
	accountStore AccountStore
	txStore      TransactionStore
	userStore    UserStore
	exchange     Converter
	codes        *CodeGenerator
	notifier     Notifier
	logger       *logrus.Logger
}

func NewTransactionService(
	db TxBeginner,
	accountStore AccountStore,
	txStore TransactionStore,
	userStore UserStore,
	exchange Converter,
	codes *CodeGenerator,
	notifier Notifier,
	logger *logrus.Logger,
) *TransactionService {
	return &TransactionService{
		db:           db,
		accountStore: accountStore,
		txStore:      txStore,
		userStore:    userStore,
		exchange:     exchange,
		codes:        codes,
		notifier:     notifier,
		logger:       logger,
	}
}

// Transfer mueve fondos entre dos cuentas internas. El monto solicitado se
// convierte de forma independiente a la moneda de cada cuenta; el asiento
// registra el monto y la moneda solicitados.
func (s *TransactionService) Transfer(ctx context.Context, userID int64, req *model.TransferRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *model.TransactionResponse
	err := s.execute(ctx, func(tx repository.Tx) error {
		// La propiedad del origen se verifica antes de resolver el destino:
		// quien no es dueño no averigua si la cuenta destino existe. Tras
		// tomar los bloqueos se revalida sobre la fila bloqueada.
		owned, err := s.accountStore.FindActiveByNumber(ctx, req.SourceAccount)
		if err != nil {
			return err
		}
		if owned.UserID != userID {
			return model.ErrNotOwner
		}

		source, target, err := s.lockPair(ctx, tx, req.SourceAccount, req.TargetAccount)
		if err != nil {
			return err
		}
		if source.UserID != userID {
			return model.ErrNotOwner
		}

		debit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, source.Currency)
		if err != nil {
			return err
		}
		credit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, target.Currency)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(debit) {
			return model.ErrInsufficientFunds
		}

		if err := s.accountStore.UpdateBalanceTx(ctx, tx, source.ID, debit.Neg()); err != nil {
			return err
		}
		if err := s.accountStore.UpdateBalanceTx(ctx, tx, target.ID, credit); err != nil {
			return err
		}

		t := &model.Transaction{
			Source:         model.InternalParty(source.ID),
			Target:         model.InternalParty(target.ID),
			Type:           model.TransactionTypeTransfer,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Status:         model.TransactionStatusSuccess,
			IdempotencyKey: parseIdempotencyKey(req.IdempotencyKey),
			Description:    req.Description,
			CreatedAt:      time.Now(),
		}
		if err := s.record(ctx, tx, t); err != nil {
			return err
		}
		resp = mapTransactionResponse(t, source.AccountNumber, target.AccountNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference_code": resp.ReferenceCode,
		"source_account": resp.SourceAccount,
		"target_account": resp.TargetAccount,
	}).Info("Transferencia realizada")
	s.notify(ctx, userID, resp)
	return resp, nil
}

// Deposit abona un monto llegado desde fuera del banco (ventanilla) a una
// cuenta interna. No exige propiedad: cualquiera puede depositar a un número
// de cuenta válido.
func (s *TransactionService) Deposit(ctx context.Context, req *model.DepositRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *model.TransactionResponse
	var ownerID int64
	err := s.execute(ctx, func(tx repository.Tx) error {
		target, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, req.TargetAccount)
		if err != nil {
			return err
		}

		credit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, target.Currency)
		if err != nil {
			return err
		}
		if err := s.accountStore.UpdateBalanceTx(ctx, tx, target.ID, credit); err != nil {
			return err
		}

		t := &model.Transaction{
			Source:         model.ExternalParty(),
			Target:         model.InternalParty(target.ID),
			Type:           model.TransactionTypeDeposit,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Status:         model.TransactionStatusSuccess,
			IdempotencyKey: parseIdempotencyKey(req.IdempotencyKey),
			Description:    req.Description,
			CreatedAt:      time.Now(),
		}
		if err := s.record(ctx, tx, t); err != nil {
			return err
		}
		ownerID = target.UserID
		resp = mapTransactionResponse(t, "", target.AccountNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference_code": resp.ReferenceCode,
		"target_account": resp.TargetAccount,
	}).Info("Depósito realizado")
	s.notify(ctx, ownerID, resp)
	return resp, nil
}

// Withdraw retira efectivo de una cuenta propia hacia ventanilla.
func (s *TransactionService) Withdraw(ctx context.Context, userID int64, req *model.WithdrawRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *model.TransactionResponse
	err := s.execute(ctx, func(tx repository.Tx) error {
		source, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, req.SourceAccount)
		if err != nil {
			return err
		}
		if source.UserID != userID {
			return model.ErrNotOwner
		}

		debit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, source.Currency)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(debit) {
			return model.ErrInsufficientFunds
		}
		if err := s.accountStore.UpdateBalanceTx(ctx, tx, source.ID, debit.Neg()); err != nil {
			return err
		}

		t := &model.Transaction{
			Source:         model.InternalParty(source.ID),
			Target:         model.ExternalParty(),
			Type:           model.TransactionTypeWithdrawal,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Status:         model.TransactionStatusSuccess,
			IdempotencyKey: parseIdempotencyKey(req.IdempotencyKey),
			Description:    req.Description,
			CreatedAt:      time.Now(),
		}
		if err := s.record(ctx, tx, t); err != nil {
			return err
		}
		resp = mapTransactionResponse(t, source.AccountNumber, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference_code": resp.ReferenceCode,
		"source_account": resp.SourceAccount,
	}).Info("Retiro realizado")
	s.notify(ctx, userID, resp)
	return resp, nil
}

// PayService paga un servicio (luz, agua, telefonía) con cargo a una cuenta
// propia. La descripción del asiento incorpora el servicio y el suministro.
func (s *TransactionService) PayService(ctx context.Context, userID int64, req *model.PayServiceRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("SERVICIO: %s\nSUMINISTRO: %s\n%s", req.ServiceName, req.SupplyCode, req.Description)

	var resp *model.TransactionResponse
	err := s.execute(ctx, func(tx repository.Tx) error {
		source, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, req.SourceAccount)
		if err != nil {
			return err
		}
		if source.UserID != userID {
			return model.ErrNotOwner
		}

		debit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, source.Currency)
		if err != nil {
			return err
		}
		if source.Balance.LessThan(debit) {
			return model.ErrInsufficientFunds
		}
		if err := s.accountStore.UpdateBalanceTx(ctx, tx, source.ID, debit.Neg()); err != nil {
			return err
		}

		t := &model.Transaction{
			Source:         model.InternalParty(source.ID),
			Target:         model.ExternalParty(),
			Type:           model.TransactionTypePayment,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Status:         model.TransactionStatusSuccess,
			IdempotencyKey: parseIdempotencyKey(req.IdempotencyKey),
			Description:    description,
			CreatedAt:      time.Now(),
		}
		if err := s.record(ctx, tx, t); err != nil {
			return err
		}
		resp = mapTransactionResponse(t, source.AccountNumber, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference_code": resp.ReferenceCode,
		"service":        req.ServiceName,
	}).Info("Pago de servicio realizado")
	s.notify(ctx, userID, resp)
	return resp, nil
}

// PayInterest abona intereses a una cuenta. Lo invoca el planificador de
// intereses, no un cliente, por eso no hay verificación de propiedad.
func (s *TransactionService) PayInterest(ctx context.Context, req *model.PayInterestRequest) (*model.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *model.TransactionResponse
	err := s.execute(ctx, func(tx repository.Tx) error {
		target, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, req.TargetAccount)
		if err != nil {
			return err
		}

		credit, err := s.exchange.Convert(ctx, req.Amount, req.Currency, target.Currency)
		if err != nil {
			return err
		}
		if err := s.accountStore.UpdateBalanceTx(ctx, tx, target.ID, credit); err != nil {
			return err
		}

		t := &model.Transaction{
			Source:         model.ExternalParty(),
			Target:         model.InternalParty(target.ID),
			Type:           model.TransactionTypeInterest,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Status:         model.TransactionStatusSuccess,
			Description:    req.Description,
			CreatedAt:      time.Now(),
		}
		if err := s.record(ctx, tx, t); err != nil {
			return err
		}
		resp = mapTransactionResponse(t, "", target.AccountNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference_code": resp.ReferenceCode,
		"target_account": resp.TargetAccount,
	}).Info("Intereses abonados")
	return resp, nil
}

// GetHistory devuelve el historial paginado de una cuenta del usuario,
// movimientos entrantes y salientes, del más reciente al más antiguo.
func (s *TransactionService) GetHistory(ctx context.Context, userID int64, accountNumber string, filter model.TransactionFilter, page, size int) (*model.Page[model.TransactionResponse], error) {
	account, err := s.accountStore.FindActiveByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, model.ErrNotOwner
	}

	rows, total, err := s.txStore.FindPageByAccountID(ctx, account.ID, filter, page, size)
	if err != nil {
		return nil, err
	}
	return model.NewPage(mapTransactionRows(rows), page, size, total), nil
}

// GetAllTransactions lista movimientos de todo el banco con filtros
// opcionales. Uso exclusivo del panel de administración.
func (s *TransactionService) GetAllTransactions(ctx context.Context, filter model.TransactionFilter, page, size int) (*model.Page[model.TransactionResponse], error) {
	rows, total, err := s.txStore.FindPage(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	return model.NewPage(mapTransactionRows(rows), page, size, total), nil
}

// execute corre la operación dentro de una transacción y la reintenta
// completa si el código de referencia perdió la carrera contra una
// inserción concurrente. La colisión jamás se expone al cliente.
func (s *TransactionService) execute(ctx context.Context, fn func(tx repository.Tx) error) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrReferenceCodeTaken) {
			return err
		}
		s.logger.WithField("attempt", attempt+1).Warn("Colisión de código de referencia, reintentando la operación")
	}
	return model.ErrCodeGenerationExhausted
}

func (s *TransactionService) runOnce(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockPair resuelve y bloquea dos cuentas en orden estable por número para
// que dos transferencias cruzadas concurrentes no se interbloqueen.
func (s *TransactionService) lockPair(ctx context.Context, tx repository.Tx, sourceNumber, targetNumber string) (source, target *model.Account, err error) {
	first, second := sourceNumber, targetNumber
	if second < first {
		first, second = second, first
	}

	a, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.accountStore.FindActiveByNumberForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, err
	}

	if a.AccountNumber == sourceNumber {
		return a, b, nil
	}
	return b, a, nil
}

// record asigna el código de referencia y persiste el asiento. La
// verificación previa de unicidad corre fuera de la transacción; la
// restricción UNIQUE del esquema cubre la carrera restante.
func (s *TransactionService) record(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	code, err := s.codes.Unique(ctx, ReferenceCodeLength, s.txStore.ExistsByReferenceCode)
	if err != nil {
		return err
	}
	t.ReferenceCode = code
	return s.txStore.CreateTx(ctx, tx, t)
}

// notify envía el aviso de movimiento por correo en segundo plano. Un fallo
// del correo nunca afecta a la operación ya confirmada.
func (s *TransactionService) notify(ctx context.Context, userID int64, resp *model.TransactionResponse) {
	if s.notifier == nil || userID == 0 {
		return
	}
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}

	go func(email string, resp model.TransactionResponse) {
		if err := s.notifier.SendMovementNotification(email, string(resp.Type), resp.Amount, resp.Currency, resp.ReferenceCode); err != nil {
			s.logger.WithError(err).Warn("No se pudo enviar la notificación de movimiento")
		}
	}(user.Email, *resp)
}

func parseIdempotencyKey(key string) *uuid.UUID {
	if key == "" {
		return nil
	}
	// La petición ya se validó; un valor inválido aquí no puede ocurrir.
	id, err := uuid.Parse(key)
	if err != nil {
		return nil
	}
	return &id
}

func mapTransactionResponse(t *model.Transaction, sourceNumber, targetNumber string) *model.TransactionResponse {
	if sourceNumber == "" {
		sourceNumber = model.ExternalSourceLabel
	}
	if targetNumber == "" {
		targetNumber = model.ExternalTargetLabel
	}
	return &model.TransactionResponse{
		ID:            t.ID,
		SourceAccount: sourceNumber,
		TargetAccount: targetNumber,
		Type:          t.Type,
		Amount:        t.Amount,
		Status:        t.Status,
		Description:   t.Description,
		ReferenceCode: t.ReferenceCode,
		Currency:      t.Currency,
		CreatedAt:     t.CreatedAt,
	}
}

func mapTransactionRows(rows []repository.TransactionRow) []model.TransactionResponse {
	out := make([]model.TransactionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, *mapTransactionResponse(&row.Transaction, row.SourceNumber, row.TargetNumber))
	}
	return out
}
