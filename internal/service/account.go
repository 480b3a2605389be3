package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/repository"
)

// Moneda y tipo de la cuenta que se abre automáticamente al registrarse.
const (
	DefaultCurrency    = "PEN"
	DefaultAccountType = model.AccountTypeChecking
)

type AccountService struct {
	accountStore AccountStore
	codes        *CodeGenerator
	logger       *logrus.Logger
}

func NewAccountService(accountStore AccountStore, codes *CodeGenerator, logger *logrus.Logger) *AccountService {
	return &AccountService{accountStore: accountStore, codes: codes, logger: logger}
}

// Create abre una cuenta nueva para el usuario con saldo cero y un número
// de 14 dígitos único. Los números nunca se reutilizan, ni siquiera los de
// cuentas desactivadas.
func (s *AccountService) Create(ctx context.Context, userID int64, req *model.AccountCreationRequest) (*model.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account := &model.Account{
		UserID:      userID,
		AccountType: req.AccountType,
		Currency:    req.Currency,
		Balance:     decimal.Zero,
		IsActive:    true,
	}

	// Dos inserciones concurrentes pueden generar el mismo número aunque
	// ambas lo verificaran como libre. Ante esa colisión se regenera el
	// número y se reintenta la inserción completa.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		number, err := s.codes.Unique(ctx, AccountNumberLength, s.accountStore.ExistsByNumber)
		if err != nil {
			return nil, err
		}
		account.AccountNumber = number

		err = s.accountStore.Create(ctx, account)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"user_id":        userID,
				"account_number": number,
				"currency":       req.Currency,
			}).Info("Cuenta creada")
			return mapAccountResponse(account), nil
		}
		if !errors.Is(err, repository.ErrAccountNumberTaken) {
			return nil, err
		}
		s.logger.WithField("attempt", attempt+1).Warn("Colisión de número de cuenta, reintentando")
	}
	return nil, model.ErrCodeGenerationExhausted
}

// CreateDefault abre la cuenta inicial del registro: corriente en soles.
func (s *AccountService) CreateDefault(ctx context.Context, userID int64) (*model.AccountResponse, error) {
	return s.Create(ctx, userID, &model.AccountCreationRequest{
		Currency:    DefaultCurrency,
		AccountType: DefaultAccountType,
	})
}

// List devuelve todas las cuentas activas del usuario.
func (s *AccountService) List(ctx context.Context, userID int64) ([]model.AccountResponse, error) {
	accounts, err := s.accountStore.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, *mapAccountResponse(&accounts[i]))
	}
	return out, nil
}

// Deactivate da de baja lógica una cuenta del usuario. El número queda
// reservado para siempre y el historial de la cuenta permanece consultable
// por administración.
func (s *AccountService) Deactivate(ctx context.Context, userID int64, accountNumber string) error {
	account, err := s.accountStore.FindActiveByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return model.ErrNotOwner
	}

	if err := s.accountStore.Deactivate(ctx, account.ID, userID); err != nil {
		return err
	}
	s.logger.WithField("account_number", accountNumber).Info("Cuenta desactivada")
	return nil
}

func mapAccountResponse(a *model.Account) *model.AccountResponse {
	return &model.AccountResponse{
		ID:            a.ID,
		Currency:      a.Currency,
		Balance:       a.Balance,
		AccountType:   a.AccountType,
		AccountNumber: a.AccountNumber,
	}
}
