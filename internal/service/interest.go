package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

var monthsPerYear = decimal.NewFromInt(12)

// InterestService abona los intereses mensuales de las cuentas de ahorro.
// Lo dispara el planificador cron del proceso servidor.
type InterestService struct {
	accountStore AccountStore
	transactions *TransactionService
	annualRate   decimal.Decimal
	logger       *logrus.Logger
}

func NewInterestService(accountStore AccountStore, transactions *TransactionService, annualRate decimal.Decimal, logger *logrus.Logger) *InterestService {
	return &InterestService{
		accountStore: accountStore,
		transactions: transactions,
		annualRate:   annualRate,
		logger:       logger,
	}
}

// PayAll recorre las cuentas de ahorro activas y abona a cada una el
// interés del período en su propia moneda. El fallo en una cuenta se
// registra y no detiene al resto.
func (s *InterestService) PayAll(ctx context.Context) {
	accounts, err := s.accountStore.FindActiveByType(ctx, model.AccountTypeSavings)
	if err != nil {
		s.logger.WithError(err).Error("No se pudieron listar las cuentas de ahorro")
		return
	}

	paid := 0
	for i := range accounts {
		account := &accounts[i]
		amount := s.monthlyInterest(account.Balance)
		if !amount.IsPositive() {
			continue
		}

		_, err := s.transactions.PayInterest(ctx, &model.PayInterestRequest{
			TargetAccount: account.AccountNumber,
			Amount:        amount,
			Currency:      account.Currency,
			Description:   "Abono de intereses",
		})
		if err != nil {
			s.logger.WithError(err).WithField("account_number", account.AccountNumber).
				Error("No se pudieron abonar los intereses de la cuenta")
			continue
		}
		paid++
	}

	s.logger.WithFields(logrus.Fields{
		"accounts": len(accounts),
		"paid":     paid,
	}).Info("Ciclo de intereses completado")
}

func (s *InterestService) monthlyInterest(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(s.annualRate).Div(monthsPerYear).Round(4)
}
