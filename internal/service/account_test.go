package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

func TestAccountCreateStartsAtZero(t *testing.T) {
	store := newFakeStore()
	service := NewAccountService(store, NewCodeGenerator(), testLogger())

	resp, err := service.Create(context.Background(), 1, &model.AccountCreationRequest{
		Currency:    "USD",
		AccountType: model.AccountTypeSavings,
	})
	require.NoError(t, err)

	assert.Len(t, resp.AccountNumber, AccountNumberLength)
	assert.True(t, resp.Balance.IsZero())
	assert.Equal(t, model.AccountTypeSavings, resp.AccountType)
	assert.Equal(t, "USD", resp.Currency)
}

func TestAccountCreateRejectsBadType(t *testing.T) {
	store := newFakeStore()
	service := NewAccountService(store, NewCodeGenerator(), testLogger())

	_, err := service.Create(context.Background(), 1, &model.AccountCreationRequest{
		Currency:    "USD",
		AccountType: "PLAZO_FIJO",
	})
	assert.Error(t, err)
}

func TestAccountNumbersAreUnique(t *testing.T) {
	store := newFakeStore()
	service := NewAccountService(store, NewCodeGenerator(), testLogger())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := service.Create(context.Background(), 1, &model.AccountCreationRequest{
			Currency:    "PEN",
			AccountType: model.AccountTypeChecking,
		})
		require.NoError(t, err)
		require.False(t, seen[resp.AccountNumber])
		seen[resp.AccountNumber] = true
	}
}

func TestAccountDeactivateRequiresOwnership(t *testing.T) {
	store := newFakeStore()
	account := store.addAccount(1, "11111111111111", "PEN", decimal.Zero)
	service := NewAccountService(store, NewCodeGenerator(), testLogger())

	err := service.Deactivate(context.Background(), 2, account.AccountNumber)
	assert.ErrorIs(t, err, model.ErrNotOwner)

	require.NoError(t, service.Deactivate(context.Background(), 1, account.AccountNumber))

	// Desactivada deja de resolverse, pero el número sigue reservado.
	_, err = store.FindActiveByNumber(context.Background(), account.AccountNumber)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	taken, err := store.ExistsByNumber(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestInterestMonthlyAmount(t *testing.T) {
	store := newFakeStore()
	savings := store.addAccount(1, "11111111111111", "PEN", decimal.RequireFromString("1000.00"))
	savings.AccountType = model.AccountTypeSavings
	checking := store.addAccount(1, "22222222222222", "PEN", decimal.RequireFromString("1000.00"))

	engine := newTestEngine(store, newFakeUserStore())
	interest := NewInterestService(store, engine, decimal.RequireFromString("0.02"), testLogger())

	interest.PayAll(context.Background())

	// 1000 * 0.02 / 12 = 1.6667 solo en la cuenta de ahorros.
	assert.True(t, store.accountsByID[savings.ID].Balance.Equal(decimal.RequireFromString("1001.6667")),
		"saldo ahorro: %s", store.accountsByID[savings.ID].Balance)
	assert.True(t, store.accountsByID[checking.ID].Balance.Equal(decimal.RequireFromString("1000.00")))
}
