package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

func newBeneficiaryFixture() (*BeneficiaryService, *fakeBeneficiaryStore, *fakeStore) {
	store := newFakeStore()
	beneficiaries := newFakeBeneficiaryStore()
	return NewBeneficiaryService(beneficiaries, store, testLogger()), beneficiaries, store
}

func TestBeneficiaryCreateDefaultsBankName(t *testing.T) {
	service, _, _ := newBeneficiaryFixture()

	resp, err := service.Create(context.Background(), 1, &model.BeneficiaryCreateRequest{
		Alias:         "Mamá",
		AccountNumber: "33333333333333",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultBankName, resp.BankName)
	assert.Equal(t, "Mamá", resp.Alias)
}

func TestBeneficiaryCannotAddOwnAccount(t *testing.T) {
	service, _, store := newBeneficiaryFixture()
	own := store.addAccount(1, "11111111111111", "PEN", decimal.Zero)

	_, err := service.Create(context.Background(), 1, &model.BeneficiaryCreateRequest{
		AccountNumber: own.AccountNumber,
	})
	assert.ErrorIs(t, err, model.ErrOwnBeneficiary)

	// Otro usuario sí puede agregar esa cuenta.
	_, err = service.Create(context.Background(), 2, &model.BeneficiaryCreateRequest{
		AccountNumber: own.AccountNumber,
	})
	assert.NoError(t, err)
}

func TestBeneficiaryNoDuplicateActive(t *testing.T) {
	service, _, _ := newBeneficiaryFixture()

	req := &model.BeneficiaryCreateRequest{AccountNumber: "33333333333333"}
	_, err := service.Create(context.Background(), 1, req)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), 1, req)
	assert.ErrorIs(t, err, model.ErrBeneficiaryExists)
}

func TestBeneficiaryDeleteIsSoftAndReleasesNumber(t *testing.T) {
	service, beneficiaries, _ := newBeneficiaryFixture()

	req := &model.BeneficiaryCreateRequest{AccountNumber: "33333333333333"}
	created, err := service.Create(context.Background(), 1, req)
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), 1, created.ID))

	// La fila sigue existiendo, solo inactiva.
	stored, err := beneficiaries.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	listed, err := service.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Dado de baja, el mismo número se puede volver a registrar.
	_, err = service.Create(context.Background(), 1, req)
	assert.NoError(t, err)
}

func TestBeneficiaryOwnershipEnforced(t *testing.T) {
	service, _, _ := newBeneficiaryFixture()

	created, err := service.Create(context.Background(), 1, &model.BeneficiaryCreateRequest{
		AccountNumber: "33333333333333",
	})
	require.NoError(t, err)

	err = service.Delete(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, model.ErrBeneficiaryNotFound)

	_, err = service.Update(context.Background(), 2, created.ID, &model.BeneficiaryUpdateRequest{Alias: "X"})
	assert.ErrorIs(t, err, model.ErrBeneficiaryNotFound)
}

func TestBeneficiaryUpdate(t *testing.T) {
	service, _, _ := newBeneficiaryFixture()

	created, err := service.Create(context.Background(), 1, &model.BeneficiaryCreateRequest{
		Alias:         "Mamá",
		AccountNumber: "33333333333333",
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), 1, created.ID, &model.BeneficiaryUpdateRequest{
		Alias:    "Mamá Rosa",
		BankName: "Interbank",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mamá Rosa", updated.Alias)
	assert.Equal(t, "Interbank", updated.BankName)
	assert.Equal(t, "33333333333333", updated.AccountNumber)
}
