package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore, *model.User) {
	t.Helper()
	users := newFakeUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := users.addUser("maria@example.com", string(hashed))
	return NewUserService(users, testLogger()), users, user
}

func TestUpdateProfileChangesEmailAndPhone(t *testing.T) {
	service, users, user := newUserFixture(t)

	updated, err := service.UpdateProfile(context.Background(), user.ID, &model.UserUpdateRequest{
		Email:       "nueva@example.com",
		PhoneNumber: "111222333",
	})
	require.NoError(t, err)
	assert.Equal(t, "nueva@example.com", updated.Email)
	assert.Equal(t, "111222333", updated.PhoneNumber)

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "nueva@example.com", stored.Email)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	service, users, user := newUserFixture(t)
	users.addUser("otra@example.com", "x")

	_, err := service.UpdateProfile(context.Background(), user.ID, &model.UserUpdateRequest{
		Email: "otra@example.com",
	})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestUpdateProfileRejectsMalformedEmail(t *testing.T) {
	service, _, user := newUserFixture(t)

	_, err := service.UpdateProfile(context.Background(), user.ID, &model.UserUpdateRequest{
		Email: "no-es-un-email",
	})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	service, users, user := newUserFixture(t)

	err := service.ChangePassword(context.Background(), user.ID, &model.ChangePasswordRequest{
		CurrentPassword:      "secreta123",
		NewPassword:          "nuevaclave9",
		ConfirmationPassword: "nuevaclave9",
	})
	require.NoError(t, err)

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("nuevaclave9")))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	service, _, user := newUserFixture(t)

	err := service.ChangePassword(context.Background(), user.ID, &model.ChangePasswordRequest{
		CurrentPassword:      "incorrecta1",
		NewPassword:          "nuevaclave9",
		ConfirmationPassword: "nuevaclave9",
	})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestChangePasswordConfirmationMismatch(t *testing.T) {
	service, _, user := newUserFixture(t)

	err := service.ChangePassword(context.Background(), user.ID, &model.ChangePasswordRequest{
		CurrentPassword:      "secreta123",
		NewPassword:          "nuevaclave9",
		ConfirmationPassword: "distinta999",
	})
	assert.ErrorIs(t, err, model.ErrPasswordConfirmation)
}

func TestChangePasswordMustDiffer(t *testing.T) {
	service, _, user := newUserFixture(t)

	err := service.ChangePassword(context.Background(), user.ID, &model.ChangePasswordRequest{
		CurrentPassword:      "secreta123",
		NewPassword:          "secreta123",
		ConfirmationPassword: "secreta123",
	})
	assert.ErrorIs(t, err, model.ErrSamePassword)
}
