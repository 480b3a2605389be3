package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (f *fakeAuditStore) Insert(ctx context.Context, entry *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

type authFixture struct {
	service  *AuthService
	users    *fakeUserStore
	attempts *fakeAttemptStore
	store    *fakeStore
	audit    *AuditLogService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := testLogger()
	store := newFakeStore()
	users := newFakeUserStore()
	attempts := newFakeAttemptStore()
	audit := NewAuditLogService(&fakeAuditStore{}, logger)
	t.Cleanup(audit.Close)

	accounts := NewAccountService(store, NewCodeGenerator(), logger)
	return &authFixture{
		service:  NewAuthService(users, attempts, accounts, audit, "clave-de-prueba", time.Hour, logger),
		users:    users,
		attempts: attempts,
		store:    store,
		audit:    audit,
	}
}

func validRegisterRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:        "María",
		LastName1:   "Quispe",
		DocumentID:  "45678912",
		Email:       "maria@example.com",
		Password:    "secreta123",
		PhoneNumber: "999888777",
	}
}

func TestRegisterCreatesDefaultAccount(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleClient, resp.Role)

	accounts, err := f.store.FindAllByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	require.Len(t, accounts, 1, "el registro abre la cuenta inicial")
	assert.Equal(t, DefaultCurrency, accounts[0].Currency)
	assert.Equal(t, DefaultAccountType, accounts[0].AccountType)
	assert.True(t, accounts[0].Balance.IsZero())
	assert.Len(t, accounts[0].AccountNumber, AccountNumberLength)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	dup := validRegisterRequest()
	dup.DocumentID = "11223344"
	_, err = f.service.Register(context.Background(), dup)
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	resp, err := f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "secreta123",
	}, "10.0.0.1", "tests")
	require.NoError(t, err)

	claims, err := f.service.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, model.RoleClient, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "incorrecta1",
	}, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "nadie@example.com",
		Password: "loquesea1",
	}, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginBlocksAfterThreeFailures(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	bad := &model.LoginRequest{Email: "maria@example.com", Password: "incorrecta1"}

	_, err = f.service.Login(context.Background(), bad, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = f.service.Login(context.Background(), bad, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = f.service.Login(context.Background(), bad, "", "")
	assert.ErrorIs(t, err, model.ErrUserBlocked)

	// Con el bloqueo activo ni la contraseña correcta entra.
	_, err = f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "secreta123",
	}, "", "")
	assert.ErrorIs(t, err, model.ErrUserBlocked)

	attempt, err := f.attempts.FindByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.True(t, attempt.IsBlocked)
	assert.Equal(t, 3, attempt.Attempts)
}

func TestLoginAutoUnblocksAfterWait(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	past := time.Now().Add(-autoUnblockWait - time.Minute)
	require.NoError(t, f.attempts.Update(context.Background(), &model.LoginAttempt{
		UserID:      resp.UserID,
		Attempts:    3,
		LastAttempt: &past,
		IsBlocked:   true,
	}))

	auth, err := f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "secreta123",
	}, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)

	attempt, err := f.attempts.FindByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.False(t, attempt.IsBlocked)
	assert.Equal(t, 0, attempt.Attempts)
}

func TestLoginHardLockNeverExpires(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, f.attempts.Update(context.Background(), &model.LoginAttempt{
		UserID:      resp.UserID,
		Attempts:    hardLockCount,
		LastAttempt: &past,
		IsBlocked:   true,
	}))

	_, err = f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "secreta123",
	}, "", "")
	assert.ErrorIs(t, err, model.ErrUserBlocked)
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	bad := &model.LoginRequest{Email: "maria@example.com", Password: "incorrecta1"}
	_, err = f.service.Login(context.Background(), bad, "", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = f.service.Login(context.Background(), &model.LoginRequest{
		Email:    "maria@example.com",
		Password: "secreta123",
	}, "", "")
	require.NoError(t, err)

	attempt, err := f.attempts.FindByUserID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Attempts)
	assert.False(t, attempt.IsBlocked)
}

func TestPasswordsAreHashed(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	user, err := f.users.FindByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "secreta123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secreta123")))
}
