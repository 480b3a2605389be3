package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alvaro-chz/banking-core-api/internal/model"
	"github.com/alvaro-chz/banking-core-api/internal/repository"
)

// fakeStore es un almacén en memoria que implementa TxBeginner, AccountStore
// y TransactionStore. Begin toma un mutex global que se libera en
// Commit/Rollback, de modo que las operaciones concurrentes se serializan
// igual que con los bloqueos de fila FOR UPDATE.
type fakeStore struct {
	mu sync.Mutex

	nextAccountID int64
	nextTxID      int64

	accountsByNumber map[string]*model.Account
	accountsByID     map[int64]*model.Account
	transactions     []model.Transaction
	refCodes         map[string]bool
	idemKeys         map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accountsByNumber: make(map[string]*model.Account),
		accountsByID:     make(map[int64]*model.Account),
		refCodes:         make(map[string]bool),
		idemKeys:         make(map[string]bool),
	}
}

func (f *fakeStore) addAccount(userID int64, number, currency string, balance decimal.Decimal) *model.Account {
	f.nextAccountID++
	account := &model.Account{
		ID:            f.nextAccountID,
		UserID:        userID,
		AccountType:   model.AccountTypeChecking,
		AccountNumber: number,
		Currency:      currency,
		Balance:       balance,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	f.accountsByNumber[number] = account
	f.accountsByID[account.ID] = account
	return account
}

// fakeTx revierte en Rollback todo lo aplicado desde Begin.
type fakeTx struct {
	store    *fakeStore
	balances map[int64]decimal.Decimal
	txLen    int
	done     bool
}

func (f *fakeStore) Begin(ctx context.Context) (repository.Tx, error) {
	f.mu.Lock()
	balances := make(map[int64]decimal.Decimal, len(f.accountsByID))
	for id, account := range f.accountsByID {
		balances[id] = account.Balance
	}
	return &fakeTx{store: f, balances: balances, txLen: len(f.transactions)}, nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for id, balance := range t.balances {
		t.store.accountsByID[id].Balance = balance
	}
	for _, tx := range t.store.transactions[t.txLen:] {
		delete(t.store.refCodes, tx.ReferenceCode)
		if tx.IdempotencyKey != nil {
			delete(t.store.idemKeys, tx.IdempotencyKey.String())
		}
	}
	t.store.transactions = t.store.transactions[:t.txLen]
	t.store.mu.Unlock()
	return nil
}

// AccountStore

func (f *fakeStore) Create(ctx context.Context, account *model.Account) error {
	f.nextAccountID++
	account.ID = f.nextAccountID
	clone := *account
	f.accountsByNumber[account.AccountNumber] = &clone
	f.accountsByID[account.ID] = &clone
	return nil
}

func (f *fakeStore) FindActiveByNumber(ctx context.Context, number string) (*model.Account, error) {
	account, ok := f.accountsByNumber[number]
	if !ok || !account.IsActive {
		return nil, model.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

func (f *fakeStore) FindActiveByNumberForUpdate(ctx context.Context, tx repository.Tx, number string) (*model.Account, error) {
	return f.FindActiveByNumber(ctx, number)
}

func (f *fakeStore) UpdateBalanceTx(ctx context.Context, tx repository.Tx, accountID int64, delta decimal.Decimal) error {
	account, ok := f.accountsByID[accountID]
	if !ok {
		return model.ErrAccountNotFound
	}
	next := account.Balance.Add(delta)
	if next.IsNegative() {
		return model.ErrInsufficientFunds
	}
	account.Balance = next
	return nil
}

func (f *fakeStore) FindAllByUserID(ctx context.Context, userID int64) ([]model.Account, error) {
	var out []model.Account
	for _, account := range f.accountsByID {
		if account.UserID == userID && account.IsActive {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindActiveByType(ctx context.Context, accountType model.AccountType) ([]model.Account, error) {
	var out []model.Account
	for _, account := range f.accountsByID {
		if account.AccountType == accountType && account.IsActive {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, ok := f.accountsByNumber[number]
	return ok, nil
}

func (f *fakeStore) ExistsByNumberAndUserID(ctx context.Context, number string, userID int64) (bool, error) {
	account, ok := f.accountsByNumber[number]
	return ok && account.UserID == userID && account.IsActive, nil
}

func (f *fakeStore) Deactivate(ctx context.Context, accountID, userID int64) error {
	account, ok := f.accountsByID[accountID]
	if !ok || account.UserID != userID {
		return model.ErrAccountNotFound
	}
	account.IsActive = false
	return nil
}

// TransactionStore

func (f *fakeStore) CreateTx(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if f.refCodes[t.ReferenceCode] {
		return repository.ErrReferenceCodeTaken
	}
	if t.IdempotencyKey != nil {
		key := t.IdempotencyKey.String()
		if f.idemKeys[key] {
			return model.ErrDuplicateOperation
		}
		f.idemKeys[key] = true
	}
	f.nextTxID++
	t.ID = f.nextTxID
	f.refCodes[t.ReferenceCode] = true
	f.transactions = append(f.transactions, *t)
	return nil
}

func (f *fakeStore) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	return f.refCodes[code], nil
}

func (f *fakeStore) FindPageByAccountID(ctx context.Context, accountID int64, filter model.TransactionFilter, page, size int) ([]repository.TransactionRow, int64, error) {
	var matched []model.Transaction
	for _, t := range f.transactions {
		if !f.participates(t, accountID) {
			continue
		}
		if !matchesFilter(t, filter) {
			continue
		}
		matched = append(matched, t)
	}
	return f.pageOf(matched, page, size)
}

func (f *fakeStore) FindPage(ctx context.Context, filter model.TransactionFilter, page, size int) ([]repository.TransactionRow, int64, error) {
	var matched []model.Transaction
	for _, t := range f.transactions {
		if filter.AccountNumber != "" {
			account, ok := f.accountsByNumber[filter.AccountNumber]
			if !ok || !f.participates(t, account.ID) {
				continue
			}
		}
		if !matchesFilter(t, filter) {
			continue
		}
		matched = append(matched, t)
	}
	return f.pageOf(matched, page, size)
}

func (f *fakeStore) participates(t model.Transaction, accountID int64) bool {
	if id, ok := t.Source.AccountID(); ok && id == accountID {
		return true
	}
	if id, ok := t.Target.AccountID(); ok && id == accountID {
		return true
	}
	return false
}

func matchesFilter(t model.Transaction, filter model.TransactionFilter) bool {
	if filter.Status != "" && string(t.Status) != filter.Status {
		return false
	}
	if filter.From != nil && t.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && !t.CreatedAt.Before(filter.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// pageOf ordena del más reciente al más antiguo y corta la página pedida.
func (f *fakeStore) pageOf(matched []model.Transaction, page, size int) ([]repository.TransactionRow, int64, error) {
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	rows := make([]repository.TransactionRow, 0, end-start)
	for _, t := range matched[start:end] {
		rows = append(rows, repository.TransactionRow{
			Transaction:  t,
			SourceNumber: f.numberOf(t.Source),
			TargetNumber: f.numberOf(t.Target),
		})
	}
	return rows, total, nil
}

func (f *fakeStore) numberOf(party model.Counterparty) string {
	id, ok := party.AccountID()
	if !ok {
		return ""
	}
	if account, found := f.accountsByID[id]; found {
		return account.AccountNumber
	}
	return ""
}

func (f *fakeStore) CountRetainedUsers(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeStore) TransactionCurve(ctx context.Context) (map[string][]model.ChartDataPoint, error) {
	return map[string][]model.ChartDataPoint{}, nil
}

// fakeUserStore implementa UserStore sobre un mapa.
type fakeUserStore struct {
	nextID int64
	users  map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) addUser(email, password string) *model.User {
	f.nextID++
	user := &model.User{
		ID:       f.nextID,
		Role:     model.RoleClient,
		Name:     "Usuario",
		Email:    email,
		Password: password,
		IsActive: true,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return model.ErrEmailTaken
		}
		if user.DocumentID != "" && existing.DocumentID == user.DocumentID {
			return model.ErrDocumentTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) ExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	for _, user := range f.users {
		if user.DocumentID == documentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, user *model.User) error {
	existing, ok := f.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	existing.Email = user.Email
	existing.PhoneNumber = user.PhoneNumber
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	user, ok := f.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserStore) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	for _, user := range f.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserStore) SearchPage(ctx context.Context, filter model.UserSearchFilter, page, size int) ([]model.UserAdminResponse, int64, error) {
	return nil, 0, nil
}

// fakeAttemptStore implementa LoginAttemptStore.
type fakeAttemptStore struct {
	attempts map[int64]*model.LoginAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[int64]*model.LoginAttempt)}
}

func (f *fakeAttemptStore) Create(ctx context.Context, userID int64) error {
	f.attempts[userID] = &model.LoginAttempt{ID: userID, UserID: userID}
	return nil
}

func (f *fakeAttemptStore) FindByUserID(ctx context.Context, userID int64) (*model.LoginAttempt, error) {
	attempt, ok := f.attempts[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	clone := *attempt
	return &clone, nil
}

func (f *fakeAttemptStore) Update(ctx context.Context, attempt *model.LoginAttempt) error {
	clone := *attempt
	f.attempts[attempt.UserID] = &clone
	return nil
}

func (f *fakeAttemptStore) CountBlocked(ctx context.Context) (int64, error) {
	var count int64
	for _, attempt := range f.attempts {
		if attempt.IsBlocked {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttemptStore) FindLastBlocked(ctx context.Context, limit int) ([]model.BlockedUserSummary, error) {
	return nil, nil
}

// fakeBeneficiaryStore implementa BeneficiaryStore.
type fakeBeneficiaryStore struct {
	nextID        int64
	beneficiaries map[int64]*model.Beneficiary
}

func newFakeBeneficiaryStore() *fakeBeneficiaryStore {
	return &fakeBeneficiaryStore{beneficiaries: make(map[int64]*model.Beneficiary)}
}

func (f *fakeBeneficiaryStore) Create(ctx context.Context, beneficiary *model.Beneficiary) error {
	f.nextID++
	beneficiary.ID = f.nextID
	clone := *beneficiary
	f.beneficiaries[beneficiary.ID] = &clone
	return nil
}

func (f *fakeBeneficiaryStore) FindByID(ctx context.Context, id int64) (*model.Beneficiary, error) {
	beneficiary, ok := f.beneficiaries[id]
	if !ok {
		return nil, model.ErrBeneficiaryNotFound
	}
	clone := *beneficiary
	return &clone, nil
}

func (f *fakeBeneficiaryStore) FindAllActiveByUserID(ctx context.Context, userID int64) ([]model.Beneficiary, error) {
	var out []model.Beneficiary
	for _, beneficiary := range f.beneficiaries {
		if beneficiary.UserID == userID && beneficiary.IsActive {
			out = append(out, *beneficiary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBeneficiaryStore) ExistsActiveByUserAndNumber(ctx context.Context, userID int64, accountNumber string) (bool, error) {
	for _, beneficiary := range f.beneficiaries {
		if beneficiary.UserID == userID && beneficiary.AccountNumber == accountNumber && beneficiary.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBeneficiaryStore) Update(ctx context.Context, beneficiary *model.Beneficiary) error {
	if _, ok := f.beneficiaries[beneficiary.ID]; !ok {
		return model.ErrBeneficiaryNotFound
	}
	clone := *beneficiary
	f.beneficiaries[beneficiary.ID] = &clone
	return nil
}
