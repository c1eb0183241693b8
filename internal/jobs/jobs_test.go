package jobs

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

// stubAccounts implements store.AccountRepository with just enough behavior
// for the job bodies under test; every unexercised method panics so a test
// that starts relying on it fails loudly instead of silently.
type stubAccounts struct {
	active            []*domain.Account
	interestBearing   []*domain.Account
	inactiveSince     []*domain.Account
	updateRangeCalled [][]*domain.Account
	updateRangeErr    error
}

func (s *stubAccounts) GetByID(ctx context.Context, id ids.AccountID) (*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListByCustomer(ctx context.Context, customerID ids.CustomerID) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListActive(ctx context.Context) ([]*domain.Account, error) {
	return s.active, nil
}
func (s *stubAccounts) ListInterestBearing(ctx context.Context) ([]*domain.Account, error) {
	return s.interestBearing, nil
}
func (s *stubAccounts) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	return s.inactiveSince, nil
}
func (s *stubAccounts) ListByStatus(ctx context.Context, status domain.AccountStatus) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListLowBalance(ctx context.Context, threshold moneytype.Money) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) Add(ctx context.Context, account *domain.Account) error {
	panic("not implemented")
}
func (s *stubAccounts) Update(ctx context.Context, account *domain.Account, expectedRowVersion []byte) error {
	panic("not implemented")
}
func (s *stubAccounts) UpdateRange(ctx context.Context, accounts []*domain.Account) error {
	s.updateRangeCalled = append(s.updateRangeCalled, accounts)
	return s.updateRangeErr
}

type stubCustomers struct {
	byID map[ids.CustomerID]*domain.Customer
}

func (s *stubCustomers) GetByID(ctx context.Context, id ids.CustomerID) (*domain.Customer, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domainerr.NotFound("customer not found")
	}
	return c, nil
}
func (s *stubCustomers) ExistsByID(ctx context.Context, id ids.CustomerID) (bool, error) {
	panic("not implemented")
}
func (s *stubCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	panic("not implemented")
}
func (s *stubCustomers) List(ctx context.Context) ([]*domain.Customer, error) {
	panic("not implemented")
}
func (s *stubCustomers) Add(ctx context.Context, customer *domain.Customer) error {
	panic("not implemented")
}
func (s *stubCustomers) Update(ctx context.Context, customer *domain.Customer) error {
	panic("not implemented")
}

type stubTransactions struct {
	avgDailyBalance    float64
	avgDailyBalanceErr error
	byAccount          []*domain.Transaction
	olderThan          []*domain.Transaction
}

func (s *stubTransactions) GetByID(ctx context.Context, id ids.TransactionID) (*domain.Transaction, error) {
	panic("not implemented")
}
func (s *stubTransactions) ListByAccount(ctx context.Context, accountID ids.AccountID) ([]*domain.Transaction, error) {
	panic("not implemented")
}
func (s *stubTransactions) ListByAccountAndDateRange(ctx context.Context, accountID ids.AccountID, start, end time.Time) ([]*domain.Transaction, error) {
	return s.byAccount, nil
}
func (s *stubTransactions) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error) {
	return s.olderThan, nil
}
func (s *stubTransactions) ListRecentSince(ctx context.Context, accountID ids.AccountID, since time.Time) ([]*domain.Transaction, error) {
	panic("not implemented")
}
func (s *stubTransactions) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	panic("not implemented")
}
func (s *stubTransactions) CountInMonth(ctx context.Context, accountID ids.AccountID, txType domain.TransactionType, within time.Time) (int, error) {
	panic("not implemented")
}
func (s *stubTransactions) AverageDailyBalance(ctx context.Context, accountID ids.AccountID, startDate, endDate time.Time) (float64, error) {
	if s.avgDailyBalanceErr != nil {
		return 0, s.avgDailyBalanceErr
	}
	return s.avgDailyBalance, nil
}
func (s *stubTransactions) Add(ctx context.Context, txn *domain.Transaction) error {
	panic("not implemented")
}
func (s *stubTransactions) AddRange(ctx context.Context, txns []*domain.Transaction) error {
	panic("not implemented")
}

type stubUnitOfWork struct {
	committed     bool
	commitErr     error
	registeredTxn int
	registeredAcc int
}

func (u *stubUnitOfWork) RegisterAccountUpdate(account *domain.Account, expectedRowVersion []byte) {
	u.registeredAcc++
}
func (u *stubUnitOfWork) RegisterNewTransaction(txn *domain.Transaction) { u.registeredTxn++ }
func (u *stubUnitOfWork) Commit(ctx context.Context) error {
	u.committed = true
	return u.commitErr
}

type stubEmail struct {
	sent int
}

func (s *stubEmail) SendStatementNotification(ctx context.Context, email, fullName string, statementDate time.Time, artifact []byte) error {
	s.sent++
	return nil
}
func (s *stubEmail) SendJobFailureAlert(ctx context.Context, subject, message string, details map[string]any) error {
	return nil
}
func (s *stubEmail) SendCriticalAlert(ctx context.Context, subject, message string, details map[string]any) error {
	return nil
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, account *domain.Account, customer *domain.Customer, transactions []*domain.Transaction, periodStart, periodEnd time.Time) ([]byte, error) {
	return []byte("statement"), nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustNewAccountForJobsTest(accountType domain.AccountType, balanceMinor int64) *domain.Account {
	account, err := domain.CreateAccount(ids.NewCustomerID(), "0123456789", accountType, moneytype.New(balanceMinor, "NGN"), time.Now())
	if err != nil {
		panic(err)
	}
	return account
}
