package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

type stubCustomers struct {
	byID     map[ids.CustomerID]*domain.Customer
	byEmail  map[string]*domain.Customer
	existsID map[ids.CustomerID]bool
}

func (s *stubCustomers) GetByID(ctx context.Context, id ids.CustomerID) (*domain.Customer, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domainerr.NotFound("customer not found")
	}
	return c, nil
}
func (s *stubCustomers) ExistsByID(ctx context.Context, id ids.CustomerID) (bool, error) {
	return s.existsID[id], nil
}
func (s *stubCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	c, ok := s.byEmail[email]
	if !ok {
		return nil, domainerr.NotFound("customer not found")
	}
	return c, nil
}
func (s *stubCustomers) List(ctx context.Context) ([]*domain.Customer, error) {
	var out []*domain.Customer
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out, nil
}
func (s *stubCustomers) Add(ctx context.Context, customer *domain.Customer) error { return nil }
func (s *stubCustomers) Update(ctx context.Context, customer *domain.Customer) error {
	return nil
}

type stubAccounts struct {
	byNumber     map[string]*domain.Account
	numberExists map[string]bool
	byCustomer   map[ids.CustomerID][]*domain.Account
}

func (s *stubAccounts) GetByID(ctx context.Context, id ids.AccountID) (*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	a, ok := s.byNumber[accountNumber]
	if !ok {
		return nil, domainerr.NotFound("account not found")
	}
	return a, nil
}
func (s *stubAccounts) ListByCustomer(ctx context.Context, customerID ids.CustomerID) ([]*domain.Account, error) {
	return s.byCustomer[customerID], nil
}
func (s *stubAccounts) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	return s.numberExists[accountNumber], nil
}
func (s *stubAccounts) ListActive(ctx context.Context) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListInterestBearing(ctx context.Context) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListByStatus(ctx context.Context, status domain.AccountStatus) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) ListLowBalance(ctx context.Context, threshold moneytype.Money) ([]*domain.Account, error) {
	panic("not implemented")
}
func (s *stubAccounts) Add(ctx context.Context, account *domain.Account) error { return nil }
func (s *stubAccounts) Update(ctx context.Context, account *domain.Account, expectedRowVersion []byte) error {
	return nil
}
func (s *stubAccounts) UpdateRange(ctx context.Context, accounts []*domain.Account) error {
	return nil
}

type stubUnitOfWork struct {
	commitErr error
	committed bool
}

func (u *stubUnitOfWork) RegisterNewCustomer(customer *domain.Customer)     {}
func (u *stubUnitOfWork) RegisterNewAccount(account *domain.Account)       {}
func (u *stubUnitOfWork) RegisterAccountUpdate(account *domain.Account, expectedRowVersion []byte) {
}
func (u *stubUnitOfWork) RegisterNewTransaction(txn *domain.Transaction) {}
func (u *stubUnitOfWork) Commit(ctx context.Context) error {
	u.committed = true
	return u.commitErr
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCustomerRejectsDuplicateEmail(t *testing.T) {
	existing, err := domain.NewCustomer("Ada", "Lovelace", "ada@example.com", "", "", time.Now(), "", 0, time.Now())
	if err != nil {
		t.Fatalf("NewCustomer() error = %v", err)
	}
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{"ada@example.com": existing}}
	commands := NewCommands(customers, &stubAccounts{}, func() UnitOfWork { return &stubUnitOfWork{} }, newTestLogger())

	result := commands.CreateCustomer(context.Background(), CreateCustomerCommand{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DateOfBirth: time.Now().AddDate(-30, 0, 0),
	})
	if len(result.Violations) != 1 || result.Violations[0].Field != "email" {
		t.Fatalf("expected an email violation, got %+v", result)
	}
}

func TestCreateCustomerSucceedsAndCommits(t *testing.T) {
	customers := &stubCustomers{byEmail: map[string]*domain.Customer{}}
	uow := &stubUnitOfWork{}
	commands := NewCommands(customers, &stubAccounts{}, func() UnitOfWork { return uow }, newTestLogger())

	result := commands.CreateCustomer(context.Background(), CreateCustomerCommand{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DateOfBirth: time.Now().AddDate(-30, 0, 0),
	})
	if !result.Ok() {
		t.Fatalf("expected success, got %+v", result)
	}
	if !uow.committed {
		t.Fatal("expected the unit of work to be committed")
	}
}

func TestCreateAccountRejectsUnknownCustomer(t *testing.T) {
	customers := &stubCustomers{existsID: map[ids.CustomerID]bool{}}
	commands := NewCommands(customers, &stubAccounts{}, func() UnitOfWork { return &stubUnitOfWork{} }, newTestLogger())

	result := commands.CreateAccount(context.Background(), CreateAccountCommand{
		CustomerID: ids.NewCustomerID(), Type: domain.Checking, InitialDeposit: moneytype.New(0, "NGN"),
	})
	if !domainerr.IsKind(result.Err, domainerr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", result.Err)
	}
}

func TestCreateAccountSucceedsAndCarriesCommittedEvents(t *testing.T) {
	customerID := ids.NewCustomerID()
	customers := &stubCustomers{existsID: map[ids.CustomerID]bool{customerID: true}}
	accounts := &stubAccounts{numberExists: map[string]bool{}}
	uow := &stubUnitOfWork{}
	commands := NewCommands(customers, accounts, func() UnitOfWork { return uow }, newTestLogger())

	result := commands.CreateAccount(context.Background(), CreateAccountCommand{
		CustomerID: customerID, Type: domain.Checking, InitialDeposit: moneytype.New(1000, "NGN"),
	})
	if !result.Ok() {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.CommittedEvents) != 1 || result.CommittedEvents[0].TypeTag() != "account.created" {
		t.Fatalf("expected one account.created committed event, got %+v", result.CommittedEvents)
	}
}

func TestTransferMoneySucceeds(t *testing.T) {
	source, err := domain.CreateAccount(ids.NewCustomerID(), "1111111111", domain.Checking, moneytype.New(1000, "NGN"), time.Now())
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	dest, err := domain.CreateAccount(ids.NewCustomerID(), "2222222222", domain.Checking, moneytype.New(0, "NGN"), time.Now())
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	source.ClearPendingEvents()
	dest.ClearPendingEvents()

	accounts := &stubAccounts{byNumber: map[string]*domain.Account{"1111111111": source, "2222222222": dest}}
	uow := &stubUnitOfWork{}
	commands := NewCommands(&stubCustomers{}, accounts, func() UnitOfWork { return uow }, newTestLogger())

	result := commands.TransferMoney(context.Background(), TransferMoneyCommand{
		SourceAccountNumber: "1111111111", DestinationAccountNumber: "2222222222", Amount: moneytype.New(300, "NGN"),
	})
	if !result.Ok() {
		t.Fatalf("expected success, got %+v", result)
	}
	if !uow.committed {
		t.Fatal("expected the unit of work to be committed")
	}
}

func TestTransferMoneyOnInsufficientFundsStillFlushesEvent(t *testing.T) {
	source, err := domain.CreateAccount(ids.NewCustomerID(), "1111111111", domain.Checking, moneytype.New(100, "NGN"), time.Now())
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	dest, err := domain.CreateAccount(ids.NewCustomerID(), "2222222222", domain.Checking, moneytype.New(0, "NGN"), time.Now())
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	source.ClearPendingEvents()
	dest.ClearPendingEvents()

	accounts := &stubAccounts{byNumber: map[string]*domain.Account{"1111111111": source, "2222222222": dest}}
	uow := &stubUnitOfWork{}
	commands := NewCommands(&stubCustomers{}, accounts, func() UnitOfWork { return uow }, newTestLogger())

	result := commands.TransferMoney(context.Background(), TransferMoneyCommand{
		SourceAccountNumber: "1111111111", DestinationAccountNumber: "2222222222", Amount: moneytype.New(500, "NGN"),
	})
	if !domainerr.IsKind(result.Err, domainerr.KindInsufficientFunds) {
		t.Fatalf("expected KindInsufficientFunds, got %v", result.Err)
	}
	if !uow.committed {
		t.Fatal("expected the unit of work to still be committed to flush the insufficient-funds event")
	}
}

func TestValidateCreateCustomerRejectsUnderageAndMalformedFields(t *testing.T) {
	violations := ValidateCreateCustomer(CreateCustomerCommand{
		Email: "not-an-email", Phone: "abc", DateOfBirth: time.Now().AddDate(-10, 0, 0),
	})
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %+v", len(violations), violations)
	}
}

func TestValidateCreateCustomerAcceptsValidInput(t *testing.T) {
	violations := ValidateCreateCustomer(CreateCustomerCommand{
		Email: "ada@example.com", Phone: "+2348000000000", DateOfBirth: time.Now().AddDate(-30, 0, 0),
	})
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
}
