package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
	"github.com/transfa/corebank/internal/store"
)

// UnitOfWork is the subset of *uow.UnitOfWork command handlers need,
// declared locally so this package does not import uow directly — the same
// "define the interface where it is consumed" idiom used by the jobs
// package.
type UnitOfWork interface {
	RegisterNewCustomer(customer *domain.Customer)
	RegisterNewAccount(account *domain.Account)
	RegisterAccountUpdate(account *domain.Account, expectedRowVersion []byte)
	RegisterNewTransaction(txn *domain.Transaction)
	Commit(ctx context.Context) error
}

// UnitOfWorkFactory constructs a fresh Unit of Work scoped to a single
// command execution — no two commands share one.
type UnitOfWorkFactory func() UnitOfWork

// Commands bundles the repository and Unit of Work dependencies every
// command handler needs.
type Commands struct {
	customers  store.CustomerRepository
	accounts   store.AccountRepository
	uowFactory UnitOfWorkFactory
	logger     *slog.Logger
	now        func() time.Time
}

func NewCommands(customers store.CustomerRepository, accounts store.AccountRepository, uowFactory UnitOfWorkFactory, logger *slog.Logger) *Commands {
	return &Commands{customers: customers, accounts: accounts, uowFactory: uowFactory, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// CreateCustomerCommand is the CreateCustomer contract.
type CreateCustomerCommand struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	DateOfBirth time.Time
	BVN         string
	CreditScore int
}

func (CreateCustomerCommand) Name() string { return "CreateCustomer" }

// ValidateCreateCustomer implements the declarative rules the Validation
// middleware stage runs for CreateCustomerCommand: age < 18, malformed
// email/phone.
func ValidateCreateCustomer(req Request) []Violation {
	cmd, ok := req.(CreateCustomerCommand)
	if !ok {
		return nil
	}
	var violations []Violation
	if !emailPattern.MatchString(cmd.Email) {
		violations = append(violations, Violation{Field: "email", Reason: "malformed email address"})
	}
	if cmd.Phone != "" && !phonePattern.MatchString(cmd.Phone) {
		violations = append(violations, Violation{Field: "phone", Reason: "malformed phone number"})
	}
	if time.Since(cmd.DateOfBirth) < 18*365*24*time.Hour {
		violations = append(violations, Violation{Field: "date_of_birth", Reason: "customer must be at least 18 years old"})
	}
	return violations
}

// CreateCustomer implements the CreateCustomer command: fails validation on
// a duplicate email (checked here rather than in the validation registry,
// since it requires a repository round trip), then constructs and commits
// the new Customer aggregate.
func (c *Commands) CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) Result {
	existing, err := c.customers.GetByEmail(ctx, cmd.Email)
	if err != nil && domainerr.KindOf(err) != domainerr.KindNotFound {
		return Result{Err: err}
	}
	if existing != nil {
		return Result{Violations: []Violation{{Field: "email", Reason: "email already in use"}}}
	}

	customer, err := domain.NewCustomer(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone, cmd.Address, cmd.DateOfBirth, cmd.BVN, cmd.CreditScore, c.now())
	if err != nil {
		return Result{Err: err}
	}

	uow := c.uowFactory()
	uow.RegisterNewCustomer(customer)
	if err := uow.Commit(ctx); err != nil {
		return Result{Err: err}
	}
	return Result{Payload: customer.ID}
}

// accountNumberGenerationAttempts bounds the retry loop for a unique
// 10-digit account number.
const accountNumberGenerationAttempts = 10

func generateCandidateAccountNumber() string {
	return fmt.Sprintf("%010d", rand.Int63n(10_000_000_000))
}

// CreateAccountCommand is the CreateAccount contract.
type CreateAccountCommand struct {
	CustomerID     ids.CustomerID
	Type           domain.AccountType
	InitialDeposit moneytype.Money
}

func (CreateAccountCommand) Name() string { return "CreateAccount" }

// CreateAccount implements the CreateAccount command, generating a unique
// account number by retrying random 10-digit candidates.
func (c *Commands) CreateAccount(ctx context.Context, cmd CreateAccountCommand) Result {
	exists, err := c.customers.ExistsByID(ctx, cmd.CustomerID)
	if err != nil {
		return Result{Err: err}
	}
	if !exists {
		return Result{Err: domainerr.NotFound("customer not found")}
	}

	var accountNumber string
	for attempt := 0; attempt < accountNumberGenerationAttempts; attempt++ {
		candidate := generateCandidateAccountNumber()
		taken, err := c.accounts.AccountNumberExists(ctx, candidate)
		if err != nil {
			return Result{Err: err}
		}
		if !taken {
			accountNumber = candidate
			break
		}
	}
	if accountNumber == "" {
		return Result{Err: domainerr.Internal("exhausted account number generation budget", nil)}
	}

	account, err := domain.CreateAccount(cmd.CustomerID, accountNumber, cmd.Type, cmd.InitialDeposit, c.now())
	if err != nil {
		return Result{Err: err}
	}

	committedEvents := account.PendingEvents()
	uow := c.uowFactory()
	uow.RegisterNewAccount(account)
	if err := uow.Commit(ctx); err != nil {
		return Result{Err: err}
	}
	return Result{Payload: account.ID, CommittedEvents: committedEvents}
}

// TransferMoneyCommand is the TransferMoney contract.
type TransferMoneyCommand struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   moneytype.Money
	Reference                string
	Description              string
}

func (TransferMoneyCommand) Name() string { return "TransferMoney" }

// TransferMoney implements the TransferMoney command, translating aggregate
// failures into concrete error kinds: InsufficientFunds stays
// InsufficientFunds, currency mismatch is Validation, missing accounts are
// NotFound, and a stale row_version surfaces as Conflict via the Unit of
// Work's own translation.
func (c *Commands) TransferMoney(ctx context.Context, cmd TransferMoneyCommand) Result {
	source, err := c.accounts.GetByAccountNumber(ctx, cmd.SourceAccountNumber)
	if err != nil {
		return Result{Err: err}
	}
	destination, err := c.accounts.GetByAccountNumber(ctx, cmd.DestinationAccountNumber)
	if err != nil {
		return Result{Err: err}
	}

	sourceExpectedVersion := source.RowVersion
	destExpectedVersion := destination.RowVersion

	result, err := source.Transfer(destination, cmd.Amount, cmd.Reference, cmd.Description, c.now())
	if err != nil {
		// On insufficient funds, Transfer still queues an InsufficientFunds
		// event on the (unmutated) source account. Flush just that event
		// through a Unit of Work of its own so it reaches the outbox, then
		// surface the original failure to the caller.
		if domainerr.IsKind(err, domainerr.KindInsufficientFunds) && len(source.PendingEvents()) > 0 {
			uow := c.uowFactory()
			uow.RegisterAccountUpdate(source, sourceExpectedVersion)
			if commitErr := uow.Commit(ctx); commitErr != nil {
				c.logger.Warn("failed to flush insufficient-funds event", slog.Any("error", commitErr))
			}
		}
		return Result{Err: err}
	}

	committedEvents := source.PendingEvents()
	uow := c.uowFactory()
	uow.RegisterAccountUpdate(source, sourceExpectedVersion)
	uow.RegisterAccountUpdate(destination, destExpectedVersion)
	uow.RegisterNewTransaction(result.SourceTransaction)
	uow.RegisterNewTransaction(result.DestinationTransaction)
	if err := uow.Commit(ctx); err != nil {
		return Result{Err: err}
	}
	return Result{Payload: struct{}{}, CommittedEvents: committedEvents}
}
