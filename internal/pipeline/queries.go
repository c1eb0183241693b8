package pipeline

import (
	"context"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/store"
)

// Queries bundles the read-only repository dependencies every query handler
// needs. Kept separate from Commands since queries never touch the Unit of
// Work — a query returns a Result carrying a projection DTO, nothing more.
type Queries struct {
	customers    store.CustomerRepository
	accounts     store.AccountRepository
	transactions store.TransactionRepository
}

func NewQueries(customers store.CustomerRepository, accounts store.AccountRepository, transactions store.TransactionRepository) *Queries {
	return &Queries{customers: customers, accounts: accounts, transactions: transactions}
}

// AccountDetailsDTO is the GetAccountDetails projection.
type AccountDetailsDTO struct {
	AccountNumber string
	Type          domain.AccountType
	Balance       int64
	Currency      string
	DateOpened    time.Time
	Active        bool
	OwnerFullName string
}

// GetAccountDetailsQuery is the GetAccountDetails contract.
type GetAccountDetailsQuery struct {
	AccountNumber string
}

func (GetAccountDetailsQuery) Name() string { return "GetAccountDetails" }

func (q *Queries) GetAccountDetails(ctx context.Context, query GetAccountDetailsQuery) Result {
	account, err := q.accounts.GetByAccountNumber(ctx, query.AccountNumber)
	if err != nil {
		return Result{Err: err}
	}
	owner, err := q.customers.GetByID(ctx, account.CustomerID)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Payload: AccountDetailsDTO{
		AccountNumber: account.AccountNumber,
		Type:          account.Type,
		Balance:       account.Balance.AmountMinor,
		Currency:      account.Balance.Currency,
		DateOpened:    account.DateOpened,
		Active:        account.IsActive,
		OwnerFullName: owner.FullName(),
	}}
}

// TransactionDTO is one row of the GetTransactionHistory projection.
type TransactionDTO struct {
	ID          ids.TransactionID
	Type        domain.TransactionType
	Amount      int64
	Currency    string
	Description string
	Timestamp   time.Time
	Reference   string
}

func toTransactionDTO(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount.AmountMinor,
		Currency:    t.Amount.Currency,
		Description: t.Description,
		Timestamp:   t.Timestamp,
		Reference:   t.Reference,
	}
}

// GetTransactionHistoryQuery is the GetTransactionHistory contract.
type GetTransactionHistoryQuery struct {
	AccountID ids.AccountID
	Start     time.Time
	End       time.Time
}

func (GetTransactionHistoryQuery) Name() string { return "GetTransactionHistory" }

func (q *Queries) GetTransactionHistory(ctx context.Context, query GetTransactionHistoryQuery) Result {
	txns, err := q.transactions.ListByAccountAndDateRange(ctx, query.AccountID, query.Start, query.End)
	if err != nil {
		return Result{Err: err}
	}
	dtos := make([]TransactionDTO, len(txns))
	for i, t := range txns {
		dtos[i] = toTransactionDTO(t)
	}
	return Result{Payload: dtos}
}

// AccountSummaryDTO is the account-summary shape embedded in customer DTOs.
type AccountSummaryDTO struct {
	AccountNumber string
	Type          domain.AccountType
	Balance       int64
	Currency      string
	Active        bool
}

// CustomerDTO is the GetCustomers/GetCustomerDetails projection, including
// owned account summaries.
type CustomerDTO struct {
	ID        ids.CustomerID
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	Active    bool
	Accounts  []AccountSummaryDTO
}

func toAccountSummary(a *domain.Account) AccountSummaryDTO {
	return AccountSummaryDTO{
		AccountNumber: a.AccountNumber,
		Type:          a.Type,
		Balance:       a.Balance.AmountMinor,
		Currency:      a.Balance.Currency,
		Active:        a.IsActive,
	}
}

func (q *Queries) toCustomerDTO(ctx context.Context, customer *domain.Customer) (CustomerDTO, error) {
	accounts, err := q.accounts.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return CustomerDTO{}, err
	}
	summaries := make([]AccountSummaryDTO, len(accounts))
	for i, a := range accounts {
		summaries[i] = toAccountSummary(a)
	}
	return CustomerDTO{
		ID:        customer.ID,
		FullName:  customer.FullName(),
		Email:     customer.Email,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
		Active:    customer.IsActive,
		Accounts:  summaries,
	}, nil
}

// GetCustomersQuery is the GetCustomers contract.
type GetCustomersQuery struct{}

func (GetCustomersQuery) Name() string { return "GetCustomers" }

func (q *Queries) GetCustomers(ctx context.Context, _ GetCustomersQuery) Result {
	customers, err := q.customers.List(ctx)
	if err != nil {
		return Result{Err: err}
	}
	dtos := make([]CustomerDTO, 0, len(customers))
	for _, customer := range customers {
		dto, err := q.toCustomerDTO(ctx, customer)
		if err != nil {
			return Result{Err: err}
		}
		dtos = append(dtos, dto)
	}
	return Result{Payload: dtos}
}

// GetCustomerDetailsQuery is the GetCustomerDetails contract.
type GetCustomerDetailsQuery struct {
	CustomerID ids.CustomerID
}

func (GetCustomerDetailsQuery) Name() string { return "GetCustomerDetails" }

func (q *Queries) GetCustomerDetails(ctx context.Context, query GetCustomerDetailsQuery) Result {
	customer, err := q.customers.GetByID(ctx, query.CustomerID)
	if err != nil {
		return Result{Err: err}
	}
	dto, err := q.toCustomerDTO(ctx, customer)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Payload: dto}
}
