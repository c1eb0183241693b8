package domain

import (
	"fmt"
	"time"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/events"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

type AccountType string

const (
	Checking     AccountType = "checking"
	Savings      AccountType = "savings"
	FixedDeposit AccountType = "fixed_deposit"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusClosed    AccountStatus = "closed"
	StatusSuspended AccountStatus = "suspended"
	StatusArchived  AccountStatus = "archived"
)

// SavingsMonthlyWithdrawalCap is the number of withdrawals a Savings account
// may make in a single calendar month before WithdrawalLimit fires.
const SavingsMonthlyWithdrawalCap = 6

// Account is the aggregate root. It is the only entity in the system that
// emits domain events; every method here is pure — no I/O, no logging — and
// either mutates the receiver and returns success, or returns a typed
// failure and leaves the receiver's state untouched. The one exception is
// Transfer on insufficient funds, which still queues an InsufficientFunds
// event while leaving balances and transactions unchanged.
type Account struct {
	ID            ids.AccountID
	AccountNumber string
	CustomerID    ids.CustomerID
	Type          AccountType
	Balance       moneytype.Money
	DateOpened    time.Time
	IsActive      bool

	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy string

	RowVersion []byte

	LastActivity      time.Time
	Status            AccountStatus
	IsInterestBearing bool
	IsArchived        bool

	transactions  []*Transaction
	pendingEvents []events.DomainEvent
}

// PendingEvents returns a read-only snapshot of events queued since the last
// commit. Callers must not mutate the returned slice; the Unit of Work is
// the only privileged caller allowed to clear it, via ClearPendingEvents.
func (a *Account) PendingEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(a.pendingEvents))
	copy(out, a.pendingEvents)
	return out
}

// ClearPendingEvents empties the pending-events queue. Only the Unit of Work
// calls this, and only after a successful commit.
func (a *Account) ClearPendingEvents() {
	a.pendingEvents = nil
}

// RestorePendingEvents re-queues events that were snapshotted for a commit
// that subsequently failed, so the in-memory aggregate does not diverge from
// what was actually persisted.
func (a *Account) RestorePendingEvents(snapshot []events.DomainEvent) {
	a.pendingEvents = append(snapshot[:0:0], snapshot...)
}

func (a *Account) appendEvent(e events.DomainEvent) {
	a.pendingEvents = append(a.pendingEvents, e)
}

// Transactions returns the in-memory child transactions loaded onto this
// account, if any. The aggregate never lazily fetches these itself;
// repositories populate the slice when a caller asks for it.
func (a *Account) Transactions() []*Transaction {
	out := make([]*Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// AttachTransactions hydrates an already-loaded account with its
// transaction history, replacing whatever collection it held. Aggregate
// methods append newly created transactions to the collection directly.
func (a *Account) AttachTransactions(txns []*Transaction) {
	a.transactions = append(a.transactions[:0:0], txns...)
}

// CreateAccount constructs a new Account and appends AccountCreated.
func CreateAccount(customerID ids.CustomerID, accountNumber string, accountType AccountType, initialDeposit moneytype.Money, now time.Time) (*Account, error) {
	if initialDeposit.AmountMinor < 0 {
		return nil, domainerr.Validation("initial deposit must not be negative")
	}
	if !initialDeposit.IsValidCurrency() {
		return nil, domainerr.Validation("currency must be a 3-letter code")
	}
	switch accountType {
	case Checking, Savings, FixedDeposit:
	default:
		return nil, domainerr.Validation(fmt.Sprintf("unknown account type %q", accountType))
	}

	account := &Account{
		ID:            ids.NewAccountID(),
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		Type:          accountType,
		Balance:       initialDeposit,
		DateOpened:    now,
		IsActive:      true,
		LastActivity:  now,
		Status:        StatusActive,
	}
	account.appendEvent(events.NewAccountCreated(account.ID, accountNumber, customerID, string(accountType), initialDeposit))
	return account, nil
}

func (a *Account) requireActive() error {
	if a.IsDeleted {
		return domainerr.InvalidOperation("account is deleted")
	}
	if !a.IsActive || a.Status == StatusClosed || a.Status == StatusSuspended {
		return domainerr.InvalidOperation("account is not active")
	}
	return nil
}

// Deposit appends a Deposit transaction and increases the balance.
func (a *Account) Deposit(amount moneytype.Money, description string, now time.Time) (*Transaction, error) {
	if amount.AmountMinor <= 0 {
		return nil, domainerr.Validation("deposit amount must be positive")
	}
	if !amount.SameCurrency(a.Balance) {
		return nil, domainerr.Validation("deposit currency must match account currency")
	}
	if err := a.requireActive(); err != nil {
		return nil, err
	}

	txn := NewTransaction(a.ID, Deposit, amount, description, now, "")
	a.Balance = a.Balance.Add(amount)
	a.LastActivity = now
	a.transactions = append(a.transactions, txn)
	return txn, nil
}

// Withdraw appends a Withdrawal transaction and decreases the balance.
// monthWithdrawalCountSoFar is the number of Savings withdrawals already
// recorded in the account's current calendar month, not counting this one;
// the aggregate is pure, so the caller (which has repository access) must
// supply it rather than the aggregate querying storage itself.
func (a *Account) Withdraw(amount moneytype.Money, description string, monthWithdrawalCountSoFar int, now time.Time) (*Transaction, error) {
	if amount.AmountMinor <= 0 {
		return nil, domainerr.Validation("withdrawal amount must be positive")
	}
	if !amount.SameCurrency(a.Balance) {
		return nil, domainerr.Validation("withdrawal currency must match account currency")
	}
	if err := a.requireActive(); err != nil {
		return nil, err
	}
	if a.Type == Savings && monthWithdrawalCountSoFar+1 > SavingsMonthlyWithdrawalCap {
		return nil, domainerr.WithdrawalLimit(fmt.Sprintf("savings withdrawal cap of %d reached for this month", SavingsMonthlyWithdrawalCap))
	}
	if a.Balance.LessThan(amount) {
		return nil, domainerr.InsufficientFunds("balance is insufficient for this withdrawal")
	}

	txn := NewTransaction(a.ID, Withdrawal, amount, description, now, "")
	a.Balance = a.Balance.Sub(amount)
	a.LastActivity = now
	a.transactions = append(a.transactions, txn)
	return txn, nil
}

// TransferResult carries both legs of a successful Transfer.
type TransferResult struct {
	SourceTransaction      *Transaction
	DestinationTransaction *Transaction
}

// Transfer debits the receiver and credits destination, appending matching
// TransferOut/TransferIn transactions that share a reference, and queues a
// MoneyTransferred event on the receiver (the initiating side). On
// insufficient funds it queues an InsufficientFunds event instead and
// mutates nothing.
func (a *Account) Transfer(destination *Account, amount moneytype.Money, reference, description string, now time.Time) (*TransferResult, error) {
	if destination == nil {
		return nil, domainerr.Validation("destination account is required")
	}
	if a.ID == destination.ID {
		return nil, domainerr.Validation("source and destination accounts must be distinct")
	}
	if amount.AmountMinor <= 0 {
		return nil, domainerr.Validation("transfer amount must be positive")
	}
	if !amount.SameCurrency(a.Balance) || !amount.SameCurrency(destination.Balance) {
		return nil, domainerr.Validation("transfer requires matching currencies on both accounts")
	}
	if err := a.requireActive(); err != nil {
		return nil, err
	}
	if err := destination.requireActive(); err != nil {
		return nil, err
	}

	if a.Balance.LessThan(amount) {
		a.appendEvent(events.NewInsufficientFunds(a.AccountNumber, amount, a.Balance, "transfer"))
		return nil, domainerr.InsufficientFunds("source balance is insufficient for this transfer")
	}

	sharedID := ids.NewTransactionID()
	if reference == "" {
		reference = GenerateReference(now, sharedID)
	}

	sourceTxn := NewTransactionWithID(sharedID, a.ID, TransferOut, amount, description, now, reference)
	destTxn := NewTransactionWithID(ids.NewTransactionID(), destination.ID, TransferIn, amount, description, now, reference)

	a.Balance = a.Balance.Sub(amount)
	destination.Balance = destination.Balance.Add(amount)
	a.LastActivity = now
	destination.LastActivity = now
	a.transactions = append(a.transactions, sourceTxn)
	destination.transactions = append(destination.transactions, destTxn)

	a.appendEvent(events.NewMoneyTransferred(sharedID, a.AccountNumber, destination.AccountNumber, amount, reference, now))

	return &TransferResult{SourceTransaction: sourceTxn, DestinationTransaction: destTxn}, nil
}

// CloseAccount transitions the account to Closed. Requires a zero balance.
func (a *Account) CloseAccount(now time.Time) error {
	if a.Balance.AmountMinor != 0 {
		return domainerr.InvalidOperation("account balance must be zero to close")
	}
	a.IsActive = false
	a.Status = StatusClosed
	a.LastActivity = now
	return nil
}

// MarkArchived transitions the account to Archived.
func (a *Account) MarkArchived(now time.Time) {
	a.IsArchived = true
	a.IsActive = false
	a.Status = StatusArchived
	a.LastActivity = now
}

// UpdateLastActivityDate stamps the account's last-activity timestamp.
func (a *Account) UpdateLastActivityDate(now time.Time) {
	a.LastActivity = now
}

// SetInterestBearing flips the interest-bearing flag.
func (a *Account) SetInterestBearing(bearing bool) {
	a.IsInterestBearing = bearing
}

// UpdateStatusBasedOnRules moves Active accounts whose last activity is
// older than a year into Inactive. It is a pure state-transition function of
// (current state, now); the caller supplies now so behavior stays
// deterministic and testable.
func (a *Account) UpdateStatusBasedOnRules(now time.Time) {
	if a.Status != StatusActive {
		return
	}
	if now.Sub(a.LastActivity) > 365*24*time.Hour {
		a.Status = StatusInactive
	}
}

// CreditInterest applies an InterestCredit transaction's amount to the
// balance. Scheduled jobs build the Transaction via
// domain.CreateInterestCredit and then call this to apply it to the account
// in one step.
func (a *Account) CreditInterest(txn *Transaction) {
	a.Balance = a.Balance.Add(txn.Amount)
	a.transactions = append(a.transactions, txn)
}
