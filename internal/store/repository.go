// Package store defines the repository interfaces the command/query
// pipeline, Unit of Work, and scheduled jobs depend on. One interface per
// aggregate, rather than a single do-everything Repository interface,
// since this system's aggregates map more cleanly to their own contracts.
// Soft-deleted rows are invisible to every read method here by default
// (the "global filter"); nothing exposes deleted rows.
package store

import (
	"context"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
	"github.com/transfa/corebank/internal/outbox"
)

// CustomerRepository is the typed read/write surface over Customer rows.
type CustomerRepository interface {
	GetByID(ctx context.Context, id ids.CustomerID) (*domain.Customer, error)
	ExistsByID(ctx context.Context, id ids.CustomerID) (bool, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Add(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
}

// AccountRepository is the typed read/write surface over Account rows,
// including the filtered sets the scheduled jobs need.
type AccountRepository interface {
	GetByID(ctx context.Context, id ids.AccountID) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	ListByCustomer(ctx context.Context, customerID ids.CustomerID) ([]*domain.Account, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	ListActive(ctx context.Context) ([]*domain.Account, error)
	ListInterestBearing(ctx context.Context) ([]*domain.Account, error)
	// ListInactiveSince returns zero-balance, non-closed accounts dormant
	// since before cutoff — the archival candidate set for account
	// maintenance.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error)
	ListByStatus(ctx context.Context, status domain.AccountStatus) ([]*domain.Account, error)
	ListLowBalance(ctx context.Context, threshold moneytype.Money) ([]*domain.Account, error)

	Add(ctx context.Context, account *domain.Account) error
	// Update persists account, enforcing optimistic concurrency against
	// expectedRowVersion. A stale token returns a domainerr.Conflict error.
	Update(ctx context.Context, account *domain.Account, expectedRowVersion []byte) error
	// UpdateRange flushes multiple already-mutated accounts in one
	// transaction, for jobs that touch many accounts at once (e.g. account
	// maintenance).
	UpdateRange(ctx context.Context, accounts []*domain.Account) error
}

// TransactionRepository is the typed read surface over Transaction rows,
// including the average-daily-balance algorithm.
type TransactionRepository interface {
	GetByID(ctx context.Context, id ids.TransactionID) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID ids.AccountID) ([]*domain.Transaction, error)
	ListByAccountAndDateRange(ctx context.Context, accountID ids.AccountID, start, end time.Time) ([]*domain.Transaction, error)
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error)
	ListRecentSince(ctx context.Context, accountID ids.AccountID, since time.Time) ([]*domain.Transaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)

	// CountInMonth returns how many transactions of txType have been
	// recorded for accountID within the calendar month containing `within`.
	// Used to derive the Savings withdrawal count from persisted state
	// ("not held in memory").
	CountInMonth(ctx context.Context, accountID ids.AccountID, txType domain.TransactionType, within time.Time) (int, error)

	// AverageDailyBalance walks each day in [startDate, endDate] seeded with
	// the balance as of the instant before startDate, applies that day's
	// transactions, and averages the end-of-day balances over the number of
	// days.
	AverageDailyBalance(ctx context.Context, accountID ids.AccountID, startDate, endDate time.Time) (float64, error)

	Add(ctx context.Context, txn *domain.Transaction) error
	AddRange(ctx context.Context, txns []*domain.Transaction) error
}

// OutboxRepository is the typed surface the Unit of Work and relay use to
// write and drain outbox rows.
type OutboxRepository interface {
	// InsertBatch inserts rows as part of the caller's own transaction. The
	// Unit of Work does not call it: Commit inserts its outbox rows with its
	// own statement on its pgx transaction.
	InsertBatch(ctx context.Context, tx Tx, rows []*outbox.Message) error

	// FetchPending returns up to limit rows where ProcessedOn is nil and
	// RetryCount < maxRetries, ordered by OccurredOn ascending.
	FetchPending(ctx context.Context, limit int, maxRetries int) ([]*outbox.Message, error)

	// SaveBatch persists the given rows' updated ProcessedOn/RetryCount/
	// LastError fields in a single transaction.
	SaveBatch(ctx context.Context, rows []*outbox.Message) error

	// ResetRetryCount is the operator action that returns a dead-lettered
	// row to the pending queue.
	ResetRetryCount(ctx context.Context, id ids.OutboxMessageID) error
}

// Tx is the minimal transaction handle OutboxRepository.InsertBatch takes
// so the insert participates in the caller's database transaction. It is
// satisfied by postgres.TxAdapter, which wraps a pgx.Tx.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}
