// Package uow implements the Unit of Work plus outbox writer: one command
// execution stages its aggregate mutations and newly-appended domain
// events, then Commit flushes both inside a single database transaction:
// begin, do the writes, insert the outbox rows, commit, deferred rollback
// on any early return. This generalizes that fixed shape into a staged
// list of arbitrary aggregate mutations.
package uow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/events"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/outbox"
	"github.com/transfa/corebank/internal/store/postgres"
)

type accountMutation struct {
	account            *domain.Account
	expectedRowVersion []byte
	isNew              bool
}

type customerMutation struct {
	customer *domain.Customer
	isNew    bool
}

// UnitOfWork is scoped to a single command execution; no two commands share
// one. Construct a fresh instance per command handler call.
type UnitOfWork struct {
	pool   *postgres.Pool
	logger *slog.Logger

	accounts     []*accountMutation
	customers    []*customerMutation
	transactions []*domain.Transaction
}

func New(pool *postgres.Pool, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{pool: pool, logger: logger}
}

// RegisterNewAccount stages an account for insertion on Commit.
func (u *UnitOfWork) RegisterNewAccount(account *domain.Account) {
	u.accounts = append(u.accounts, &accountMutation{account: account, isNew: true})
}

// RegisterAccountUpdate stages an already-mutated account for an
// optimistic-concurrency-checked update on Commit. expectedRowVersion must be
// the version the account was loaded with, before any in-memory mutation.
func (u *UnitOfWork) RegisterAccountUpdate(account *domain.Account, expectedRowVersion []byte) {
	u.accounts = append(u.accounts, &accountMutation{account: account, expectedRowVersion: expectedRowVersion})
}

func (u *UnitOfWork) RegisterNewCustomer(customer *domain.Customer) {
	u.customers = append(u.customers, &customerMutation{customer: customer, isNew: true})
}

func (u *UnitOfWork) RegisterCustomerUpdate(customer *domain.Customer) {
	u.customers = append(u.customers, &customerMutation{customer: customer})
}

// RegisterNewTransaction stages a transaction row for insertion on Commit.
func (u *UnitOfWork) RegisterNewTransaction(txn *domain.Transaction) {
	u.transactions = append(u.transactions, txn)
}

// Commit persists every staged mutation and every pending domain event
// inside one database transaction. On any failure the transaction rolls
// back and every tracked account's pending-event list is restored to its
// pre-call contents, so in-memory state never diverges from what was
// actually persisted.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	// Snapshot pending events before anything is cleared, so a failure
	// anywhere below can put them back exactly as they were.
	snapshots := make(map[*domain.Account][]events.DomainEvent, len(u.accounts))
	for _, m := range u.accounts {
		snapshots[m.account] = append([]events.DomainEvent(nil), m.account.PendingEvents()...)
	}

	// Serialize every pending event into an outbox row.
	var outboxRows []*outbox.Message
	for _, m := range u.accounts {
		for _, ev := range m.account.PendingEvents() {
			typeTag, payload, err := events.Encode(ev)
			if err != nil {
				u.restore(snapshots)
				return domainerr.Internal("failed to encode domain event", err)
			}
			outboxRows = append(outboxRows, &outbox.Message{
				ID:         ids.NewOutboxMessageID(),
				Type:       typeTag,
				Payload:    payload,
				OccurredOn: ev.OccurredOn(),
				RetryCount: 0,
			})
		}
	}

	// Clear the aggregates' pending-event lists. If a later step fails we
	// restore the snapshot taken above.
	for _, m := range u.accounts {
		m.account.ClearPendingEvents()
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		u.restore(snapshots)
		return domainerr.Internal("failed to begin unit of work transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
			u.restore(snapshots)
		}
	}()

	// Flush all tracked aggregate mutations.
	for _, m := range u.customers {
		if err := flushCustomer(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, m := range u.accounts {
		if err := flushAccount(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, txn := range u.transactions {
		if err := flushTransaction(ctx, tx, txn); err != nil {
			return err
		}
	}

	// Insert the outbox rows inside the same transaction.
	for _, row := range outboxRows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO outbox_messages (id, type, payload, occurred_on, retry_count)
			VALUES ($1,$2,$3,$4,$5)
		`, uuid.UUID(row.ID), row.Type, row.Payload, row.OccurredOn, row.RetryCount); err != nil {
			return domainerr.Internal("failed to insert outbox message", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domainerr.Internal("failed to commit unit of work", err)
	}
	committed = true

	if u.logger != nil {
		u.logger.Debug("unit of work committed",
			slog.Int("accounts", len(u.accounts)),
			slog.Int("customers", len(u.customers)),
			slog.Int("transactions", len(u.transactions)),
			slog.Int("outbox_rows", len(outboxRows)),
		)
	}
	return nil
}

func (u *UnitOfWork) restore(snapshots map[*domain.Account][]events.DomainEvent) {
	for account, pending := range snapshots {
		account.RestorePendingEvents(pending)
	}
}

func flushCustomer(ctx context.Context, tx pgx.Tx, m *customerMutation) error {
	c := m.customer
	if m.isNew {
		_, err := tx.Exec(ctx, `
			INSERT INTO customers (
				id, first_name, last_name, email, phone, address, date_of_birth, bvn,
				credit_score, email_opt_in, date_created, is_active, is_deleted
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`,
			uuid.UUID(c.ID), c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
			c.DateOfBirth, c.BVN, c.CreditScore, c.EmailOptIn, c.CreatedAt, c.IsActive, c.IsDeleted,
		)
		if err != nil {
			return domainerr.Internal("failed to insert customer", err)
		}
		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE customers SET
			first_name=$2, last_name=$3, email=$4, phone=$5, address=$6,
			date_of_birth=$7, bvn=$8, credit_score=$9, email_opt_in=$10,
			is_active=$11, is_deleted=$12, deleted_at=$13, deleted_by=$14
		WHERE id = $1
	`,
		uuid.UUID(c.ID), c.FirstName, c.LastName, c.Email, c.Phone, c.Address,
		c.DateOfBirth, c.BVN, c.CreditScore, c.EmailOptIn, c.IsActive, c.IsDeleted,
		c.DeletedAt, c.DeletedBy,
	)
	if err != nil {
		return domainerr.Internal("failed to update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("customer not found")
	}
	return nil
}

func newRowVersion() []byte {
	id := uuid.New()
	return id[:]
}

func flushAccount(ctx context.Context, tx pgx.Tx, m *accountMutation) error {
	a := m.account
	if m.isNew {
		a.RowVersion = newRowVersion()
		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (
				id, account_number, customer_id, type, balance_amount, balance_currency,
				date_opened, is_active, is_deleted, row_version, last_activity, status,
				is_interest_bearing, is_archived
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`,
			uuid.UUID(a.ID), a.AccountNumber, uuid.UUID(a.CustomerID), string(a.Type),
			a.Balance.AmountMinor, a.Balance.Currency, a.DateOpened, a.IsActive, a.IsDeleted,
			a.RowVersion, a.LastActivity, string(a.Status), a.IsInterestBearing, a.IsArchived,
		)
		if err != nil {
			return domainerr.Internal("failed to insert account", err)
		}
		return nil
	}

	newVersion := newRowVersion()
	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET
			balance_amount=$3, balance_currency=$4, is_active=$5, is_deleted=$6,
			deleted_at=$7, deleted_by=$8, row_version=$9, last_activity=$10,
			status=$11, is_interest_bearing=$12, is_archived=$13
		WHERE id = $1 AND row_version = $2
	`,
		uuid.UUID(a.ID), m.expectedRowVersion,
		a.Balance.AmountMinor, a.Balance.Currency, a.IsActive, a.IsDeleted,
		a.DeletedAt, a.DeletedBy, newVersion, a.LastActivity,
		string(a.Status), a.IsInterestBearing, a.IsArchived,
	)
	if err != nil {
		return domainerr.Internal("failed to update account", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if existsErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, uuid.UUID(a.ID)).Scan(&exists); existsErr == nil && !exists {
			return domainerr.NotFound("account not found")
		}
		return domainerr.Conflict("account was modified by another writer")
	}
	a.RowVersion = newVersion
	return nil
}

func flushTransaction(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (
			id, account_id, type, amount_amount, amount_currency, description,
			"timestamp", reference, is_deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		uuid.UUID(txn.ID), uuid.UUID(txn.AccountID), string(txn.Type),
		txn.Amount.AmountMinor, txn.Amount.Currency, txn.Description,
		txn.Timestamp, txn.Reference, txn.IsDeleted,
	)
	if err != nil {
		return domainerr.Internal("failed to insert transaction", err)
	}
	return nil
}
