package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

// AccountRepository implements store.AccountRepository. The concurrency
// token (RowVersion) is a random 16-byte value regenerated on every
// successful write and compared against the caller's expected value inside
// the UPDATE's WHERE clause, the same optimistic-concurrency shape as an
// ORM's rowversion column but expressed directly in SQL.
type AccountRepository struct {
	db *Pool
}

func NewAccountRepository(db *Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, account_number, customer_id, type, balance_amount, balance_currency,
	date_opened, is_active, is_deleted, deleted_at, deleted_by, row_version,
	last_activity, status, is_interest_bearing, is_archived
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var accountID, customerID uuid.UUID
	var accountType, status string
	var balanceAmount int64
	var balanceCurrency string
	err := row.Scan(
		&accountID, &a.AccountNumber, &customerID, &accountType,
		&balanceAmount, &balanceCurrency, &a.DateOpened, &a.IsActive,
		&a.IsDeleted, &a.DeletedAt, &a.DeletedBy, &a.RowVersion,
		&a.LastActivity, &status, &a.IsInterestBearing, &a.IsArchived,
	)
	if err != nil {
		return nil, err
	}
	a.ID = ids.AccountID(accountID)
	a.CustomerID = ids.CustomerID(customerID)
	a.Type = domain.AccountType(accountType)
	a.Status = domain.AccountStatus(status)
	a.Balance = moneytype.New(balanceAmount, balanceCurrency)
	return &a, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()
	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) GetByID(ctx context.Context, id ids.AccountID) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND is_deleted = false`, uuid.UUID(id))
	a, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("account not found")
		}
		return nil, domainerr.Internal("failed to load account", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 AND is_deleted = false`, accountNumber)
	a, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("account not found")
		}
		return nil, domainerr.Internal("failed to load account by number", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID ids.CustomerID) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 AND is_deleted = false ORDER BY date_opened ASC`, uuid.UUID(customerID))
	if err != nil {
		return nil, domainerr.Internal("failed to list accounts for customer", err)
	}
	return scanAccounts(rows)
}

func (r *AccountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber).Scan(&exists)
	if err != nil {
		return false, domainerr.Internal("failed to check account number", err)
	}
	return exists, nil
}

func (r *AccountRepository) ListActive(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_deleted = false AND is_active = true AND status = 'active' ORDER BY id ASC`)
	if err != nil {
		return nil, domainerr.Internal("failed to list active accounts", err)
	}
	return scanAccounts(rows)
}

func (r *AccountRepository) ListInterestBearing(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_deleted = false AND is_active = true AND status = 'active' AND is_interest_bearing = true ORDER BY id ASC`)
	if err != nil {
		return nil, domainerr.Internal("failed to list interest-bearing accounts", err)
	}
	return scanAccounts(rows)
}

// ListInactiveSince returns zero-balance, non-closed accounts dormant since
// before cutoff regardless of current status — the account maintenance
// job's archival candidate set.
func (r *AccountRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE is_deleted = false AND status != 'closed' AND balance_amount = 0 AND last_activity < $1
		ORDER BY id ASC
	`, cutoff)
	if err != nil {
		return nil, domainerr.Internal("failed to list inactive-since accounts", err)
	}
	return scanAccounts(rows)
}

func (r *AccountRepository) ListByStatus(ctx context.Context, status domain.AccountStatus) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_deleted = false AND status = $1 ORDER BY id ASC`, string(status))
	if err != nil {
		return nil, domainerr.Internal("failed to list accounts by status", err)
	}
	return scanAccounts(rows)
}

func (r *AccountRepository) ListLowBalance(ctx context.Context, threshold moneytype.Money) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE is_deleted = false AND balance_currency = $1 AND balance_amount < $2
		ORDER BY balance_amount ASC
	`, threshold.Currency, threshold.AmountMinor)
	if err != nil {
		return nil, domainerr.Internal("failed to list low-balance accounts", err)
	}
	return scanAccounts(rows)
}

func newRowVersion() []byte {
	id := uuid.New()
	return id[:]
}

func (r *AccountRepository) Add(ctx context.Context, account *domain.Account) error {
	account.RowVersion = newRowVersion()
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, account_number, customer_id, type, balance_amount, balance_currency,
			date_opened, is_active, is_deleted, row_version, last_activity, status,
			is_interest_bearing, is_archived
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		uuid.UUID(account.ID), account.AccountNumber, uuid.UUID(account.CustomerID),
		string(account.Type), account.Balance.AmountMinor, account.Balance.Currency,
		account.DateOpened, account.IsActive, account.IsDeleted, account.RowVersion,
		account.LastActivity, string(account.Status), account.IsInterestBearing, account.IsArchived,
	)
	if err != nil {
		return domainerr.Internal("failed to insert account", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account, expectedRowVersion []byte) error {
	newVersion := newRowVersion()
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET
			balance_amount=$3, balance_currency=$4, is_active=$5, is_deleted=$6,
			deleted_at=$7, deleted_by=$8, row_version=$9, last_activity=$10,
			status=$11, is_interest_bearing=$12, is_archived=$13
		WHERE id = $1 AND row_version = $2
	`,
		uuid.UUID(account.ID), expectedRowVersion,
		account.Balance.AmountMinor, account.Balance.Currency, account.IsActive, account.IsDeleted,
		account.DeletedAt, account.DeletedBy, newVersion, account.LastActivity,
		string(account.Status), account.IsInterestBearing, account.IsArchived,
	)
	if err != nil {
		return domainerr.Internal("failed to update account", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the account does not exist, or the row_version no longer
		// matches expectedRowVersion — the latter is the optimistic
		// concurrency conflict case.
		exists, existsErr := r.exists(ctx, account.ID)
		if existsErr == nil && !exists {
			return domainerr.NotFound("account not found")
		}
		return domainerr.Conflict("account was modified by another writer")
	}
	account.RowVersion = newVersion
	return nil
}

func (r *AccountRepository) exists(ctx context.Context, id ids.AccountID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, uuid.UUID(id)).Scan(&exists)
	return exists, err
}

// UpdateRange flushes all accounts in a single transaction, each still
// individually version-checked. Used by scheduled jobs that mutate many
// accounts at once (account maintenance).
func (r *AccountRepository) UpdateRange(ctx context.Context, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domainerr.Internal("failed to begin account batch update", err)
	}
	defer tx.Rollback(ctx)

	for _, account := range accounts {
		expected := account.RowVersion
		newVersion := newRowVersion()
		tag, err := tx.Exec(ctx, `
			UPDATE accounts SET
				balance_amount=$3, balance_currency=$4, is_active=$5, is_deleted=$6,
				deleted_at=$7, deleted_by=$8, row_version=$9, last_activity=$10,
				status=$11, is_interest_bearing=$12, is_archived=$13
			WHERE id = $1 AND row_version = $2
		`,
			uuid.UUID(account.ID), expected,
			account.Balance.AmountMinor, account.Balance.Currency, account.IsActive, account.IsDeleted,
			account.DeletedAt, account.DeletedBy, newVersion, account.LastActivity,
			string(account.Status), account.IsInterestBearing, account.IsArchived,
		)
		if err != nil {
			return domainerr.Internal("failed to update account in batch", err)
		}
		if tag.RowsAffected() == 0 {
			return domainerr.Conflict("account was modified by another writer during batch update")
		}
		account.RowVersion = newVersion
	}

	if err := tx.Commit(ctx); err != nil {
		return domainerr.Internal("failed to commit account batch update", err)
	}
	return nil
}
