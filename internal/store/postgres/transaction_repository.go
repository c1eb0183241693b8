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

// TransactionRepository implements store.TransactionRepository.
type TransactionRepository struct {
	db *Pool
}

func NewTransactionRepository(db *Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, account_id, type, amount_amount, amount_currency, description,
	"timestamp", reference, is_deleted, deleted_at, deleted_by
`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var txnID, accountID uuid.UUID
	var txType string
	var amount int64
	var currency string
	err := row.Scan(
		&txnID, &accountID, &txType, &amount, &currency, &t.Description,
		&t.Timestamp, &t.Reference, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy,
	)
	if err != nil {
		return nil, err
	}
	t.ID = ids.TransactionID(txnID)
	t.AccountID = ids.AccountID(accountID)
	t.Type = domain.TransactionType(txType)
	t.Amount = moneytype.New(amount, currency)
	return &t, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()
	var out []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) GetByID(ctx context.Context, id ids.TransactionID) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND is_deleted = false`, uuid.UUID(id))
	t, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.NotFound("transaction not found")
		}
		return nil, domainerr.Internal("failed to load transaction", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID ids.AccountID) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE account_id = $1 AND is_deleted = false ORDER BY "timestamp" ASC`, uuid.UUID(accountID))
	if err != nil {
		return nil, domainerr.Internal("failed to list transactions for account", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListByAccountAndDateRange(ctx context.Context, accountID ids.AccountID, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1 AND is_deleted = false AND "timestamp" >= $2 AND "timestamp" <= $3
		ORDER BY "timestamp" ASC
	`, uuid.UUID(accountID), start, end)
	if err != nil {
		return nil, domainerr.Internal("failed to list transactions in range", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE is_deleted = false AND "timestamp" < $1 ORDER BY "timestamp" ASC`, cutoff)
	if err != nil {
		return nil, domainerr.Internal("failed to list old transactions", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListRecentSince(ctx context.Context, accountID ids.AccountID, since time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1 AND is_deleted = false AND "timestamp" >= $2
		ORDER BY "timestamp" ASC
	`, uuid.UUID(accountID), since)
	if err != nil {
		return nil, domainerr.Internal("failed to list recent transactions", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE is_deleted = false AND "timestamp" >= $1 AND "timestamp" <= $2
		ORDER BY "timestamp" ASC
	`, start, end)
	if err != nil {
		return nil, domainerr.Internal("failed to list transactions by date range", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) CountInMonth(ctx context.Context, accountID ids.AccountID, txType domain.TransactionType, within time.Time) (int, error) {
	monthStart := time.Date(within.Year(), within.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE account_id = $1 AND type = $2 AND is_deleted = false
		AND "timestamp" >= $3 AND "timestamp" < $4
	`, uuid.UUID(accountID), string(txType), monthStart, monthEnd).Scan(&count)
	if err != nil {
		return 0, domainerr.Internal("failed to count transactions in month", err)
	}
	return count, nil
}

// signedAmount returns the transaction's amount with its type-inferred sign:
// Deposit/TransferIn/InterestCredit are positive, everything else negative.
func signedAmount(t *domain.Transaction) int64 {
	if t.Type.IsCredit() {
		return t.Amount.AmountMinor
	}
	return -t.Amount.AmountMinor
}

// AverageDailyBalance computes the mean end-of-day balance over
// [startDate, endDate]. The running balance is seeded from the account's
// net position as of the instant before startDate (not zero), so each day
// in the window is visited exactly once and the result reflects the
// account's real balance history, not just post-startDate net changes.
func (r *TransactionRepository) AverageDailyBalance(ctx context.Context, accountID ids.AccountID, startDate, endDate time.Time) (float64, error) {
	startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	endDate = time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)

	var seed int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ('deposit','transfer_in','interest_credit') THEN amount_amount ELSE -amount_amount END
		), 0)
		FROM transactions
		WHERE account_id = $1 AND is_deleted = false AND "timestamp" < $2
	`, uuid.UUID(accountID), startDate).Scan(&seed)
	if err != nil {
		return 0, domainerr.Internal("failed to seed average daily balance", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1 AND is_deleted = false AND "timestamp" >= $2 AND "timestamp" < $3
		ORDER BY "timestamp" ASC
	`, uuid.UUID(accountID), startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return 0, domainerr.Internal("failed to load transactions for average daily balance", err)
	}
	txns, err := scanTransactions(rows)
	if err != nil {
		return 0, domainerr.Internal("failed to scan transactions for average daily balance", err)
	}

	numDays := int(endDate.Sub(startDate).Hours()/24) + 1
	if numDays <= 0 {
		return 0, nil
	}

	runningBalance := seed
	var accumulator int64
	idx := 0
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		nextDay := day.AddDate(0, 0, 1)
		for idx < len(txns) && txns[idx].Timestamp.Before(nextDay) {
			runningBalance += signedAmount(txns[idx])
			idx++
		}
		accumulator += runningBalance
	}

	return float64(accumulator) / float64(numDays), nil
}

func (r *TransactionRepository) Add(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.db.Exec(ctx, `
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

func (r *TransactionRepository) AddRange(ctx context.Context, txns []*domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domainerr.Internal("failed to begin transaction batch insert", err)
	}
	defer tx.Rollback(ctx)

	for _, txn := range txns {
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
			return domainerr.Internal("failed to insert transaction in batch", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domainerr.Internal("failed to commit transaction batch insert", err)
	}
	return nil
}
