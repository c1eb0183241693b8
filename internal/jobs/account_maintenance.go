package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/transfa/corebank/internal/domain"
)

// accountArchivalYears and transactionRetentionYears are the account
// maintenance job's two thresholds: accounts idle a year already move to
// Inactive via UpdateStatusBasedOnRules; this job additionally archives
// zero-balance accounts dormant for three years, and reports (without
// deleting) how many transactions are older than the seven-year retention
// cutoff.
const (
	accountArchivalYears      = 3
	transactionRetentionYears = 7
)

// AccountMaintenance re-evaluates every active account's status against the
// idle-a-year rule and archives long-dormant zero-balance accounts, flushing
// both in one batch, then counts transactions past the retention cutoff for
// reporting. The account updates (status transitions and archival) are the
// only writes; transactions past the cutoff are counted, not archived.
func (j *Jobs) AccountMaintenance(ctx context.Context, payload []byte) error {
	now := time.Now().UTC()

	active, err := j.accounts.ListActive(ctx)
	if err != nil {
		return err
	}

	var touched []*domain.Account
	var transitioned int
	for _, account := range active {
		before := account.Status
		account.UpdateStatusBasedOnRules(now)
		if account.Status != before {
			transitioned++
			touched = append(touched, account)
		}
	}

	archivalCutoff := now.AddDate(-accountArchivalYears, 0, 0)
	dormant, err := j.accounts.ListInactiveSince(ctx, archivalCutoff)
	if err != nil {
		return err
	}
	var archived int
	for _, account := range dormant {
		account.MarkArchived(now)
		touched = append(touched, account)
		archived++
	}

	if len(touched) > 0 {
		if err := j.accounts.UpdateRange(ctx, touched); err != nil {
			return err
		}
	}

	retentionCutoff := now.AddDate(-transactionRetentionYears, 0, 0)
	stale, err := j.transactions.ListOlderThan(ctx, retentionCutoff)
	if err != nil {
		return err
	}

	j.logger.Info("account maintenance complete",
		slog.Int("status_transitions", transitioned),
		slog.Int("archived", archived),
		slog.Int("transactions_past_retention", len(stale)))
	return nil
}
