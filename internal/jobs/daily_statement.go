// Package jobs implements the three recurring job bodies, wired into
// scheduler.HandlerFunc. Each job processes every candidate row, counts
// successes and failures, and never lets one bad row abort the batch; one
// method per recurring job, on a shared struct holding the dependencies.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
)

// dailyStatementBatchSize is how many accounts are processed concurrently
// within one batch.
const dailyStatementBatchSize = 100

type dailyStatementPayload struct {
	StatementDate *time.Time `json:"statement_date,omitempty"`
}

// DailyStatementPayload serializes the job's input for Enqueue/Schedule
// calls.
func DailyStatementPayload(statementDate time.Time) []byte {
	payload, _ := json.Marshal(dailyStatementPayload{StatementDate: &statementDate})
	return payload
}

// DailyStatementGeneration renders and dispatches one statement per active
// account for the trailing 30-day window. A total failure (zero accounts
// processed out of at least one candidate) returns an error so the
// scheduler retries the job; partial failures are isolated and only logged.
func (j *Jobs) DailyStatementGeneration(ctx context.Context, payload []byte) error {
	statementDate := time.Now().UTC()
	var parsed dailyStatementPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &parsed); err == nil && parsed.StatementDate != nil {
			statementDate = parsed.StatementDate.UTC()
		}
	}
	periodStart := statementDate.AddDate(0, 0, -30)

	start := time.Now()
	accounts, err := j.accounts.ListActive(ctx)
	if err != nil {
		return err
	}

	var processed, failed int
	for batchStart := 0; batchStart < len(accounts); batchStart += dailyStatementBatchSize {
		batchEnd := batchStart + dailyStatementBatchSize
		if batchEnd > len(accounts) {
			batchEnd = len(accounts)
		}
		batch := accounts[batchStart:batchEnd]

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, account := range batch {
			account := account
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := j.generateOneStatement(ctx, account, periodStart, statementDate); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					j.logger.Error("statement generation failed for account",
						slog.String("account_id", account.ID.String()), slog.Any("error", err))
					return
				}
				mu.Lock()
				processed++
				mu.Unlock()
			}()
		}
		wg.Wait()
	}

	duration := time.Since(start)
	j.logger.Info("daily statement generation complete",
		slog.Int("processed", processed), slog.Int("failed", failed), slog.Duration("duration", duration))

	if len(accounts) > 0 && processed == 0 {
		return domainerr.Internal("daily statement generation failed for every account", nil)
	}
	return nil
}

func (j *Jobs) generateOneStatement(ctx context.Context, account *domain.Account, periodStart, periodEnd time.Time) error {
	customer, err := j.customers.GetByID(ctx, account.CustomerID)
	if err != nil {
		return err
	}
	transactions, err := j.transactions.ListByAccountAndDateRange(ctx, account.ID, periodStart, periodEnd)
	if err != nil {
		return err
	}

	artifact, err := j.renderer.Render(ctx, account, customer, transactions, periodStart, periodEnd)
	if err != nil {
		return err
	}

	if !customer.EmailOptIn {
		return nil
	}
	return j.email.SendStatementNotification(ctx, customer.Email, customer.FullName(), periodEnd, artifact)
}
