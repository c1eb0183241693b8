package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/moneytype"
)

type monthlyInterestPayload struct {
	CalculationDate *time.Time `json:"calculation_date,omitempty"`
}

// MonthlyInterestPayload serializes the job's input for Enqueue/Schedule
// calls.
func MonthlyInterestPayload(calculationDate time.Time) []byte {
	payload, _ := json.Marshal(monthlyInterestPayload{CalculationDate: &calculationDate})
	return payload
}

// interestRate implements the rate table: annual rate by
// (account type, balance).
func interestRate(accountType domain.AccountType, balance moneytype.Money) float64 {
	switch accountType {
	case domain.Savings:
		if balance.AmountMinor >= 10_000_00 {
			return 0.015
		}
		return 0.010
	case domain.Checking:
		return 0.001
	case domain.FixedDeposit:
		return 0.035
	default:
		return 0
	}
}

// MonthlyInterestCalculation computes and credits interest for every
// interest-bearing account over the calendar month containing the
// calculation date (the payload's, or the current time). All resulting
// InterestCredit transactions and their account balance updates are staged
// into a single Unit of Work and flushed together.
func (j *Jobs) MonthlyInterestCalculation(ctx context.Context, payload []byte) error {
	calculationDate := time.Now().UTC()
	var parsed monthlyInterestPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &parsed); err == nil && parsed.CalculationDate != nil {
			calculationDate = parsed.CalculationDate.UTC()
		}
	}

	windowStart := time.Date(calculationDate.Year(), calculationDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 1, 0).Add(-time.Second)
	daysInWindow := int(windowEnd.Sub(windowStart).Hours()/24) + 1

	accounts, err := j.accounts.ListInterestBearing(ctx)
	if err != nil {
		return err
	}

	uow := j.uowFactory()
	var processed, failed int
	for _, account := range accounts {
		principal, err := j.transactions.AverageDailyBalance(ctx, account.ID, windowStart, windowEnd)
		if err != nil {
			failed++
			j.logger.Error("failed to compute average daily balance", slog.String("account_id", account.ID.String()), slog.Any("error", err))
			continue
		}
		if principal <= 0 {
			continue
		}

		rate := interestRate(account.Type, account.Balance)
		if rate <= 0 {
			continue
		}
		interestAmount := int64(principal * rate * float64(daysInWindow) / 365.0)
		if interestAmount <= 0 {
			continue
		}

		interest := moneytype.New(interestAmount, account.Balance.Currency)
		txn := domain.CreateInterestCredit(account.ID, interest, calculationDate, "monthly interest credit")
		expectedRowVersion := account.RowVersion
		account.CreditInterest(txn)

		uow.RegisterNewTransaction(txn)
		uow.RegisterAccountUpdate(account, expectedRowVersion)
		processed++
	}

	if processed > 0 {
		if err := uow.Commit(ctx); err != nil {
			return err
		}
	}

	j.logger.Info("monthly interest calculation complete", slog.Int("processed", processed), slog.Int("failed", failed))

	if len(accounts) > 0 && processed == 0 && failed > 0 {
		return domainerr.Internal("monthly interest calculation failed for every account", nil)
	}
	return nil
}
