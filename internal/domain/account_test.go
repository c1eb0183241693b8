package domain

import (
	"testing"
	"time"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

func mustCreateAccount(t *testing.T, accountType AccountType, initialDeposit moneytype.Money) *Account {
	t.Helper()
	account, err := CreateAccount(ids.NewCustomerID(), "0123456789", accountType, initialDeposit, time.Now())
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return account
}

func TestCreateAccountAppendsAccountCreated(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	pending := account.PendingEvents()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending event, got %d", len(pending))
	}
	if pending[0].TypeTag() != "account.created" {
		t.Fatalf("expected account.created, got %s", pending[0].TypeTag())
	}
}

func TestCreateAccountRejectsNegativeDeposit(t *testing.T) {
	_, err := CreateAccount(ids.NewCustomerID(), "0123456789", Checking, moneytype.New(-1, "NGN"), time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	_, err := CreateAccount(ids.NewCustomerID(), "0123456789", AccountType("crypto"), moneytype.New(0, "NGN"), time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestDepositIncreasesBalance(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	txn, err := account.Deposit(moneytype.New(500, "NGN"), "top up", time.Now())
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if account.Balance.AmountMinor != 1500 {
		t.Fatalf("balance = %d, want 1500", account.Balance.AmountMinor)
	}
	if txn.Type != Deposit {
		t.Fatalf("txn.Type = %s, want deposit", txn.Type)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	_, err := account.Deposit(moneytype.New(0, "NGN"), "", time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestDepositRejectsCurrencyMismatch(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	_, err := account.Deposit(moneytype.New(100, "USD"), "", time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestWithdrawDecreasesBalance(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	_, err := account.Withdraw(moneytype.New(400, "NGN"), "atm", 0, time.Now())
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if account.Balance.AmountMinor != 600 {
		t.Fatalf("balance = %d, want 600", account.Balance.AmountMinor)
	}
}

func TestWithdrawRejectsInsufficientFunds(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(100, "NGN"))
	_, err := account.Withdraw(moneytype.New(500, "NGN"), "atm", 0, time.Now())
	if !domainerr.IsKind(err, domainerr.KindInsufficientFunds) {
		t.Fatalf("expected KindInsufficientFunds, got %v", err)
	}
}

func TestWithdrawEnforcesSavingsMonthlyCap(t *testing.T) {
	account := mustCreateAccount(t, Savings, moneytype.New(1_000_000, "NGN"))
	_, err := account.Withdraw(moneytype.New(1, "NGN"), "", SavingsMonthlyWithdrawalCap, time.Now())
	if !domainerr.IsKind(err, domainerr.KindWithdrawalLimit) {
		t.Fatalf("expected KindWithdrawalLimit, got %v", err)
	}
}

func TestWithdrawSavingsUnderCapSucceeds(t *testing.T) {
	account := mustCreateAccount(t, Savings, moneytype.New(1_000_000, "NGN"))
	_, err := account.Withdraw(moneytype.New(1, "NGN"), "", SavingsMonthlyWithdrawalCap-1, time.Now())
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
}

func TestWithdrawCapDoesNotApplyToChecking(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1_000_000, "NGN"))
	_, err := account.Withdraw(moneytype.New(1, "NGN"), "", SavingsMonthlyWithdrawalCap+50, time.Now())
	if err != nil {
		t.Fatalf("Withdraw() error = %v, want nil (cap only applies to savings)", err)
	}
}

func TestWithdrawRejectsOnInactiveAccount(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	account.IsActive = false
	_, err := account.Withdraw(moneytype.New(1, "NGN"), "", 0, time.Now())
	if !domainerr.IsKind(err, domainerr.KindInvalidOperation) {
		t.Fatalf("expected KindInvalidOperation, got %v", err)
	}
}

func TestTransferMovesFundsBetweenAccounts(t *testing.T) {
	source := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	dest := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))

	result, err := source.Transfer(dest, moneytype.New(300, "NGN"), "", "rent", time.Now())
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if source.Balance.AmountMinor != 700 {
		t.Fatalf("source balance = %d, want 700", source.Balance.AmountMinor)
	}
	if dest.Balance.AmountMinor != 300 {
		t.Fatalf("dest balance = %d, want 300", dest.Balance.AmountMinor)
	}
	if result.SourceTransaction.Reference != result.DestinationTransaction.Reference {
		t.Fatal("expected both legs to share a reference")
	}
	if result.SourceTransaction.Type != TransferOut || result.DestinationTransaction.Type != TransferIn {
		t.Fatalf("unexpected transaction types: %s / %s", result.SourceTransaction.Type, result.DestinationTransaction.Type)
	}
}

func TestTransferQueuesMoneyTransferredEvent(t *testing.T) {
	source := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	dest := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	source.ClearPendingEvents()

	_, err := source.Transfer(dest, moneytype.New(300, "NGN"), "", "rent", time.Now())
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	pending := source.PendingEvents()
	if len(pending) != 1 || pending[0].TypeTag() != "account.money_transferred" {
		t.Fatalf("expected exactly one account.money_transferred event, got %+v", pending)
	}
}

func TestTransferOnInsufficientFundsQueuesEventAndLeavesBalancesUntouched(t *testing.T) {
	source := mustCreateAccount(t, Checking, moneytype.New(100, "NGN"))
	dest := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	source.ClearPendingEvents()

	_, err := source.Transfer(dest, moneytype.New(500, "NGN"), "", "rent", time.Now())
	if !domainerr.IsKind(err, domainerr.KindInsufficientFunds) {
		t.Fatalf("expected KindInsufficientFunds, got %v", err)
	}
	if source.Balance.AmountMinor != 100 || dest.Balance.AmountMinor != 0 {
		t.Fatal("expected balances to remain untouched on failure")
	}
	pending := source.PendingEvents()
	if len(pending) != 1 || pending[0].TypeTag() != "account.insufficient_funds" {
		t.Fatalf("expected exactly one account.insufficient_funds event, got %+v", pending)
	}
}

func TestTransferRejectsSameAccount(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	_, err := account.Transfer(account, moneytype.New(1, "NGN"), "", "", time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestTransferRejectsCurrencyMismatch(t *testing.T) {
	source := mustCreateAccount(t, Checking, moneytype.New(1000, "NGN"))
	dest := mustCreateAccount(t, Checking, moneytype.New(0, "USD"))
	_, err := source.Transfer(dest, moneytype.New(1, "NGN"), "", "", time.Now())
	if !domainerr.IsKind(err, domainerr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestCloseAccountRequiresZeroBalance(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(100, "NGN"))
	if err := account.CloseAccount(time.Now()); !domainerr.IsKind(err, domainerr.KindInvalidOperation) {
		t.Fatalf("expected KindInvalidOperation, got %v", err)
	}

	account.Balance = moneytype.New(0, "NGN")
	if err := account.CloseAccount(time.Now()); err != nil {
		t.Fatalf("CloseAccount() error = %v", err)
	}
	if account.Status != StatusClosed || account.IsActive {
		t.Fatal("expected account to be closed and inactive")
	}
}

func TestUpdateStatusBasedOnRulesMarksInactiveAfterAYear(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	now := time.Now()
	account.LastActivity = now.Add(-366 * 24 * time.Hour)

	account.UpdateStatusBasedOnRules(now)
	if account.Status != StatusInactive {
		t.Fatalf("Status = %s, want inactive", account.Status)
	}
}

func TestUpdateStatusBasedOnRulesLeavesRecentlyActiveAlone(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	now := time.Now()
	account.LastActivity = now.Add(-1 * time.Hour)

	account.UpdateStatusBasedOnRules(now)
	if account.Status != StatusActive {
		t.Fatalf("Status = %s, want active", account.Status)
	}
}

func TestUpdateStatusBasedOnRulesIgnoresNonActiveAccounts(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	account.Status = StatusSuspended
	now := time.Now()
	account.LastActivity = now.Add(-400 * 24 * time.Hour)

	account.UpdateStatusBasedOnRules(now)
	if account.Status != StatusSuspended {
		t.Fatalf("Status = %s, want suspended unchanged", account.Status)
	}
}

func TestCreditInterestIncreasesBalanceAndAppendsTransaction(t *testing.T) {
	account := mustCreateAccount(t, Savings, moneytype.New(10000, "NGN"))
	txn := CreateInterestCredit(account.ID, moneytype.New(150, "NGN"), time.Now(), "monthly interest")

	account.CreditInterest(txn)

	if account.Balance.AmountMinor != 10150 {
		t.Fatalf("balance = %d, want 10150", account.Balance.AmountMinor)
	}
	found := false
	for _, tr := range account.Transactions() {
		if tr.Type == InterestCredit {
			found = true
		}
	}
	if !found {
		t.Fatal("expected interest credit transaction to be attached")
	}
}

func TestRestorePendingEventsDoesNotAliasSnapshot(t *testing.T) {
	account := mustCreateAccount(t, Checking, moneytype.New(0, "NGN"))
	snapshot := account.PendingEvents()
	account.ClearPendingEvents()
	account.RestorePendingEvents(snapshot)

	if len(account.PendingEvents()) != len(snapshot) {
		t.Fatalf("expected restored events to match snapshot length %d, got %d", len(snapshot), len(account.PendingEvents()))
	}
}
