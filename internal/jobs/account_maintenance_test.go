package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/transfa/corebank/internal/domain"
)

func TestAccountMaintenanceTransitionsIdleAccountsToInactive(t *testing.T) {
	account := mustNewAccountForJobsTest(domain.Checking, 0)
	account.LastActivity = time.Now().Add(-400 * 24 * time.Hour)

	accounts := &stubAccounts{active: []*domain.Account{account}}
	txns := &stubTransactions{}
	uow := &stubUnitOfWork{}

	j := New(accounts, &stubCustomers{}, txns, &stubEmail{}, stubRenderer{}, func() UnitOfWork { return uow }, newTestLogger())

	if err := j.AccountMaintenance(context.Background(), nil); err != nil {
		t.Fatalf("AccountMaintenance() error = %v", err)
	}
	if account.Status != domain.StatusInactive {
		t.Fatalf("Status = %s, want inactive", account.Status)
	}
	if len(accounts.updateRangeCalled) != 1 {
		t.Fatalf("expected UpdateRange to be called once, got %d", len(accounts.updateRangeCalled))
	}
}

func TestAccountMaintenanceArchivesDormantZeroBalanceAccounts(t *testing.T) {
	dormant := mustNewAccountForJobsTest(domain.Savings, 0)
	accounts := &stubAccounts{inactiveSince: []*domain.Account{dormant}}
	txns := &stubTransactions{}
	uow := &stubUnitOfWork{}

	j := New(accounts, &stubCustomers{}, txns, &stubEmail{}, stubRenderer{}, func() UnitOfWork { return uow }, newTestLogger())

	if err := j.AccountMaintenance(context.Background(), nil); err != nil {
		t.Fatalf("AccountMaintenance() error = %v", err)
	}
	if !dormant.IsArchived {
		t.Fatal("expected dormant account to be archived")
	}
}

func TestAccountMaintenanceSkipsUpdateRangeWhenNothingChanged(t *testing.T) {
	active := mustNewAccountForJobsTest(domain.Checking, 0)
	active.LastActivity = time.Now()

	accounts := &stubAccounts{active: []*domain.Account{active}}
	txns := &stubTransactions{}
	uow := &stubUnitOfWork{}

	j := New(accounts, &stubCustomers{}, txns, &stubEmail{}, stubRenderer{}, func() UnitOfWork { return uow }, newTestLogger())

	if err := j.AccountMaintenance(context.Background(), nil); err != nil {
		t.Fatalf("AccountMaintenance() error = %v", err)
	}
	if len(accounts.updateRangeCalled) != 0 {
		t.Fatalf("expected UpdateRange not to be called, got %d calls", len(accounts.updateRangeCalled))
	}
}
