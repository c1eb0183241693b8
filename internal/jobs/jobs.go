package jobs

import (
	"context"
	"log/slog"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/emailsvc"
	"github.com/transfa/corebank/internal/statement"
	"github.com/transfa/corebank/internal/store"
)

// UnitOfWork is the subset of *uow.UnitOfWork the jobs package depends on —
// declared locally so this package does not need to import uow directly.
type UnitOfWork interface {
	RegisterAccountUpdate(account *domain.Account, expectedRowVersion []byte)
	RegisterNewTransaction(txn *domain.Transaction)
	Commit(ctx context.Context) error
}

// UnitOfWorkFactory constructs a fresh Unit of Work scoped to a single job
// execution, mirroring the per-command scoping rule the pipeline package
// follows for its own commands.
type UnitOfWorkFactory func() UnitOfWork

// Jobs bundles the dependencies every recurring job body needs.
type Jobs struct {
	accounts     store.AccountRepository
	customers    store.CustomerRepository
	transactions store.TransactionRepository
	email        emailsvc.Service
	renderer     statement.Renderer
	uowFactory   UnitOfWorkFactory
	logger       *slog.Logger
}

func New(
	accounts store.AccountRepository,
	customers store.CustomerRepository,
	transactions store.TransactionRepository,
	email emailsvc.Service,
	renderer statement.Renderer,
	uowFactory UnitOfWorkFactory,
	logger *slog.Logger,
) *Jobs {
	return &Jobs{
		accounts:     accounts,
		customers:    customers,
		transactions: transactions,
		email:        email,
		renderer:     renderer,
		uowFactory:   uowFactory,
		logger:       logger,
	}
}
