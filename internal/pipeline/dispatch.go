package pipeline

import (
	"context"

	"github.com/transfa/corebank/internal/domainerr"
)

// RootHandler type-switches an incoming Request to the matching Commands or
// Queries method. This is the innermost Handler the middleware chain wraps;
// it is the only place that knows every concrete request type.
func RootHandler(commands *Commands, queries *Queries) Handler {
	return func(ctx context.Context, req Request) Result {
		switch cmd := req.(type) {
		case CreateCustomerCommand:
			return commands.CreateCustomer(ctx, cmd)
		case CreateAccountCommand:
			return commands.CreateAccount(ctx, cmd)
		case TransferMoneyCommand:
			return commands.TransferMoney(ctx, cmd)
		case GetAccountDetailsQuery:
			return queries.GetAccountDetails(ctx, cmd)
		case GetTransactionHistoryQuery:
			return queries.GetTransactionHistory(ctx, cmd)
		case GetCustomersQuery:
			return queries.GetCustomers(ctx, cmd)
		case GetCustomerDetailsQuery:
			return queries.GetCustomerDetails(ctx, cmd)
		default:
			return Result{Err: domainerr.Internal("no handler registered for request type", nil)}
		}
	}
}
