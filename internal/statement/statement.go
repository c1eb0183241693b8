// Package statement renders the account-statement artifact invoked by the
// daily statement job. Real PDF rendering is out of scope for this service;
// none of the available libraries reach for a templating or PDF library for
// anything comparable, so this renders a plain-text artifact with the
// standard library's bytes/fmt instead.
package statement

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/transfa/corebank/internal/domain"
)

// Renderer produces the bytes an account statement is made of for a given
// period. The outbound email interface is handed these bytes unexamined.
type Renderer interface {
	Render(ctx context.Context, account *domain.Account, customer *domain.Customer, transactions []*domain.Transaction, periodStart, periodEnd time.Time) ([]byte, error)
}

// TextRenderer is the in-process Renderer used until a real PDF pipeline
// exists outside this codebase.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (TextRenderer) Render(ctx context.Context, account *domain.Account, customer *domain.Customer, transactions []*domain.Transaction, periodStart, periodEnd time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Statement for %s %s\n", customer.FirstName, customer.LastName)
	fmt.Fprintf(&buf, "Account: %s (%s)\n", account.AccountNumber, account.Type)
	fmt.Fprintf(&buf, "Period: %s - %s\n", periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Closing balance: %s\n\n", account.Balance.String())
	fmt.Fprintln(&buf, "Date Type Amount Reference")
	for _, t := range transactions {
		fmt.Fprintf(&buf, "%s %-15s %-13s %s\n", t.Timestamp.Format("2006-01-02"), t.Type, t.Amount.String(), t.Reference)
	}
	return buf.Bytes(), nil
}
