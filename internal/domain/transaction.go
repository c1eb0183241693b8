// Package domain implements the aggregate layer: Account (the aggregate
// root), its child Transaction entities, and the Customer aggregate. These
// types hold invariants and emit domain events; they never perform I/O or
// logging — every method is a pure function of its receiver and arguments,
// carrying real behavior rather than acting as thin DB-row mirrors.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

type TransactionType string

const (
	Deposit        TransactionType = "deposit"
	Withdrawal     TransactionType = "withdrawal"
	Transfer       TransactionType = "transfer"
	TransferIn     TransactionType = "transfer_in"
	TransferOut    TransactionType = "transfer_out"
	InterestCredit TransactionType = "interest_credit"
)

// IsCredit reports whether transactions of this type increase the owning
// account's balance. Used by AverageDailyBalance to sign each amount.
func (t TransactionType) IsCredit() bool {
	switch t {
	case Deposit, TransferIn, InterestCredit:
		return true
	default:
		return false
	}
}

// Transaction is an append-only child of Account. It is never mutated after
// creation except for soft-delete (SoftDelete).
type Transaction struct {
	ID          ids.TransactionID
	AccountID   ids.AccountID
	Type        TransactionType
	Amount      moneytype.Money // always positive; direction comes from Type
	Description string
	Timestamp   time.Time
	Reference   string

	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy string
}

// NewTransaction constructs a Transaction. If reference is empty, one is
// generated as YYYYMMDDhhmmss-<first-8-of-id>; a caller-supplied reference
// is stored as given.
func NewTransaction(accountID ids.AccountID, txType TransactionType, amount moneytype.Money, description string, when time.Time, reference string) *Transaction {
	id := ids.NewTransactionID()
	ref := reference
	if strings.TrimSpace(ref) == "" {
		ref = GenerateReference(when, id)
	}
	return &Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Timestamp:   when,
		Reference:   ref,
	}
}

// NewTransactionWithID is used when the id (and therefore the reference
// derived from it) must be shared ahead of time, e.g. a Transfer's matching
// TransferOut/TransferIn pair.
func NewTransactionWithID(id ids.TransactionID, accountID ids.AccountID, txType TransactionType, amount moneytype.Money, description string, when time.Time, reference string) *Transaction {
	ref := reference
	if strings.TrimSpace(ref) == "" {
		ref = GenerateReference(when, id)
	}
	return &Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Timestamp:   when,
		Reference:   ref,
	}
}

// GenerateReference builds the default reference format
// YYYYMMDDhhmmss-<first-8-of-id>.
func GenerateReference(when time.Time, id ids.TransactionID) string {
	stamp := when.UTC().Format("20060102150405")
	idStr := strings.ReplaceAll(id.String(), "-", "")
	if len(idStr) > 8 {
		idStr = idStr[:8]
	}
	return fmt.Sprintf("%s-%s", stamp, idStr)
}

// CreateInterestCredit produces an InterestCredit transaction. The caller
// (a scheduled job handler) is responsible for also crediting the owning
// account's balance — this constructor only builds the ledger record.
func CreateInterestCredit(accountID ids.AccountID, amount moneytype.Money, when time.Time, description string) *Transaction {
	id := ids.NewTransactionID()
	reference := fmt.Sprintf("INT-%s-%s", when.UTC().Format("20060102"), randomHex8())
	return &Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        InterestCredit,
		Amount:      amount,
		Description: description,
		Timestamp:   when,
		Reference:   reference,
	}
}

func randomHex8() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// SoftDelete marks the transaction as deleted by actor at now. Soft-deleted
// rows remain in storage but are invisible to reads by default.
func (t *Transaction) SoftDelete(actor string, now time.Time) {
	t.IsDeleted = true
	t.DeletedAt = &now
	t.DeletedBy = actor
}
