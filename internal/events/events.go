// Package events defines the domain event variants an Account aggregate can
// emit, and a small tagged-variant registry so the outbox relay can resolve
// a persisted type tag back into a concrete Go type ("polymorphic
// events"), generalizing the usual outbox generic-byte-payload shape into
// typed domain event structs with conventional field naming.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

// DomainEvent is implemented by every event an aggregate can append to its
// pending-events queue. TypeTag is the discriminator persisted alongside the
// JSON payload in the outbox.
type DomainEvent interface {
	EventID() ids.EventID
	OccurredOn() time.Time
	TypeTag() string
}

type base struct {
	ID       ids.EventID `json:"event_id"`
	Occurred time.Time   `json:"occurred_on"`
}

func newBase() base {
	return base{ID: ids.NewEventID(), Occurred: time.Now().UTC()}
}

func (b base) EventID() ids.EventID  { return b.ID }
func (b base) OccurredOn() time.Time { return b.Occurred }

// AccountCreated fires when domain.CreateAccount succeeds.
type AccountCreated struct {
	base
	AccountID      ids.AccountID   `json:"account_id"`
	AccountNumber  string          `json:"account_number"`
	CustomerID     ids.CustomerID  `json:"customer_id"`
	AccountType    string          `json:"account_type"`
	InitialDeposit moneytype.Money `json:"initial_deposit"`
}

func (AccountCreated) TypeTag() string { return "account.created" }

func NewAccountCreated(accountID ids.AccountID, accountNumber string, customerID ids.CustomerID, accountType string, initialDeposit moneytype.Money) AccountCreated {
	return AccountCreated{
		base:           newBase(),
		AccountID:      accountID,
		AccountNumber:  accountNumber,
		CustomerID:     customerID,
		AccountType:    accountType,
		InitialDeposit: initialDeposit,
	}
}

// MoneyTransferred fires when Account.Transfer succeeds.
type MoneyTransferred struct {
	base
	TransactionID            ids.TransactionID `json:"transaction_id"`
	SourceAccountNumber      string            `json:"source_account_number"`
	DestinationAccountNumber string            `json:"destination_account_number"`
	Amount                   moneytype.Money   `json:"amount"`
	Reference                string            `json:"reference"`
	TransferDate             time.Time         `json:"transfer_date"`
}

func (MoneyTransferred) TypeTag() string { return "account.money_transferred" }

func NewMoneyTransferred(transactionID ids.TransactionID, sourceAccountNumber, destinationAccountNumber string, amount moneytype.Money, reference string, transferDate time.Time) MoneyTransferred {
	return MoneyTransferred{
		base:                     newBase(),
		TransactionID:            transactionID,
		SourceAccountNumber:      sourceAccountNumber,
		DestinationAccountNumber: destinationAccountNumber,
		Amount:                   amount,
		Reference:                reference,
		TransferDate:             transferDate,
	}
}

// InsufficientFunds fires when a debiting operation cannot be satisfied.
type InsufficientFunds struct {
	base
	AccountNumber   string          `json:"account_number"`
	RequestedAmount moneytype.Money `json:"requested_amount"`
	CurrentBalance  moneytype.Money `json:"current_balance"`
	Operation       string          `json:"operation"`
}

func (InsufficientFunds) TypeTag() string { return "account.insufficient_funds" }

func NewInsufficientFunds(accountNumber string, requestedAmount, currentBalance moneytype.Money, operation string) InsufficientFunds {
	return InsufficientFunds{
		base:            newBase(),
		AccountNumber:   accountNumber,
		RequestedAmount: requestedAmount,
		CurrentBalance:  currentBalance,
		Operation:       operation,
	}
}

// registry maps a persisted type tag to a zero-value factory used to
// deserialize an outbox row's JSON payload into its concrete type.
var registry = map[string]func() DomainEvent{
	AccountCreated{}.TypeTag():     func() DomainEvent { return &AccountCreated{} },
	MoneyTransferred{}.TypeTag():   func() DomainEvent { return &MoneyTransferred{} },
	InsufficientFunds{}.TypeTag():  func() DomainEvent { return &InsufficientFunds{} },
}

// Decode resolves typeTag to a concrete DomainEvent and unmarshals payload
// into it. It returns (nil, nil) for an unrecognized tag — callers treat that
// as "mark processed, log a warning", never as an error.
func Decode(typeTag string, payload []byte) (DomainEvent, error) {
	factory, ok := registry[typeTag]
	if !ok {
		return nil, nil
	}
	event := factory()
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", typeTag, err)
	}
	// factory returns a pointer so json.Unmarshal can populate it; hand back
	// the value form subscribers expect.
	switch e := event.(type) {
	case *AccountCreated:
		return *e, nil
	case *MoneyTransferred:
		return *e, nil
	case *InsufficientFunds:
		return *e, nil
	default:
		return event, nil
	}
}

// Encode serializes an event alongside its type tag for outbox storage.
func Encode(event DomainEvent) (typeTag string, payload []byte, err error) {
	payload, err = json.Marshal(event)
	if err != nil {
		return "", nil, err
	}
	return event.TypeTag(), payload, nil
}
