// Package ids defines the stable opaque identifier types used across
// aggregates and DTOs. Every id wraps a uuid.UUID; using distinct Go types
// (rather than passing raw uuid.UUID or string everywhere) keeps a
// CustomerID from being accidentally handed to a function expecting an
// AccountID.
package ids

import "github.com/google/uuid"

type CustomerID uuid.UUID

type AccountID uuid.UUID

type TransactionID uuid.UUID

type OutboxMessageID uuid.UUID

type EventID uuid.UUID

type JobID uuid.UUID

func NewCustomerID() CustomerID      { return CustomerID(uuid.New()) }
func NewAccountID() AccountID        { return AccountID(uuid.New()) }
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }
func NewOutboxMessageID() OutboxMessageID { return OutboxMessageID(uuid.New()) }
func NewEventID() EventID            { return EventID(uuid.New()) }
func NewJobID() JobID                { return JobID(uuid.New()) }

func (id CustomerID) String() string      { return uuid.UUID(id).String() }
func (id AccountID) String() string       { return uuid.UUID(id).String() }
func (id TransactionID) String() string   { return uuid.UUID(id).String() }
func (id OutboxMessageID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string         { return uuid.UUID(id).String() }
func (id JobID) String() string           { return uuid.UUID(id).String() }

func (id JobID) IsZero() bool { return id == JobID{} }

func ParseJobID(s string) (JobID, error) {
	u, err := uuid.Parse(s)
	return JobID(u), err
}

func (id CustomerID) IsZero() bool    { return id == CustomerID{} }
func (id AccountID) IsZero() bool     { return id == AccountID{} }
func (id TransactionID) IsZero() bool { return id == TransactionID{} }

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := uuid.Parse(s)
	return CustomerID(u), err
}

func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	return AccountID(u), err
}

func ParseTransactionID(s string) (TransactionID, error) {
	u, err := uuid.Parse(s)
	return TransactionID(u), err
}
