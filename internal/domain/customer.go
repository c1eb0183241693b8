package domain

import (
	"strings"
	"time"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
)

// Customer is the identity aggregate. It owns a collection of Accounts, but
// the collection is only loaded when a caller explicitly asks for it —
// Customer itself never emits domain events; only Account does.
type Customer struct {
	ID          ids.CustomerID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	DateOfBirth time.Time
	BVN         string
	CreditScore int
	EmailOptIn  bool
	CreatedAt   time.Time
	IsActive    bool

	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy string

	accounts []*Account
}

// NewCustomer validates and constructs a Customer. Age and email/phone shape
// validation live in the pipeline's Validation middleware; the aggregate
// constructor only enforces invariants true regardless of caller (non-empty
// identity fields).
func NewCustomer(firstName, lastName, email, phone, address string, dob time.Time, bvn string, creditScore int, now time.Time) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if firstName == "" || lastName == "" {
		return nil, domainerr.Validation("first and last name are required")
	}
	if email == "" {
		return nil, domainerr.Validation("email is required")
	}
	return &Customer{
		ID:          ids.NewCustomerID(),
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Phone:       phone,
		Address:     address,
		DateOfBirth: dob,
		BVN:         bvn,
		CreditScore: creditScore,
		CreatedAt:   now,
		IsActive:    true,
	}, nil
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Accounts returns the in-memory account collection, if it has been loaded.
func (c *Customer) Accounts() []*Account {
	out := make([]*Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// AttachAccounts hydrates the in-memory account collection; only
// repositories call this, on explicit request.
func (c *Customer) AttachAccounts(accounts []*Account) {
	c.accounts = append(c.accounts[:0:0], accounts...)
}

// hasNonZeroBalance reports whether any attached account carries a non-zero
// balance. Deactivation/deletion callers must have attached accounts first;
// an empty collection is treated as "no accounts to block on."
func (c *Customer) hasNonZeroBalance() bool {
	for _, acct := range c.accounts {
		if acct.Balance.AmountMinor != 0 {
			return true
		}
	}
	return false
}

// Deactivate flips IsActive off. Blocked while any owned account carries a
// non-zero balance.
func (c *Customer) Deactivate() error {
	if c.hasNonZeroBalance() {
		return domainerr.InvalidOperation("cannot deactivate customer with non-zero account balances")
	}
	c.IsActive = false
	return nil
}

// SoftDelete marks the customer deleted by actor at now. Blocked while any
// owned account carries a non-zero balance.
func (c *Customer) SoftDelete(actor string, now time.Time) error {
	if c.hasNonZeroBalance() {
		return domainerr.InvalidOperation("cannot delete customer with non-zero account balances")
	}
	c.IsDeleted = true
	c.DeletedAt = &now
	c.DeletedBy = actor
	return nil
}
