// Package moneytype provides the Money value type shared by every aggregate
// and DTO in the system. Amounts are stored as integer minor units (the
// smallest unit of the currency, e.g. kobo/cents) to avoid floating-point
// drift, the same convention used for wallet balances elsewhere.
package moneytype

import (
	"fmt"
	"strings"
)

// Money is an immutable amount denominated in a 3-letter ISO-4217-shaped
// currency code. Money does not enforce a sign: New accepts a negative
// AmountMinor and Sub can produce one (IsNegative reports it). A
// Transaction's direction is carried by its Type, not by its Money.
type Money struct {
	AmountMinor int64
	Currency    string
}

// Zero returns a zero-value Money in the given currency.
func Zero(currency string) Money {
	return Money{AmountMinor: 0, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// New builds a Money, uppercasing and trimming the currency code.
func New(amountMinor int64, currency string) Money {
	return Money{AmountMinor: amountMinor, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// IsValidCurrency reports whether the currency is a non-empty 3-letter code.
func (m Money) IsValidCurrency() bool {
	c := m.Currency
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.AmountMinor < 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.AmountMinor > 0
}

// SameCurrency reports whether both amounts share a currency code.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// Add returns m + other. Callers must ensure currencies match.
func (m Money) Add(other Money) Money {
	return Money{AmountMinor: m.AmountMinor + other.AmountMinor, Currency: m.Currency}
}

// Sub returns m - other. Callers must ensure currencies match.
func (m Money) Sub(other Money) Money {
	return Money{AmountMinor: m.AmountMinor - other.AmountMinor, Currency: m.Currency}
}

// LessThan reports whether m < other. Callers must ensure currencies match.
func (m Money) LessThan(other Money) bool {
	return m.AmountMinor < other.AmountMinor
}

// String renders "amount.dd CUR" for logs and statements.
func (m Money) String() string {
	whole := m.AmountMinor / 100
	frac := m.AmountMinor % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, m.Currency)
}
