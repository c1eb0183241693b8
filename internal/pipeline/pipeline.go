// Package pipeline implements the command/query pipeline: a fixed, ordered
// middleware chain (Logging, Validation, DomainEvents) wrapping every
// handler. This generalizes the familiar HTTP middleware-chain shape to a
// transport-agnostic Command/Query handler chain, since this system's
// pipeline sits below the HTTP layer rather than inside it.
package pipeline

import (
	"context"

	"github.com/transfa/corebank/internal/events"
)

// Request is implemented by every Command and Query. Name identifies the
// request type for logging and for looking up registered validation rules.
type Request interface {
	Name() string
}

// Result is the uniform return shape of every handler: either a payload or
// a non-empty list of violations, never both populated meaningfully.
type Result struct {
	Payload    any
	Violations []Violation
	Err        error

	// CommittedEvents is the set of domain events a successful command's
	// Unit of Work just durably persisted to the outbox. Command handlers
	// populate this from the aggregate's PendingEvents snapshot taken
	// immediately before calling Commit; the DomainEvents middleware stage
	// uses it to additionally invoke the in-process dispatcher synchronously
	// for handlers with synchronous side-effects. Queries never populate
	// this.
	CommittedEvents []events.DomainEvent
}

// Violation is a single field-level failure, mirroring domainerr.Violation
// so Validation-stage failures and aggregate-raised violations share one
// shape all the way out to the caller.
type Violation struct {
	Field  string
	Reason string
}

// Ok reports whether the result carries neither an error nor violations.
func (r Result) Ok() bool {
	return r.Err == nil && len(r.Violations) == 0
}

// Handler executes one Command or Query and returns its Result. Handlers
// must not call other handlers — composition is by data, not by nested
// commands.
type Handler func(ctx context.Context, req Request) Result

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(next Handler) Handler

// Chain composes middlewares in the order given, so the first middleware in
// the slice is the outermost wrapper (runs first on the way in, last on the
// way out).
func Chain(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
