// Package outbox defines the persisted OutboxMessage row shape shared by the
// Unit of Work (which inserts rows) and the relay (which polls and updates
// them).
package outbox

import (
	"time"

	"github.com/transfa/corebank/internal/ids"
)

// Message is a row in the outbox table: one pending (or already-delivered,
// or quarantined) domain event.
type Message struct {
	ID              ids.OutboxMessageID
	Type            string
	Payload         []byte
	OccurredOn      time.Time
	ProcessedOn     *time.Time
	RetryCount      int
	LastError       *string
	LastAttemptedAt *time.Time
}

// MaxRetries is the default retry bound after which a row becomes
// dead-lettered.
const MaxRetries = 3

// IsDeadLettered reports whether the row has exhausted its retry budget and
// is excluded from the relay's polling query.
func (m *Message) IsDeadLettered(maxRetries int) bool {
	return m.RetryCount >= maxRetries
}
