package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/outbox"
	"github.com/transfa/corebank/internal/store"
)

// OutboxRepository implements store.OutboxRepository.
type OutboxRepository struct {
	db *Pool
}

func NewOutboxRepository(db *Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

const outboxColumns = `
	id, type, payload, occurred_on, processed_on, retry_count, last_error, last_attempted_at
`

func scanOutboxMessage(row pgx.Row) (*outbox.Message, error) {
	var m outbox.Message
	var id uuid.UUID
	err := row.Scan(&id, &m.Type, &m.Payload, &m.OccurredOn, &m.ProcessedOn, &m.RetryCount, &m.LastError, &m.LastAttemptedAt)
	if err != nil {
		return nil, err
	}
	m.ID = ids.OutboxMessageID(id)
	return &m, nil
}

// InsertBatch inserts rows using the caller's own transaction handle (store.Tx),
// so the outbox write lands atomically alongside the aggregate flush the Unit
// of Work performs in the same database transaction.
func (r *OutboxRepository) InsertBatch(ctx context.Context, tx store.Tx, rows []*outbox.Message) error {
	for _, m := range rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO outbox_messages (id, type, payload, occurred_on, retry_count)
			VALUES ($1,$2,$3,$4,$5)
		`, uuid.UUID(m.ID), m.Type, m.Payload, m.OccurredOn, m.RetryCount)
		if err != nil {
			return domainerr.Internal("failed to insert outbox message", err)
		}
	}
	return nil
}

// FetchPending returns up to limit rows that have not yet been processed and
// have not exhausted maxRetries, oldest first.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int, maxRetries int) ([]*outbox.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+outboxColumns+` FROM outbox_messages
		WHERE processed_on IS NULL AND retry_count < $1
		ORDER BY occurred_on ASC
		LIMIT $2
	`, maxRetries, limit)
	if err != nil {
		return nil, domainerr.Internal("failed to fetch pending outbox messages", err)
	}
	defer rows.Close()

	var out []*outbox.Message
	for rows.Next() {
		m, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, domainerr.Internal("failed to scan outbox message", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveBatch persists ProcessedOn/RetryCount/LastError/LastAttemptedAt for the
// given rows in a single transaction — the relay updates every row in the
// batch it just attempted together.
func (r *OutboxRepository) SaveBatch(ctx context.Context, rows []*outbox.Message) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domainerr.Internal("failed to begin outbox batch save", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range rows {
		_, err := tx.Exec(ctx, `
			UPDATE outbox_messages SET
				processed_on=$2, retry_count=$3, last_error=$4, last_attempted_at=$5
			WHERE id = $1
		`, uuid.UUID(m.ID), m.ProcessedOn, m.RetryCount, m.LastError, m.LastAttemptedAt)
		if err != nil {
			return domainerr.Internal("failed to update outbox message", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domainerr.Internal("failed to commit outbox batch save", err)
	}
	return nil
}

// ResetRetryCount returns a dead-lettered row to the pending queue, the
// operator recovery action for quarantined messages.
func (r *OutboxRepository) ResetRetryCount(ctx context.Context, id ids.OutboxMessageID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE outbox_messages SET retry_count = 0, last_error = NULL, last_attempted_at = NULL
		WHERE id = $1
	`, uuid.UUID(id))
	if err != nil {
		return domainerr.Internal("failed to reset outbox retry count", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("outbox message not found")
	}
	return nil
}
