package pipeline

import (
	"context"
	"log/slog"

	"github.com/transfa/corebank/internal/dispatcher"
)

// DomainEventsMiddleware runs only after the handler returns success, and
// only then invokes the in-process dispatcher on the events the Unit of Work
// just durably committed to the outbox. The outbox relay will eventually
// dispatch the same events too; this synchronous pass exists only for
// handlers exposing real-time side effects. Dispatch errors are logged and
// otherwise ignored, matching the dispatcher's fire-and-log contract.
func DomainEventsMiddleware(d *dispatcher.Dispatcher, logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) Result {
			result := next(ctx, req)
			if !result.Ok() {
				return result
			}
			for _, event := range result.CommittedEvents {
				if err := d.Publish(ctx, event); err != nil {
					logger.Warn("synchronous event dispatch failed",
						slog.String("request", req.Name()),
						slog.String("event_type", event.TypeTag()),
						slog.Any("error", err))
				}
			}
			return result
		}
	}
}
