package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// LoggingMiddleware records request type and outcome; it never alters the
// result. Generalizes the familiar HTTP request/response logging shape to
// a Command/Query Request/Result pair.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) Result {
			start := time.Now()
			result := next(ctx, req)
			attrs := []any{
				slog.String("request", req.Name()),
				slog.Duration("duration", time.Since(start)),
			}
			switch {
			case result.Err != nil:
				logger.Error("request failed", append(attrs, slog.Any("error", result.Err))...)
			case len(result.Violations) > 0:
				logger.Warn("request rejected by validation", append(attrs, slog.Int("violations", len(result.Violations)))...)
			default:
				logger.Info("request succeeded", attrs...)
			}
			return result
		}
	}
}
