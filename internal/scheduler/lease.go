package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lease key only if the caller still owns it,
// mirroring the check-then-act Lua scripting style of
// transaction-service/internal/app/redis_rate_limiter.go's
// moneyDropRateLimitScript — a plain GET-then-DEL from Go would race another
// worker that re-acquired the same key after this one's TTL expired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a distributed, TTL-bounded advisory lock used to coordinate
// worker-pool polling across replicas, layered on top of the per-row
// locked_until column so the invisibility guarantee holds even if Redis is
// briefly unavailable (a failed Acquire just means this replica sits out one
// poll tick; the DB claim query is still correct on its own).
type Lease struct {
	client redis.UniversalClient
	prefix string
}

func NewLease(client redis.UniversalClient, prefix string) *Lease {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "corebank:scheduler:lease"
	}
	return &Lease{client: client, prefix: trimmed}
}

// Acquire attempts to take the named lease for ttl. ok is false if another
// holder currently owns it or the client is nil (Redis unconfigured).
func (l *Lease) Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
	if l == nil || l.client == nil {
		return "", false, nil
	}
	token = uuid.NewString()
	key := l.key(name)
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, acquired, nil
}

// Release drops the lease if it is still held by token.
func (l *Lease) Release(ctx context.Context, name, token string) error {
	if l == nil || l.client == nil || token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{l.key(name)}, token).Err()
}

func (l *Lease) key(name string) string {
	return l.prefix + ":" + name
}
