package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupeTTL covers the gateway's retry window with a wide margin.
const dedupeTTL = 48 * time.Hour

// Deduper remembers applied transaction codes so a retried
// notification is acknowledged without being applied twice. A key is
// marked only once dispatch has succeeded; a failed dispatch leaves
// the key unmarked so the gateway's retry gets a second attempt.
type Deduper interface {
	// Seen reports whether the key has been marked as applied.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records the key as applied.
	Mark(ctx context.Context, key string) error
}

// RedisDeduper tracks processed notifications in Redis so that
// deduplication holds across instances and restarts. Redis outages
// fail open: a notification is processed rather than dropped, and the
// manager's own guards absorb the rare replay.
type RedisDeduper struct {
	client redis.UniversalClient
	log    *slog.Logger
}

// NewRedisDeduper creates a RedisDeduper. Panics if client is nil.
func NewRedisDeduper(client redis.UniversalClient, log *slog.Logger) *RedisDeduper {
	if client == nil {
		panic("webhook: redis client is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisDeduper{client: client, log: log}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, "webhook:seen:"+key).Result()
	if err != nil {
		d.log.Warn("webhook dedupe check failed, processing anyway",
			slog.String("key", key),
			slog.Any("error", err))
		return false, nil
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, "webhook:seen:"+key, 1, dedupeTTL).Err(); err != nil {
		d.log.Warn("webhook dedupe mark failed, a retry may be re-applied",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return nil
}

// MemoryDeduper is an in-process Deduper for tests and single-instance
// deployments.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time)}
}

func (d *MemoryDeduper) Seen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for k, at := range d.seen {
		if now.Sub(at) > dedupeTTL {
			delete(d.seen, k)
		}
	}
	_, ok := d.seen[key]
	return ok, nil
}

func (d *MemoryDeduper) Mark(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[key] = time.Now()
	return nil
}
