package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

// Keys removed per UNLINK while walking a pattern.
const unlinkBatch = 100

// CacheRepository keeps JSON documents in Redis. Every key is prefixed with
// "<namespace>:". With a nil client reads miss and writes are dropped.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

func NewCacheRepository(client *redis.Client, namespace string) *CacheRepository {
	prefix := ""
	if namespace != "" {
		prefix = namespace + ":"
	}
	return &CacheRepository{client: client, prefix: prefix}
}

func (r *CacheRepository) connected() bool {
	return r != nil && r.client != nil
}

// Get decodes the document at key into dest. Absent keys yield ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if !r.connected() {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode %q: %w", key, err)
	}
	return nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !r.connected() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	return r.client.Set(ctx, r.prefix+key, raw, ttl).Err()
}

// DeleteByPattern unlinks every namespaced key matching the glob pattern,
// flushing in batches as the SCAN cursor advances.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.connected() {
		return nil
	}
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.client.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	iter := r.client.Scan(ctx, 0, r.prefix+pattern, unlinkBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return fmt.Errorf("cache unlink %q: %w", pattern, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %q: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("cache unlink %q: %w", pattern, err)
	}
	return nil
}

// PingContext reports whether Redis answers. A repository without a client
// is never reachable.
func (r *CacheRepository) PingContext(ctx context.Context) error {
	if !r.connected() {
		return errCacheDisabled
	}
	return r.client.Ping(ctx).Err()
}

var errCacheDisabled = errors.New("cache disabled")

// Enabled is false when no Redis client was configured.
func (r *CacheRepository) Enabled() bool {
	return r.connected()
}
