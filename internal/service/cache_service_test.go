package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/autocare/autocare-api/pkg/errors"
)

type memoryCacheRepo struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	hit, err := cache.Get(ctx, "categories:list", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "categories:list", []string{"Frenos"}, 0))
	assert.Equal(t, time.Minute, repo.ttls["categories:list"])

	hit, err = cache.Get(ctx, "categories:list", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"Frenos"}, out)
	assert.Equal(t, 1.0, counterValue(t, metrics, "cache_lookups_total", "hit"))
	assert.Equal(t, 1.0, counterValue(t, metrics, "cache_lookups_total", "miss"))

	require.NoError(t, cache.Invalidate(ctx, "categories:*"))
	assert.Empty(t, repo.data)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, false)

	assert.False(t, cache.Enabled())
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.data)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}

func TestCacheServicePropagatesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, 0, zap.NewNop(), true)

	var out int
	hit, err := cache.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestRememberLoadsOnceAndCaches(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, zap.NewNop(), true)
	calls := 0
	load := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Motor", "Frenos"}, nil
	}

	first, err := Remember(context.Background(), cache, "categories:list", 0, load)
	require.NoError(t, err)
	second, err := Remember(context.Background(), cache, "categories:list", 0, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, DefaultCacheTTL, repo.ttls["categories:list"])
}

func TestRememberWithoutCacheAndLoadFailure(t *testing.T) {
	value, err := Remember(context.Background(), nil, "k", 0, func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, true)
	_, err = Remember(context.Background(), cache, "k", 0, func(ctx context.Context) (int, error) { return 0, errors.New("db down") })
	assert.Error(t, err)
	assert.Empty(t, repo.data)
}
