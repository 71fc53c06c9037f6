package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/lms-schedule-api/pkg/errors"
)

type cacheRepoStub struct {
	data        map[string][]byte
	ttls        map[string]time.Duration
	invalidated []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (r *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.data[key] = raw
	r.ttls[key] = ttl
	return nil
}

func (r *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	r.invalidated = append(r.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			delete(r.data, key)
		}
	}
	return nil
}

func newCacheServiceForTest(repo *cacheRepoStub) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newCacheRepoStub()
	svc := newCacheServiceForTest(repo)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "progress:summary:stu-1:term-1", "v1", 0))
	require.NoError(t, svc.Set(ctx, "progress:summary:stu-2:term-1", "v2", 0))

	var out string
	hit, err := svc.Get(ctx, "progress:summary:stu-1:term-1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v1", out)

	require.NoError(t, svc.Invalidate(ctx, "progress:summary:stu-1:*"))
	hit, err = svc.Get(ctx, "progress:summary:stu-1:term-1", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// Other students' entries survive a scoped invalidation.
	hit, err = svc.Get(ctx, "progress:summary:stu-2:term-1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCacheServiceDefaultTTL(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, 5*time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "a", 1, 0))
	assert.Equal(t, 5*time.Minute, repo.ttls["a"])

	require.NoError(t, svc.Set(ctx, "b", 1, time.Hour))
	assert.Equal(t, time.Hour, repo.ttls["b"])
}

func TestCacheServiceDisabledSkipsStore(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Empty(t, repo.data)

	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Invalidate(ctx, "k*"))
	assert.Empty(t, repo.invalidated)
}
