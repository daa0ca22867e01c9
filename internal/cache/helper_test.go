package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"koinonia/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMiniredis swaps the package client for a miniredis-backed one. Tests in
// this package share the global client, so none of them run in parallel.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

type cachedPayload struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

func TestGetSetJSON(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	var out cachedPayload
	found, err := GetJSON(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	in := cachedPayload{Name: "psalm", Score: 7}
	require.NoError(t, SetJSON(ctx, "payload", in, time.Minute))
	assert.Greater(t, mr.TTL("payload"), time.Duration(0))

	found, err = GetJSON(ctx, "payload", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetSetJSON_NilClientIsNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var out cachedPayload
	found, err := GetJSON(ctx, "anything", &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(ctx, "anything", cachedPayload{}, time.Minute))
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPayload) func() error {
		return func() error {
			fetches++
			*dest = cachedPayload{Name: "fetched", Score: 3}
			return nil
		}
	}

	var first cachedPayload
	require.NoError(t, Aside(ctx, "aside-key", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "fetched", first.Name)

	// Second read is served from the cache.
	var second cachedPayload
	require.NoError(t, Aside(ctx, "aside-key", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var out cachedPayload
	err := Aside(ctx, "err-key", &out, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	found, err := GetJSON(ctx, "err-key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "content:media:12", ContentKey(models.ContentTypeMedia, 12))
	assert.Equal(t, "summary:ebook:3", SummaryKey(models.ContentTypeEbook, 3))
	assert.Equal(t, "trending:like:podcast:7:20",
		TrendingKey(models.KindLike, models.ContentTypePodcast, 7, 20))

	// Distinct query shapes never collide.
	assert.NotEqual(t,
		TrendingKey(models.KindLike, "", 7, 20),
		TrendingKey(models.KindLike, "", 30, 20))
}

func TestInvalidateContent(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ContentKey(models.ContentTypeMedia, 5), cachedPayload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, SummaryKey(models.ContentTypeMedia, 5), cachedPayload{}, time.Minute))

	InvalidateContent(ctx, models.ContentTypeMedia, 5)

	assert.False(t, mr.Exists(ContentKey(models.ContentTypeMedia, 5)))
	assert.False(t, mr.Exists(SummaryKey(models.ContentTypeMedia, 5)))
}
