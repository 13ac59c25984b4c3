package cms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"iaction/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	Reader

	products atomic.Int32
	slugs    atomic.Int32
	secrets  atomic.Int32
	release  chan struct{}
	err      error
}

func (r *countingReader) Products(ctx context.Context) ([]model.Product, error) {
	r.products.Add(1)
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return []model.Product{{ID: "p1"}}, nil
}

// どのslugも見つからない
func (r *countingReader) ProductBySlug(ctx context.Context, slug string) (model.Product, bool, error) {
	r.slugs.Add(1)
	return model.Product{}, false, nil
}

func (r *countingReader) ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error) {
	r.secrets.Add(1)
	return model.ProductSecret{ID: productID}, true, nil
}

func newTestCache(next Reader, ttl time.Duration) (*CachedReader, *time.Time) {
	return newSizedTestCache(next, ttl, DefaultCacheSize)
}

func newSizedTestCache(next Reader, ttl time.Duration, size int) (*CachedReader, *time.Time) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	c := NewCachedReader(next, ttl, size)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCachedReader_TTL(t *testing.T) {
	next := &countingReader{}
	c, now := newTestCache(next, time.Minute)
	ctx := context.Background()

	_, err := c.Products(ctx)
	require.NoError(t, err)
	_, err = c.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), next.products.Load())

	*now = now.Add(61 * time.Second)
	_, err = c.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.products.Load())
}

func TestCachedReader_Invalidate(t *testing.T) {
	next := &countingReader{}
	c, _ := newTestCache(next, time.Hour)
	ctx := context.Background()

	_, _ = c.Products(ctx)
	require.Equal(t, 1, c.Len())
	c.Invalidate()
	assert.Equal(t, 0, c.Len())
	_, _ = c.Products(ctx)
	assert.Equal(t, int32(2), next.products.Load())
}

// URLから来る未知のslugを大量に投げても上限を超えない
func TestCachedReader_BoundedSize(t *testing.T) {
	next := &countingReader{}
	c, now := newSizedTestCache(next, time.Hour, 64)
	ctx := context.Background()

	_, err := c.Products(ctx)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		_, found, err := c.ProductBySlug(ctx, fmt.Sprintf("missing-%d", i))
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 64, c.Len())
	assert.Equal(t, int32(10000), next.slugs.Load())

	//期限切れ後も増えない
	*now = now.Add(2 * time.Hour)
	_, _, err = c.ProductBySlug(ctx, "one-more")
	require.NoError(t, err)
	assert.Equal(t, 64, c.Len())

	//直近のslugはまだ残っている
	_, _, err = c.ProductBySlug(ctx, "one-more")
	require.NoError(t, err)
	assert.Equal(t, int32(10001), next.slugs.Load())
}

// not foundも一定時間はキャッシュする
func TestCachedReader_CachesNotFound(t *testing.T) {
	next := &countingReader{}
	c, _ := newTestCache(next, time.Hour)

	for i := 0; i < 3; i++ {
		_, found, err := c.ProductBySlug(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, int32(1), next.slugs.Load())
}

// 失敗はキャッシュしない
func TestCachedReader_ErrorsNotCached(t *testing.T) {
	next := &countingReader{err: errors.New("cms down")}
	c, _ := newTestCache(next, time.Hour)
	ctx := context.Background()

	_, err := c.Products(ctx)
	require.Error(t, err)

	next.err = nil
	items, err := c.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(2), next.products.Load())
}

// secret系は毎回取りに行く
func TestCachedReader_SecretsBypassCache(t *testing.T) {
	next := &countingReader{}
	c, _ := newTestCache(next, time.Hour)

	for i := 0; i < 3; i++ {
		_, found, err := c.ProductSecret(context.Background(), "prod-1")
		require.NoError(t, err)
		assert.True(t, found)
	}
	assert.Equal(t, int32(3), next.secrets.Load())
}

// 同時アクセスは1回の取得にまとめる
func TestCachedReader_Singleflight(t *testing.T) {
	next := &countingReader{release: make(chan struct{})}
	c, _ := newTestCache(next, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Products(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return next.products.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.products.Load())
}
