package cms

import (
	"context"
	"time"

	"iaction/internal/domain/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

type Reader interface {
	Products(ctx context.Context) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (model.Product, bool, error)
	Courses(ctx context.Context) ([]model.Course, error)
	Posts(ctx context.Context) ([]model.BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (model.BlogPost, bool, error)
	SiteSettings(ctx context.Context) (model.SiteSettings, bool, error)
	ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error)
	CourseSecret(ctx context.Context, courseID string) (model.CourseSecret, bool, error)
}

// 上限を超えたら古いものから捨てる
const DefaultCacheSize = 512

type entry struct {
	value   any
	found   bool
	expires time.Time
}

// 公開コンテンツだけTTLでキャッシュする。secret系は毎回取りに行く
// slugはURLから来るので件数に上限を付ける
type CachedReader struct {
	next Reader
	ttl  time.Duration
	now  func() time.Time

	store *expirable.LRU[string, entry]
	group singleflight.Group
}

func NewCachedReader(next Reader, ttl time.Duration, size int) *CachedReader {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachedReader{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		store: expirable.NewLRU[string, entry](size, nil, ttl),
	}
}

// 期限切れのときは同じキーの取得を1本にまとめる。失敗はキャッシュしない
func cached[T any](ctx context.Context, c *CachedReader, key string, fetch func(ctx context.Context) (T, bool, error)) (T, bool, error) {
	if c.ttl > 0 {
		if e, ok := c.store.Get(key); ok && c.now().Before(e.expires) {
			return e.value.(T), e.found, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		val, found, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		e := entry{value: val, found: found, expires: c.now().Add(c.ttl)}
		if c.ttl > 0 {
			c.store.Add(key, e)
		}
		return e, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	e := v.(entry)
	return e.value.(T), e.found, nil
}

// 保持件数（テスト・監視用）
func (c *CachedReader) Len() int {
	return c.store.Len()
}

func (c *CachedReader) Products(ctx context.Context) ([]model.Product, error) {
	v, _, err := cached(ctx, c, "products", func(ctx context.Context) ([]model.Product, bool, error) {
		items, err := c.next.Products(ctx)
		return items, true, err
	})
	return v, err
}

func (c *CachedReader) ProductBySlug(ctx context.Context, slug string) (model.Product, bool, error) {
	return cached(ctx, c, "product:"+slug, func(ctx context.Context) (model.Product, bool, error) {
		return c.next.ProductBySlug(ctx, slug)
	})
}

func (c *CachedReader) Courses(ctx context.Context) ([]model.Course, error) {
	v, _, err := cached(ctx, c, "courses", func(ctx context.Context) ([]model.Course, bool, error) {
		items, err := c.next.Courses(ctx)
		return items, true, err
	})
	return v, err
}

func (c *CachedReader) Posts(ctx context.Context) ([]model.BlogPost, error) {
	v, _, err := cached(ctx, c, "posts", func(ctx context.Context) ([]model.BlogPost, bool, error) {
		items, err := c.next.Posts(ctx)
		return items, true, err
	})
	return v, err
}

func (c *CachedReader) PostBySlug(ctx context.Context, slug string) (model.BlogPost, bool, error) {
	return cached(ctx, c, "post:"+slug, func(ctx context.Context) (model.BlogPost, bool, error) {
		return c.next.PostBySlug(ctx, slug)
	})
}

func (c *CachedReader) SiteSettings(ctx context.Context) (model.SiteSettings, bool, error) {
	return cached(ctx, c, "settings", c.next.SiteSettings)
}

func (c *CachedReader) ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error) {
	return c.next.ProductSecret(ctx, productID)
}

func (c *CachedReader) CourseSecret(ctx context.Context, courseID string) (model.CourseSecret, bool, error) {
	return c.next.CourseSecret(ctx, courseID)
}

// 管理画面から即時反映したいとき
func (c *CachedReader) Invalidate() {
	c.store.Purge()
}
