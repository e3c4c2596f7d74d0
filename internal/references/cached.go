package references

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// DefaultFetchTimeout bounds an upstream lookup once it is detached from the
// caller that started it.
const DefaultFetchTimeout = 10 * time.Second

const titleCacheNamespace = "references" + cache.KeySeparator + "title"

// cachedTitle is the value stored in the cache service. Misses are stored too.
type cachedTitle struct {
	Title string
	Found bool
}

// Cached memoises another resolver through a go-repository-cache service.
// Hits and misses are kept for the service TTL; errors are never cached.
// Concurrent lookups for the same entity share one upstream call, which runs
// detached from the cancellation of whichever caller started it.
type Cached struct {
	next         interfaces.ReferenceResolver
	service      cache.CacheService
	fetchTimeout time.Duration
	group        singleflight.Group
}

// CachedOption customises a Cached resolver.
type CachedOption func(*Cached)

// WithFetchTimeout bounds each shared upstream lookup. Non-positive values
// keep the default.
func WithFetchTimeout(timeout time.Duration) CachedOption {
	return func(c *Cached) {
		if timeout > 0 {
			c.fetchTimeout = timeout
		}
	}
}

// NewCacheService builds a cache service whose entries live for ttl. A
// non-positive ttl keeps the library default.
func NewCacheService(ttl time.Duration) (cache.CacheService, error) {
	cfg := cache.DefaultConfig()
	if ttl > 0 {
		cfg.TTL = ttl
	}
	return cache.NewCacheService(cfg)
}

// NewCached wraps next. A nil service disables caching but keeps the shared
// upstream call.
func NewCached(next interfaces.ReferenceResolver, service cache.CacheService, opts ...CachedOption) *Cached {
	c := &Cached{
		next:         next,
		service:      service,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Invalidate drops the cached entry for kind and id.
func (c *Cached) Invalidate(ctx context.Context, kind ast.Kind, id int) error {
	if c.service == nil {
		return nil
	}
	return c.service.DeleteByPrefix(ctx, cacheKey(kind, id))
}

// Purge drops every cached title.
func (c *Cached) Purge(ctx context.Context) error {
	if c.service == nil {
		return nil
	}
	return c.service.DeleteByPrefix(ctx, titleCacheNamespace+cache.KeySeparator)
}

// cacheKey ends with the separator so that prefix deletion of movie 1 leaves
// movie 10 alone.
func cacheKey(kind ast.Kind, id int) string {
	return titleCacheNamespace + cache.KeySeparator + key(kind, id) + cache.KeySeparator
}

func (c *Cached) lookup(ctx context.Context, kind ast.Kind, id int) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	k := cacheKey(kind, id)

	fetch := func(ctx context.Context) (cachedTitle, error) {
		return c.fetch(ctx, k, kind, id)
	}
	var (
		entry cachedTitle
		err   error
	)
	if c.service == nil {
		entry, err = fetch(ctx)
	} else {
		entry, err = cache.GetOrFetch[cachedTitle](ctx, c.service, k, fetch)
	}
	if err != nil {
		return "", false, err
	}
	return entry.Title, entry.Found, nil
}

// fetch runs the upstream lookup once per key at a time. The call keeps the
// starting caller's values but not its cancellation.
func (c *Cached) fetch(ctx context.Context, k string, kind ast.Kind, id int) (cachedTitle, error) {
	detached := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(k, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(detached, c.fetchTimeout)
		defer cancel()
		title, found, err := Title(fetchCtx, c.next, kind, id)
		if err != nil {
			return nil, err
		}
		return cachedTitle{Title: title, Found: found}, nil
	})
	if err != nil {
		return cachedTitle{}, err
	}
	return v.(cachedTitle), nil
}

func (c *Cached) MovieTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindMovie, id)
}

func (c *Cached) SubmissionTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindSubmission, id)
}

func (c *Cached) GameTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindGame, id)
}

func (c *Cached) GameGroupTitle(ctx context.Context, id int) (string, bool, error) {
	return c.lookup(ctx, ast.KindGameGroup, id)
}

var _ interfaces.ReferenceResolver = (*Cached)(nil)
