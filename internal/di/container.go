package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-markup/internal/ast"
	markupcmd "github.com/goliatone/go-markup/internal/commands/markup"
	"github.com/goliatone/go-markup/internal/forum"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/logging/gologger"
	"github.com/goliatone/go-markup/internal/metrics"
	"github.com/goliatone/go-markup/internal/references"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/internal/runtimeconfig"
	"github.com/goliatone/go-markup/internal/sanitize"
	"github.com/goliatone/go-markup/internal/video"
	"github.com/goliatone/go-markup/internal/wiki"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// ErrTitleStoreUnavailable is returned by StoreTitle unless the sqlite
// references driver is configured.
var ErrTitleStoreUnavailable = errors.New("markup: title store requires the sqlite references driver")

// Container wires the engine's services from a runtime config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	registry       *prom.Registry
	recorder       interfaces.RenderMetrics

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	cacheRecords  bool

	extraResolver interfaces.ReferenceResolver
	resolver      interfaces.ReferenceResolver
	bunResolver   *references.BunResolver
	titleCache    *references.Cached

	videos   *video.Resolver
	forumSvc *forum.Service
	wikiSvc  *wiki.Service
	modules  *wiki.Registry
	commands *markupcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithPrometheusRegistry registers render metrics on reg instead of a
// private registry. Metrics stay off unless enabled in the config.
func WithPrometheusRegistry(reg *prom.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithBunDB supplies the database used by the sqlite references driver. The
// container does not close a supplied database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache supplies the cache service used for title lookups and also wraps
// the sqlite title repository with go-repository-cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
		c.cacheRecords = service != nil && serializer != nil
	}
}

// WithResolver consults resolver before the configured title source.
func WithResolver(resolver interfaces.ReferenceResolver) Option {
	return func(c *Container) {
		c.extraResolver = resolver
	}
}

// WithModules replaces the wiki module registry.
func WithModules(modules *wiki.Registry) Option {
	return func(c *Container) {
		c.modules = modules
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureMetrics()
	if err := c.configureCacheDefaults(); err != nil {
		return nil, err
	}
	if err := c.configureResolver(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.configureServices()
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) != runtimeconfig.LoggingProviderGoLogger {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureMetrics() {
	if !c.Config.Metrics.Enabled {
		c.registry = nil
		c.recorder = metrics.NoOp()
		return
	}
	if c.registry == nil {
		c.registry = prom.NewRegistry()
	}
	c.recorder = metrics.NewPrometheusRecorder(c.registry)
}

// configureCacheDefaults builds the title cache service from the cache config
// unless one was supplied through WithCache.
func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}
	if c.cacheService == nil {
		service, err := references.NewCacheService(c.Config.Cache.TTL)
		if err != nil {
			return fmt.Errorf("references: cache service: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureResolver(ctx context.Context) error {
	cfg := c.Config.References
	logger := logging.ReferencesLogger(c.loggerProvider)

	var base interfaces.ReferenceResolver
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case runtimeconfig.ReferencesDriverSQLite:
		if c.bunDB == nil {
			sqlDB, err := sql.Open("sqlite3", cfg.DSN)
			if err != nil {
				return fmt.Errorf("references: open sqlite: %w", err)
			}
			c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
			c.bunDB.SetMaxOpenConns(1)
			c.ownsDB = true
		}
		var (
			recordCache repocache.CacheService
			serializer  repocache.KeySerializer
		)
		if c.cacheRecords {
			recordCache, serializer = c.cacheService, c.keySerializer
		}
		resolver := references.NewBunResolverWithCache(c.bunDB, recordCache, serializer, references.WithBunLogger(logger))
		if err := resolver.Migrate(ctx); err != nil {
			return err
		}
		for _, entry := range cfg.Titles {
			kind, err := references.ParseKind(strings.ToLower(strings.TrimSpace(entry.Kind)))
			if err != nil {
				return err
			}
			if _, err := resolver.Store(ctx, kind, entry.ID, entry.Title); err != nil {
				return err
			}
		}
		c.bunResolver = resolver
		base = resolver
	case runtimeconfig.ReferencesDriverNone:
	default:
		static := references.NewStatic()
		for _, entry := range cfg.Titles {
			kind, err := references.ParseKind(strings.ToLower(strings.TrimSpace(entry.Kind)))
			if err != nil {
				return err
			}
			static.Set(kind, entry.ID, strings.TrimSpace(entry.Title))
		}
		base = static
	}

	if base != nil && c.Config.Cache.Enabled {
		c.titleCache = references.NewCached(base, c.cacheService)
		base = c.titleCache
	}

	chain := references.NewChain(c.extraResolver, base)
	switch len(chain) {
	case 0:
	case 1:
		c.resolver = chain[0]
	default:
		c.resolver = chain
	}
	return nil
}

func (c *Container) configureServices() {
	videos := video.NewResolver(video.WithDefaultSize(c.Config.Video.DefaultWidth, c.Config.Video.DefaultHeight))
	c.videos = videos
	renderLogger := logging.RenderLogger(c.loggerProvider)

	forumRenderer := render.New(
		render.WithLogger(renderLogger),
		render.WithMetrics(c.recorder),
		render.WithVideoResolver(videos),
		render.WithLineBreaks(c.Config.Forum.LineBreaks),
	)
	forumOpts := []forum.ServiceOption{
		forum.WithRenderer(forumRenderer),
		forum.WithResolver(c.resolver),
		forum.WithLogger(logging.ForumLogger(c.loggerProvider)),
		forum.WithMetrics(c.recorder),
		forum.WithMaxDepth(c.Config.Forum.MaxDepth),
		forum.WithMetaLength(c.Config.Forum.MetaLength),
	}
	if c.Config.Forum.Sanitize {
		forumOpts = append(forumOpts, forum.WithSanitizer(sanitize.NewSanitizer(nil)))
	}
	c.forumSvc = forum.NewService(forumOpts...)

	wikiRenderer := render.New(
		render.WithLogger(renderLogger),
		render.WithMetrics(c.recorder),
		render.WithVideoResolver(videos),
	)
	wikiOpts := []wiki.ServiceOption{
		wiki.WithRenderer(wikiRenderer),
		wiki.WithResolver(c.resolver),
		wiki.WithLogger(logging.WikiLogger(c.loggerProvider)),
		wiki.WithMaxDepth(c.Config.Wiki.MaxDepth),
		wiki.WithMetaLength(c.Config.Wiki.MetaLength),
	}
	if c.modules != nil {
		wikiOpts = append(wikiOpts, wiki.WithModules(c.modules))
	}
	c.wikiSvc = wiki.NewService(wikiOpts...)
}

func (c *Container) configureCommands() error {
	set, err := markupcmd.RegisterMarkupCommands(nil, c.forumSvc, c.wikiSvc, c.loggerProvider)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

// ForumService returns the configured forum service.
func (c *Container) ForumService() *forum.Service { return c.forumSvc }

// WikiService returns the configured wiki service.
func (c *Container) WikiService() *wiki.Service { return c.wikiSvc }

// VideoResolver returns the embed resolver shared by both renderers.
func (c *Container) VideoResolver() *video.Resolver { return c.videos }

// Resolver returns the title resolver shared by both services; nil when no
// title source is configured.
func (c *Container) Resolver() interfaces.ReferenceResolver { return c.resolver }

// TitleStore returns the sqlite-backed resolver, or nil for other drivers.
func (c *Container) TitleStore() *references.BunResolver { return c.bunResolver }

// StoreTitle saves a title in the sqlite title store and drops any cached
// lookup for it.
func (c *Container) StoreTitle(ctx context.Context, kind ast.Kind, id int, title string) error {
	if c.bunResolver == nil {
		return ErrTitleStoreUnavailable
	}
	if _, err := c.bunResolver.Store(ctx, kind, id, title); err != nil {
		return err
	}
	if c.titleCache != nil {
		return c.titleCache.Invalidate(ctx, kind, id)
	}
	return nil
}

// Commands returns the render command handlers.
func (c *Container) Commands() *markupcmd.HandlerSet { return c.commands }

// LoggerProvider returns the active provider, possibly nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// MetricsRegistry returns the Prometheus registry, or nil when metrics are off.
func (c *Container) MetricsRegistry() *prom.Registry { return c.registry }

// Close releases the database opened for the sqlite driver.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
