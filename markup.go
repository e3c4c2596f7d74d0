package markup

import (
	"context"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	markupcmd "github.com/goliatone/go-markup/internal/commands/markup"
	"github.com/goliatone/go-markup/internal/di"
	"github.com/goliatone/go-markup/internal/forum"
	"github.com/goliatone/go-markup/internal/references"
	"github.com/goliatone/go-markup/internal/video"
	"github.com/goliatone/go-markup/internal/wiki"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// ErrTitleStoreUnavailable is returned by StoreTitle unless the sqlite
// references driver is configured.
var ErrTitleStoreUnavailable = di.ErrTitleStoreUnavailable

// PostOptions carries the per-post syntax flags.
type PostOptions = forum.PostOptions

// Referral is an outgoing internal wiki link with its context.
type Referral = wiki.Referral

// ReferenceResolver maps entity ids to display titles.
type ReferenceResolver = interfaces.ReferenceResolver

type (
	RenderPostCommand = markupcmd.RenderPostCommand
	RenderWikiCommand = markupcmd.RenderWikiCommand
	CommandResult     = markupcmd.Result
	CommandOutput     = markupcmd.Output
)

const (
	OutputHTML      = markupcmd.OutputHTML
	OutputMeta      = markupcmd.OutputMeta
	OutputReferrals = markupcmd.OutputReferrals
)

// Option customises engine construction.
type Option = di.Option

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithPrometheusRegistry registers render metrics on reg.
func WithPrometheusRegistry(reg *prom.Registry) Option {
	return di.WithPrometheusRegistry(reg)
}

// WithBunDB supplies the database used by the sqlite references driver.
func WithBunDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

// WithRepositoryCache caches title records through go-repository-cache.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return di.WithCache(service, serializer)
}

// WithResolver consults resolver before the configured title source.
func WithResolver(resolver ReferenceResolver) Option {
	return di.WithResolver(resolver)
}

// Engine renders forum posts and wiki pages.
type Engine struct {
	container *di.Container
}

// New validates cfg and wires the engine.
func New(ctx context.Context, cfg Config, opts ...Option) (*Engine, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (e *Engine) Container() *di.Container {
	return e.container
}

// RenderPost renders a forum post to an HTML fragment.
func (e *Engine) RenderPost(ctx context.Context, text string, opts PostOptions) (string, error) {
	return e.container.ForumService().RenderPost(ctx, text, opts)
}

// PostMetaDescription returns the plain-text summary of a forum post.
func (e *Engine) PostMetaDescription(ctx context.Context, text string, opts PostOptions) (string, error) {
	return e.container.ForumService().MetaDescription(ctx, text, opts)
}

// RenderWikiPage renders a wiki page. Syntax errors produce an error page
// rather than an error.
func (e *Engine) RenderWikiPage(ctx context.Context, source string) (string, error) {
	return e.container.WikiService().RenderPage(ctx, source)
}

// WikiMetaDescription returns the plain-text summary of a wiki page.
func (e *Engine) WikiMetaDescription(ctx context.Context, source string) (string, error) {
	return e.container.WikiService().MetaDescription(ctx, source)
}

// WikiReferrals lists the internal pages a wiki page links to.
func (e *Engine) WikiReferrals(source string) ([]Referral, error) {
	return e.container.WikiService().Referrals(source)
}

// EmbedVideo returns the player markup for a supported video URL.
func (e *Engine) EmbedVideo(rawURL string, width, height *int) (string, bool) {
	params, err := video.ParseURL(rawURL, width, height)
	if err != nil {
		return "", false
	}
	return e.container.VideoResolver().Resolve(params)
}

// StoreTitle saves an entity title in the sqlite title store. kind is one of
// movie, submission, game or gamegroup.
func (e *Engine) StoreTitle(ctx context.Context, kind string, id int, title string) error {
	if e.container.TitleStore() == nil {
		return ErrTitleStoreUnavailable
	}
	k, err := references.ParseKind(strings.ToLower(strings.TrimSpace(kind)))
	if err != nil {
		return err
	}
	return e.container.StoreTitle(ctx, k, id, title)
}

// Title resolves an entity title through the configured resolvers.
func (e *Engine) Title(ctx context.Context, kind string, id int) (string, bool, error) {
	k, err := references.ParseKind(strings.ToLower(strings.TrimSpace(kind)))
	if err != nil {
		return "", false, err
	}
	return references.Title(ctx, e.container.Resolver(), k, id)
}

// ExecutePost runs a post render command through the command handler.
func (e *Engine) ExecutePost(ctx context.Context, cmd RenderPostCommand) error {
	return e.container.Commands().Post.Execute(ctx, cmd)
}

// ExecuteWiki runs a wiki render command through the command handler.
func (e *Engine) ExecuteWiki(ctx context.Context, cmd RenderWikiCommand) error {
	return e.container.Commands().Wiki.Execute(ctx, cmd)
}

// Close releases resources opened by the engine.
func (e *Engine) Close() error {
	if e == nil || e.container == nil {
		return nil
	}
	return e.container.Close()
}
