package forum

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/bbcode"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/metrics"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/internal/sanitize"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	renderFailedCode = "MARKUP_RENDER_FAILED"
	metricsSurface   = "forum"

	// DefaultMetaLength caps meta descriptions produced by the service.
	DefaultMetaLength = 160
)

// PostOptions carries the per-post syntax flags stored with each post.
type PostOptions struct {
	EnableBBCode bool
	EnableHTML   bool
	// SourceID identifies the post in log entries.
	SourceID string
}

// Service renders forum posts.
type Service struct {
	renderer   *render.Renderer
	resolver   interfaces.ReferenceResolver
	sanitizer  *sanitize.Sanitizer
	logger     interfaces.Logger
	metrics    interfaces.RenderMetrics
	maxDepth   int
	metaLength int
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithRenderer overrides the renderer.
func WithRenderer(renderer *render.Renderer) ServiceOption {
	return func(s *Service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithResolver sets the resolver used for entity titles.
func WithResolver(resolver interfaces.ReferenceResolver) ServiceOption {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithSanitizer runs every rendered post through sanitizer.
func WithSanitizer(sanitizer *sanitize.Sanitizer) ServiceOption {
	return func(s *Service) {
		s.sanitizer = sanitizer
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(recorder interfaces.RenderMetrics) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithMaxDepth bounds tag nesting during parse.
func WithMaxDepth(depth int) ServiceOption {
	return func(s *Service) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithMetaLength caps MetaDescription output. Zero disables truncation.
func WithMetaLength(length int) ServiceOption {
	return func(s *Service) {
		if length >= 0 {
			s.metaLength = length
		}
	}
}

// NewService constructs a forum service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		renderer:   render.New(),
		logger:     logging.NoOp(),
		metrics:    metrics.NoOp(),
		maxDepth:   bbcode.DefaultMaxDepth,
		metaLength: DefaultMetaLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Parse builds the tree for a post. It never fails.
func (s *Service) Parse(text string, opts PostOptions) *ast.Element {
	return bbcode.ParseWithOptions(text, bbcode.Options{
		EnableBBCode: opts.EnableBBCode,
		EnableHTML:   opts.EnableHTML,
		MaxDepth:     s.maxDepth,
	})
}

// RenderPost renders a post to HTML.
func (s *Service) RenderPost(ctx context.Context, text string, opts PostOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithRenderContext(s.baseLogger(ctx), "post", opts.SourceID)

	start := time.Now()
	html, err := s.renderer.RenderString(ctx, s.Parse(text, opts), s.resolver)
	elapsed := time.Since(start)
	s.metrics.ObserveRenderDuration(metricsSurface, elapsed)

	fields := map[string]any{
		"duration_ms": elapsed.Milliseconds(),
		"bbcode":      opts.EnableBBCode,
		"html":        opts.EnableHTML,
	}
	if err != nil {
		s.metrics.IncrementRenderError(metricsSurface)
		fields["error"] = err
		logging.WithFields(logger, fields).Error("forum.render.failed")
		return "", wrapRenderError(err)
	}
	if s.sanitizer != nil {
		html = s.sanitizer.Sanitize(html)
	}
	fields["bytes"] = len(html)
	logging.WithFields(logger, fields).Debug("forum.render.completed")
	return html, nil
}

// MetaDescription returns the truncated plain-text summary of a post.
func (s *Service) MetaDescription(ctx context.Context, text string, opts PostOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	meta, err := s.renderer.RenderMeta(ctx, s.Parse(text, opts), s.resolver)
	if err != nil {
		logging.WithError(logging.WithRenderContext(s.baseLogger(ctx), "meta", opts.SourceID), err).Error("forum.meta.failed")
		return "", wrapRenderError(err)
	}
	return render.Truncate(meta, s.metaLength), nil
}

func wrapRenderError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "forum render failed").
		WithTextCode(renderFailedCode)
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return logging.FromContext(ctx, logger)
}
