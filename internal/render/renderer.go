package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/metrics"
	"github.com/goliatone/go-markup/internal/references"
	"github.com/goliatone/go-markup/internal/video"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	renderCancelledCode  = "MARKUP_RENDER_CANCELLED"
	renderUnbalancedCode = "MARKUP_RENDER_UNBALANCED"

	surfaceHTML = "html"
	surfaceMeta = "meta"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for degraded lookups.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records render durations and reference lookups.
func WithMetrics(recorder interfaces.RenderMetrics) Option {
	return func(r *Renderer) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

// WithVideoResolver overrides the embed resolver used for video nodes.
func WithVideoResolver(resolver *video.Resolver) Option {
	return func(r *Renderer) {
		if resolver != nil {
			r.videos = resolver
		}
	}
}

// WithLineBreaks turns newlines in text outside code blocks into <br>.
func WithLineBreaks(enabled bool) Option {
	return func(r *Renderer) {
		r.lineBreaks = enabled
	}
}

// Renderer walks a parsed tree and writes HTML or meta text. It holds only
// configuration, so one Renderer may serve concurrent calls as long as each
// call uses its own writer.
type Renderer struct {
	logger     interfaces.Logger
	metrics    interfaces.RenderMetrics
	videos     *video.Resolver
	lineBreaks bool
}

// New builds a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger:  logging.NoOp(),
		metrics: metrics.NoOp(),
		videos:  video.NewResolver(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultRenderer = New()

// Render writes node as HTML using the default renderer.
func Render(ctx context.Context, node ast.Node, w io.Writer, resolver interfaces.ReferenceResolver) error {
	return defaultRenderer.Render(ctx, node, w, resolver)
}

// RenderMeta returns the plain-text summary of node using the default renderer.
func RenderMeta(ctx context.Context, node ast.Node, resolver interfaces.ReferenceResolver) (string, error) {
	return defaultRenderer.RenderMeta(ctx, node, resolver)
}

// Render walks node depth-first and writes HTML to w. Reference lookups run
// sequentially in document order. A nil resolver renders every entity with
// its fallback label.
func (r *Renderer) Render(ctx context.Context, node ast.Node, w io.Writer, resolver interfaces.ReferenceResolver) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	rn := &htmlRun{
		lookup: lookup{ctx: ctx, renderer: r, resolver: resolver},
		w:      NewHTMLWriter(w),
	}
	err := rn.node(node)
	if err == nil {
		err = rn.w.Finish()
	}
	r.metrics.ObserveRenderDuration(surfaceHTML, time.Since(start))
	if err != nil {
		r.metrics.IncrementRenderError(surfaceHTML)
		return classify(err)
	}
	return nil
}

// RenderString renders node into a string.
func (r *Renderer) RenderString(ctx context.Context, node ast.Node, resolver interfaces.ReferenceResolver) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, node, &buf, resolver); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "render cancelled").
			WithTextCode(renderCancelledCode)
	case errors.Is(err, ErrUnbalanced):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "render produced unbalanced html").
			WithTextCode(renderUnbalancedCode)
	default:
		return err
	}
}

// lookup resolves entity titles for a single render call.
type lookup struct {
	ctx      context.Context
	renderer *Renderer
	resolver interfaces.ReferenceResolver
}

// title returns the resolved title for an entity element. Only the render's
// own cancellation is returned; every other resolver failure, including a
// context error from a shared lookup, is logged and degrades to the fallback
// label.
func (l *lookup) title(el *ast.Element) (string, error) {
	id := el.AttrOr("id", "")
	fallback := FallbackLabel(el.Kind(), id)
	if l.resolver == nil {
		return fallback, nil
	}
	numeric, err := strconv.Atoi(id)
	if err != nil {
		return fallback, nil
	}

	if !el.Kind().IsEntity() {
		return fallback, nil
	}

	title, found, err := references.Title(l.ctx, l.resolver, el.Kind(), numeric)
	if err != nil {
		if ctxErr := l.ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		l.renderer.logger.Warn("render.resolver.failed",
			"kind", el.Kind().String(),
			"id", numeric,
			"error", err,
		)
		l.renderer.metrics.ObserveReferenceLookup(el.Kind().String(), false)
		return fallback, nil
	}

	found = found && title != ""
	l.renderer.metrics.ObserveReferenceLookup(el.Kind().String(), found)
	if !found {
		return fallback, nil
	}
	return title, nil
}

func (l *lookup) videoEmbed(el *ast.Element) (string, bool) {
	href, ok := el.Attr("href")
	if !ok {
		return "", false
	}
	params, err := video.ParseURL(href, intAttr(el, "width"), intAttr(el, "height"))
	if err != nil {
		return "", false
	}
	return l.renderer.videos.Resolve(params)
}

func intAttr(el *ast.Element, key string) *int {
	raw, ok := el.Attr(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}
