package wiki

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	renderFailedCode = "MARKUP_RENDER_FAILED"

	// DefaultMetaLength caps meta descriptions produced by the service.
	DefaultMetaLength = 200
)

// Service parses, lowers and renders wiki pages.
type Service struct {
	renderer   *render.Renderer
	modules    *Registry
	resolver   interfaces.ReferenceResolver
	normalizer interfaces.LinkNormalizer
	logger     interfaces.Logger
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

// WithModules overrides the module registry.
func WithModules(modules *Registry) ServiceOption {
	return func(s *Service) {
		if modules != nil {
			s.modules = modules
		}
	}
}

// WithResolver sets the resolver used for entity titles.
func WithResolver(resolver interfaces.ReferenceResolver) ServiceOption {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithLinkNormalizer overrides how link targets become page keys.
func WithLinkNormalizer(normalizer interfaces.LinkNormalizer) ServiceOption {
	return func(s *Service) {
		if normalizer != nil {
			s.normalizer = normalizer
		}
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

// WithMaxDepth bounds nesting during parse.
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

// NewService constructs a wiki service with the built-in modules.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		renderer:   render.New(),
		modules:    NewDefaultRegistry(),
		normalizer: DefaultNormalizer,
		logger:     logging.NoOp(),
		maxDepth:   DefaultMaxDepth,
		metaLength: DefaultMetaLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Modules exposes the registry so callers can add their own modules.
func (s *Service) Modules() *Registry {
	return s.modules
}

// Parse parses markup with the service options. Modules are left unlowered.
func (s *Service) Parse(markup string) ([]ast.Node, error) {
	return ParseWithOptions(markup, Options{Normalizer: s.normalizer, MaxDepth: s.maxDepth})
}

// RenderPage renders markup to HTML. A syntax error is logged and the page is
// replaced by its error page; only render failures are returned.
func (s *Service) RenderPage(ctx context.Context, markup string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(s.baseLogger(ctx), map[string]any{
		"operation": "wiki.render",
	})

	start := time.Now()
	nodes, err := s.pageNodes(logger, markup)
	if err != nil {
		return "", err
	}
	html, err := s.renderer.RenderString(ctx, ast.NewRoot(nodes...), s.resolver)
	if err != nil {
		logging.WithError(logger, err).Error("wiki.render.failed")
		return "", wrapRenderError(err)
	}
	logging.WithOutput(logger, start, len(html)).Debug("wiki.render.completed")
	return html, nil
}

// MetaDescription returns the truncated plain-text summary of markup. Pages
// that fail to parse have no description.
func (s *Service) MetaDescription(ctx context.Context, markup string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(s.baseLogger(ctx), map[string]any{
		"operation": "wiki.meta",
	})

	nodes, err := s.Parse(markup)
	if err != nil {
		if errors.Is(err, ErrSyntax) {
			logging.WithError(logger, err).Debug("wiki.meta.syntax_error")
			return "", nil
		}
		return "", err
	}
	meta, err := s.renderer.RenderMeta(ctx, ast.NewRoot(s.modules.Lower(nodes)...), s.resolver)
	if err != nil {
		return "", wrapRenderError(err)
	}
	return render.Truncate(meta, s.metaLength), nil
}

// Referrals lists the internal links of markup.
func (s *Service) Referrals(markup string) ([]Referral, error) {
	nodes, err := s.Parse(markup)
	if err != nil {
		return nil, err
	}
	return Referrals(nodes), nil
}

func (s *Service) pageNodes(logger interfaces.Logger, markup string) ([]ast.Node, error) {
	nodes, err := s.Parse(markup)
	if err == nil {
		return s.modules.Lower(nodes), nil
	}

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		return nil, err
	}
	text, column := ErrorLine(markup, syntaxErr)
	logging.WithFields(logger, map[string]any{
		"offset":  syntaxErr.Offset,
		"column":  column,
		"line":    text,
		"message": syntaxErr.Message,
	}).Warn("wiki.parse.syntax_error")
	return ErrorPage(markup, err), nil
}

func wrapRenderError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "wiki render failed").
		WithTextCode(renderFailedCode)
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return logging.FromContext(ctx, logger)
}
