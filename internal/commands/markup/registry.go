package markupcmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-markup/internal/commands"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract for hosts that
// collect handlers, for example to expose them over a CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers built by RegisterMarkupCommands.
type HandlerSet struct {
	Post *RenderPostHandler
	Wiki *RenderWikiHandler
}

// Subscribe attaches both handlers to the go-command dispatcher so
// dispatcher.Dispatch routes render messages to them. Call the returned
// function to unsubscribe.
func (s *HandlerSet) Subscribe() func() {
	post := dispatcher.SubscribeCommand(s.Post)
	page := dispatcher.SubscribeCommand(s.Wiki)
	return func() {
		post.Unsubscribe()
		page.Unsubscribe()
	}
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	postOpts []commands.HandlerOption[RenderPostCommand]
	wikiOpts []commands.HandlerOption[RenderWikiCommand]
}

// WithPostHandlerOptions forwards options to NewRenderPostHandler.
func WithPostHandlerOptions(opts ...commands.HandlerOption[RenderPostCommand]) Option {
	return func(cfg *options) {
		cfg.postOpts = append(cfg.postOpts, opts...)
	}
}

// WithWikiHandlerOptions forwards options to NewRenderWikiHandler.
func WithWikiHandlerOptions(opts ...commands.HandlerOption[RenderWikiCommand]) Option {
	return func(cfg *options) {
		cfg.wikiOpts = append(cfg.wikiOpts, opts...)
	}
}

// RegisterMarkupCommands builds the render handlers and registers them with
// reg when it is not nil.
func RegisterMarkupCommands(reg CommandRegistry, posts PostRenderer, pages PageRenderer, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if posts == nil {
		return nil, errors.New("markup command registration: post renderer is nil")
	}
	if pages == nil {
		return nil, errors.New("markup command registration: page renderer is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "markup")
	set := &HandlerSet{
		Post: NewRenderPostHandler(posts, logger, cfg.postOpts...),
		Wiki: NewRenderWikiHandler(pages, logger, cfg.wikiOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Post); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Wiki); err != nil {
			return nil, err
		}
	}
	return set, nil
}
