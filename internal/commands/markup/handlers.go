package markupcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-markup/internal/commands"
	"github.com/goliatone/go-markup/internal/forum"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/internal/wiki"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	renderPostOperation = "forum.render_post"
	renderWikiOperation = "wiki.render_page"
)

// PostRenderer is the forum surface used by RenderPostHandler.
type PostRenderer interface {
	RenderPost(ctx context.Context, text string, opts forum.PostOptions) (string, error)
	MetaDescription(ctx context.Context, text string, opts forum.PostOptions) (string, error)
}

// PageRenderer is the wiki surface used by RenderWikiHandler.
type PageRenderer interface {
	RenderPage(ctx context.Context, markup string) (string, error)
	MetaDescription(ctx context.Context, markup string) (string, error)
	Referrals(markup string) ([]wiki.Referral, error)
}

var (
	_ command.Commander[RenderPostCommand] = (*RenderPostHandler)(nil)
	_ command.Commander[RenderWikiCommand] = (*RenderWikiHandler)(nil)
)

// RenderPostHandler renders forum posts through the shared command handler.
type RenderPostHandler struct {
	inner *commands.Handler[RenderPostCommand]
}

// NewRenderPostHandler binds a handler to service.
func NewRenderPostHandler(service PostRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPostCommand]) *RenderPostHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderPostCommand) error {
		postOpts := forum.PostOptions{
			EnableBBCode: msg.EnableBBCode,
			EnableHTML:   msg.EnableHTML,
			SourceID:     msg.SourceID,
		}

		output := msg.Output.orDefault()
		var (
			text string
			err  error
		)
		if output == OutputMeta {
			text, err = service.MetaDescription(ctx, msg.Source, postOpts)
		} else {
			text, err = service.RenderPost(ctx, msg.Source, postOpts)
		}
		if err != nil {
			return err
		}
		if msg.Callback != nil {
			msg.Callback(Result{Output: output, Text: text})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderPostCommand]{
		commands.WithLogger[RenderPostCommand](logger),
		commands.WithOperation[RenderPostCommand](renderPostOperation),
		commands.WithMessageFields(func(msg RenderPostCommand) map[string]any {
			fields := map[string]any{
				"source_length": len(msg.Source),
				"output":        string(msg.Output.orDefault()),
				"bbcode":        msg.EnableBBCode,
				"html":          msg.EnableHTML,
			}
			if msg.SourceID != "" {
				fields["source_id"] = msg.SourceID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderPostCommand]()),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderPostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RenderPostCommand].
func (h *RenderPostHandler) Execute(ctx context.Context, msg RenderPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderWikiHandler renders wiki pages through the shared command handler.
type RenderWikiHandler struct {
	inner *commands.Handler[RenderWikiCommand]
}

// NewRenderWikiHandler binds a handler to service.
func NewRenderWikiHandler(service PageRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderWikiCommand]) *RenderWikiHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderWikiCommand) error {
		output := msg.Output.orDefault()
		result := Result{Output: output}

		switch output {
		case OutputMeta:
			text, err := service.MetaDescription(ctx, msg.Source)
			if err != nil {
				return err
			}
			result.Text = text
		case OutputReferrals:
			if err := ctx.Err(); err != nil {
				return err
			}
			refs, err := service.Referrals(msg.Source)
			if err != nil {
				return err
			}
			result.Referrals = convertReferrals(refs)
		default:
			text, err := service.RenderPage(ctx, msg.Source)
			if err != nil {
				return err
			}
			result.Text = text
		}

		if msg.Callback != nil {
			msg.Callback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderWikiCommand]{
		commands.WithLogger[RenderWikiCommand](logger),
		commands.WithOperation[RenderWikiCommand](renderWikiOperation),
		commands.WithMessageFields(func(msg RenderWikiCommand) map[string]any {
			fields := map[string]any{
				"source_length": len(msg.Source),
				"output":        string(msg.Output.orDefault()),
			}
			if msg.SourceID != "" {
				fields["source_id"] = msg.SourceID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderWikiCommand]()),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderWikiHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RenderWikiCommand].
func (h *RenderWikiHandler) Execute(ctx context.Context, msg RenderWikiCommand) error {
	return h.inner.Execute(ctx, msg)
}

func convertReferrals(refs []wiki.Referral) []Referral {
	out := make([]Referral, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Referral{
			Page:    ref.Link,
			Href:    render.WikiPath(ref.Link),
			Excerpt: ref.Excerpt,
		})
	}
	return out
}
