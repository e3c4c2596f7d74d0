package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	rootModule       = "markup"
	forumModule      = "markup.forum"
	wikiModule       = "markup.wiki"
	renderModule     = "markup.render"
	referencesModule = "markup.references"
	commandsModule   = "markup.commands"
)

const (
	fieldSurface = "surface"
	fieldSource  = "source_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached as
// a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ForumLogger returns the logger namespace reserved for forum post rendering.
func ForumLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, forumModule)
}

// WikiLogger returns the logger namespace reserved for wiki page rendering.
func WikiLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, wikiModule)
}

// RenderLogger returns the logger namespace reserved for the tree renderers.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// ReferencesLogger returns the logger namespace reserved for title resolvers.
func ReferencesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, referencesModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithRenderContext tags entries with the rendered surface (post, wiki, meta)
// and the id of the source document. Empty values are ignored.
func WithRenderContext(logger interfaces.Logger, surface, sourceID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(surface); trimmed != "" {
		fields[fieldSurface] = trimmed
	}
	if trimmed := strings.TrimSpace(sourceID); trimmed != "" {
		fields[fieldSource] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
