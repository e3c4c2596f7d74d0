package interfaces

import "context"

// Logger is the leveled logger the forum, wiki and render services write
// dotted events to, e.g. "wiki.parse.syntax_error". Its method set matches
// go-logger, so a glog logger satisfies it directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out the module loggers (markup.forum, markup.wiki,
// markup.render, markup.references, markup.commands).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields
// such as surface and source_id on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
