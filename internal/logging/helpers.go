package logging

import (
	"maps"
	"time"

	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	fieldError    = "error"
	fieldDuration = "duration_ms"
	fieldBytes    = "bytes"
)

// WithFields returns a child logger carrying a copy of fields. Loggers without
// the FieldsLogger extension, nil loggers and empty maps pass through.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

// WithError records err under the error key. A nil err leaves logger as is.
func WithError(logger interfaces.Logger, err error) interfaces.Logger {
	if err == nil {
		return logger
	}
	return WithFields(logger, map[string]any{fieldError: err})
}

// WithOutput records how long a render took and how many bytes it produced.
func WithOutput(logger interfaces.Logger, start time.Time, bytes int) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldDuration: time.Since(start).Milliseconds(),
		fieldBytes:    bytes,
	})
}
