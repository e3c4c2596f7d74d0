package wiki

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every SyntaxError.
	ErrSyntax = errors.New("wiki: syntax error")
	// ErrDuplicateModule is returned when a module name is registered twice.
	ErrDuplicateModule = errors.New("wiki: module already registered")
	// ErrInvalidModule is returned for a registration without a name or function.
	ErrInvalidModule = errors.New("wiki: invalid module registration")
	// ErrModuleParameter is returned by built-in modules for missing or malformed parameters.
	ErrModuleParameter = errors.New("wiki: invalid module parameter")
)

// SyntaxError reports structurally invalid wiki markup. Offset is a byte
// offset into the markup after CRLF line endings are folded to LF.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("wiki: %s at offset %d", e.Message, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func syntaxError(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
