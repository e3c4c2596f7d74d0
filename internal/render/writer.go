package render

import (
	"errors"
	"fmt"
	"html"
	"io"
)

// ErrUnbalanced signals that the renderer closed tags out of order or left
// tags open. It indicates a parser defect, never bad user input.
var ErrUnbalanced = errors.New("markup: unbalanced html output")

// HTMLWriter emits HTML while tracking open tags. It is single use and not
// safe for concurrent use. Errors are sticky: after the first failure every
// call is a no-op and Finish reports that failure.
type HTMLWriter struct {
	out     io.Writer
	open    []string
	pending bool
	err     error
}

// NewHTMLWriter wraps out.
func NewHTMLWriter(out io.Writer) *HTMLWriter {
	return &HTMLWriter{out: out}
}

// OpenTag starts an element. Attributes may follow until content is written.
func (w *HTMLWriter) OpenTag(name string) {
	w.closePending()
	w.write("<" + name)
	w.open = append(w.open, name)
	w.pending = true
}

// VoidTag starts an element that takes no content or close tag.
func (w *HTMLWriter) VoidTag(name string) {
	w.closePending()
	w.write("<" + name)
	w.pending = true
}

// Attr adds an attribute to the tag just opened. The value is escaped.
func (w *HTMLWriter) Attr(key, value string) {
	if w.err != nil {
		return
	}
	if !w.pending {
		w.err = fmt.Errorf("%w: attribute %q outside a start tag", ErrUnbalanced, key)
		return
	}
	w.write(" " + key + `="` + html.EscapeString(value) + `"`)
}

// Text writes escaped character data.
func (w *HTMLWriter) Text(s string) {
	if s == "" {
		return
	}
	w.closePending()
	w.write(html.EscapeString(s))
}

// Raw writes trusted markup unchanged.
func (w *HTMLWriter) Raw(s string) {
	if s == "" {
		return
	}
	w.closePending()
	w.write(s)
}

// CloseTag ends the innermost open element, which must be name.
func (w *HTMLWriter) CloseTag(name string) error {
	if w.err != nil {
		return w.err
	}
	if len(w.open) == 0 || w.open[len(w.open)-1] != name {
		w.err = fmt.Errorf("%w: close %q with open stack %v", ErrUnbalanced, name, w.open)
		return w.err
	}
	w.closePending()
	w.open = w.open[:len(w.open)-1]
	w.write("</" + name + ">")
	return w.err
}

// Depth reports the number of open elements.
func (w *HTMLWriter) Depth() int {
	return len(w.open)
}

// Finish flushes a pending start tag and verifies every element was closed.
func (w *HTMLWriter) Finish() error {
	w.closePending()
	if w.err != nil {
		return w.err
	}
	if len(w.open) > 0 {
		w.err = fmt.Errorf("%w: unclosed %v", ErrUnbalanced, w.open)
	}
	return w.err
}

func (w *HTMLWriter) closePending() {
	if !w.pending {
		return
	}
	w.pending = false
	w.write(">")
}

func (w *HTMLWriter) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}
