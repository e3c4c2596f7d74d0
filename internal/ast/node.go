package ast

import (
	"sort"

	"github.com/goliatone/go-markup/internal/params"
)

// RootName is the tag name carried by the root element of every parse.
const RootName = "_root"

// Node is implemented by *Text, *Element and *Module. The set is closed.
type Node interface {
	Kind() Kind
	node()
}

// Text is a literal run of characters.
type Text struct {
	content string
}

// NewText builds a text node.
func NewText(content string) *Text {
	return &Text{content: content}
}

// Content returns the literal text.
func (t *Text) Content() string { return t.content }

// Kind implements Node.
func (*Text) Kind() Kind { return KindText }

func (*Text) node() {}

// Element is a tag with attributes and ordered children. Elements are built in
// one step and never change afterwards; accessors hand out copies.
type Element struct {
	kind       Kind
	name       string
	attributes map[string]string
	children   []Node
}

// NewElement builds an element. attrs and children are copied.
func NewElement(kind Kind, name string, attrs map[string]string, children ...Node) *Element {
	el := &Element{
		kind: kind,
		name: name,
	}
	if len(attrs) > 0 {
		el.attributes = make(map[string]string, len(attrs))
		for key, value := range attrs {
			el.attributes[key] = value
		}
	}
	if len(children) > 0 {
		el.children = make([]Node, len(children))
		copy(el.children, children)
	}
	return el
}

// NewRoot wraps children in a root element.
func NewRoot(children ...Node) *Element {
	return NewElement(KindRoot, RootName, nil, children...)
}

// Kind implements Node.
func (e *Element) Kind() Kind { return e.kind }

func (*Element) node() {}

// Name returns the source tag name (lowercase) or the wiki construct name.
func (e *Element) Name() string { return e.name }

// Attr returns a single attribute value.
func (e *Element) Attr(key string) (string, bool) {
	value, ok := e.attributes[key]
	return value, ok
}

// AttrOr returns the attribute or fallback when missing.
func (e *Element) AttrOr(key, fallback string) string {
	if value, ok := e.attributes[key]; ok {
		return value
	}
	return fallback
}

// Attrs returns a copy of the attribute map.
func (e *Element) Attrs() map[string]string {
	out := make(map[string]string, len(e.attributes))
	for key, value := range e.attributes {
		out[key] = value
	}
	return out
}

// AttrKeys returns attribute names in sorted order.
func (e *Element) AttrKeys() []string {
	keys := make([]string, 0, len(e.attributes))
	for key := range e.attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of children.
func (e *Element) Len() int { return len(e.children) }

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// Module is a wiki directive invocation awaiting lowering.
type Module struct {
	name   string
	params params.Params
}

// NewModule builds a module node.
func NewModule(name string, p params.Params) *Module {
	return &Module{name: name, params: p}
}

// Kind implements Node.
func (*Module) Kind() Kind { return KindModule }

func (*Module) node() {}

// Name returns the module name as written.
func (m *Module) Name() string { return m.name }

// Params returns the parsed parameter list.
func (m *Module) Params() params.Params { return m.params }
