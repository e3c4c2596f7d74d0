package bbcode

import (
	"strings"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/lexer"
)

// DefaultMaxDepth bounds container nesting. Deeper opening tags stay literal.
const DefaultMaxDepth = 64

// Options configures a parse.
type Options struct {
	EnableBBCode bool
	EnableHTML   bool
	MaxDepth     int
}

// Parse turns forum markup into a tree rooted at an `_root` element. It never
// fails: malformed structure auto-closes or degrades to literal text.
func Parse(text string, enableBBCode, enableHTML bool) *ast.Element {
	return ParseWithOptions(text, Options{EnableBBCode: enableBBCode, EnableHTML: enableHTML})
}

// ParseWithOptions is Parse with an explicit nesting limit.
func ParseWithOptions(text string, opts Options) *ast.Element {
	if !opts.EnableBBCode && !opts.EnableHTML {
		return ast.NewRoot(ast.NewText(text))
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	var syntax lexer.Syntax
	if opts.EnableBBCode {
		syntax |= lexer.BBCode
	}
	if opts.EnableHTML {
		syntax |= lexer.HTML
	}

	st := &state{
		lx:       lexer.New(text, vocabulary{}, syntax),
		maxDepth: opts.MaxDepth,
		stack:    []*frame{{kind: ast.KindRoot, name: ast.RootName}},
	}
	for {
		tok, ok := st.lx.Next()
		if !ok {
			break
		}
		switch tok.Kind {
		case lexer.Literal:
			st.text(tok.Text)
		case lexer.TagOpen, lexer.SelfClosingTag:
			st.open(tok)
		case lexer.TagClose:
			st.close(tok)
		}
	}
	return st.finish()
}

type frame struct {
	kind     ast.Kind
	name     string
	html     bool
	attrs    map[string]string
	children []ast.Node
}

func (f *frame) append(n ast.Node) {
	if text, ok := n.(*ast.Text); ok && len(f.children) > 0 {
		if prev, ok := f.children[len(f.children)-1].(*ast.Text); ok {
			f.children[len(f.children)-1] = ast.NewText(prev.Content() + text.Content())
			return
		}
	}
	f.children = append(f.children, n)
}

type state struct {
	lx       *lexer.Lexer
	maxDepth int
	stack    []*frame
}

func (s *state) top() *frame {
	return s.stack[len(s.stack)-1]
}

func (s *state) depth() int {
	return len(s.stack) - 1
}

func (s *state) text(content string) {
	if content == "" {
		return
	}
	s.top().append(ast.NewText(content))
}

func (s *state) open(tok lexer.Token) {
	if tok.HTML {
		s.openHTML(tok)
		return
	}

	def := bbTags[tok.Name]
	switch {
	case def.policy == void:
		attrs, _, ok := s.build(def, tok, "")
		if !ok {
			s.text(tok.Text)
			return
		}
		s.top().append(ast.NewElement(def.kind, tok.Name, attrs))

	case tok.Kind == lexer.SelfClosingTag:
		s.text(tok.Text)

	case def.policy == verbatim && !(def.paramContainer && strings.TrimSpace(tok.Param) != ""):
		s.openVerbatim(def, tok)

	default:
		s.openContainer(def, tok)
	}
}

func (s *state) openVerbatim(def tagSpec, tok lexer.Token) {
	content, closeTag, found := s.lx.ReadVerbatim(tok.Name, false)
	if !found {
		s.text(tok.Text)
		return
	}
	attrs, body, ok := s.build(def, tok, content)
	if !ok {
		s.text(tok.Text + content + closeTag)
		return
	}
	var children []ast.Node
	if def.keepBody && body != "" {
		children = append(children, ast.NewText(body))
	}
	s.top().append(ast.NewElement(def.kind, tok.Name, attrs, children...))
}

func (s *state) openContainer(def tagSpec, tok lexer.Token) {
	s.implicitClose(def)
	if len(def.parents) > 0 {
		parent := s.top()
		if parent.html || !contains(def.parents, parent.name) {
			s.text(tok.Text)
			return
		}
	}
	if s.depth() >= s.maxDepth {
		s.text(tok.Text)
		return
	}
	attrs, _, ok := s.build(def, tok, "")
	if !ok {
		s.text(tok.Text)
		return
	}
	s.stack = append(s.stack, &frame{kind: def.kind, name: tok.Name, attrs: attrs})
}

func (s *state) openHTML(tok lexer.Token) {
	attrs := htmlAttrs(tok)
	if htmlVoid[tok.Name] {
		s.top().append(ast.NewElement(ast.KindHTML, tok.Name, attrs))
		return
	}
	if tok.Kind == lexer.SelfClosingTag || s.depth() >= s.maxDepth {
		s.text(tok.Text)
		return
	}
	s.stack = append(s.stack, &frame{kind: ast.KindHTML, name: tok.Name, html: true, attrs: attrs})
}

func (s *state) build(def tagSpec, tok lexer.Token, content string) (map[string]string, string, bool) {
	if def.build == nil {
		return nil, content, true
	}
	return def.build(tok, content)
}

// implicitClose pops the open siblings the new tag terminates, e.g. a previous
// [*] inside the same list, or both the cell and row when a new [tr] starts.
// The search stops at the nearest allowed parent.
func (s *state) implicitClose(def tagSpec) {
	if len(def.closes) == 0 {
		return
	}
	target := -1
	for i := len(s.stack) - 1; i > 0; i-- {
		f := s.stack[i]
		if f.html {
			continue
		}
		if contains(def.parents, f.name) {
			break
		}
		if contains(def.closes, f.name) {
			target = i
		}
	}
	if target > 0 {
		s.popTo(target)
	}
}

func (s *state) close(tok lexer.Token) {
	for i := len(s.stack) - 1; i > 0; i-- {
		f := s.stack[i]
		if f.name == tok.Name && f.html == tok.HTML {
			s.popTo(i)
			return
		}
	}
	s.text(tok.Text)
}

// popTo closes every frame from the top down to and including index i.
func (s *state) popTo(i int) {
	for len(s.stack) > i {
		s.pop()
	}
}

func (s *state) pop() {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	children := f.children
	if structural(f) {
		children = dropBlankText(children)
	}
	s.top().append(ast.NewElement(f.kind, f.name, f.attrs, children...))
}

func (s *state) finish() *ast.Element {
	s.popTo(1)
	root := s.stack[0]
	return ast.NewRoot(root.children...)
}

// structural frames only hold other elements; whitespace between their
// children is formatting noise.
func structural(f *frame) bool {
	if f.html {
		switch f.name {
		case "ul", "ol", "table", "tr":
			return true
		}
		return false
	}
	switch f.kind {
	case ast.KindList, ast.KindTable, ast.KindRow:
		return true
	}
	return false
}

func dropBlankText(children []ast.Node) []ast.Node {
	out := children[:0:0]
	for _, child := range children {
		if text, ok := child.(*ast.Text); ok && strings.TrimSpace(text.Content()) == "" {
			continue
		}
		out = append(out, child)
	}
	return out
}
