package wiki

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/params"
	"github.com/goliatone/go-markup/internal/render"
	"github.com/goliatone/go-markup/internal/sanitize"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// DefaultMaxDepth bounds list nesting plus inline emphasis nesting.
const DefaultMaxDepth = 64

// Options configures a parse.
type Options struct {
	// Normalizer canonicalises internal link targets. Nil selects DefaultNormalizer.
	Normalizer interfaces.LinkNormalizer
	// MaxDepth bounds nesting; values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// Parse turns wiki markup into a node list using the default options.
func Parse(markup string) ([]ast.Node, error) {
	return ParseWithOptions(markup, Options{})
}

// ParseWithOptions turns wiki markup into a node list. Structurally invalid
// markup fails with a *SyntaxError; nothing is returned alongside it.
//
// Block syntax is line based: blank lines separate paragraphs, `!` to `!!!!`
// open headings, `*` and `#` list items, `|` and `||` table rows, `----` a
// rule, and a leading space preformatted text. Inline syntax covers the bold
// (three apostrophes), italic (two apostrophes) and underline (two
// underscores) toggles, `%%%` line breaks, `[[` for a literal bracket and
// bracketed links and modules.
func ParseWithOptions(markup string, opts Options) ([]ast.Node, error) {
	if opts.Normalizer == nil {
		opts.Normalizer = DefaultNormalizer
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	p := &parser{src: normalizeNewlines(markup), opts: opts, out: newBuilder(ast.KindRoot, nil)}
	if err := p.blocks(); err != nil {
		return nil, err
	}
	return p.out.children, nil
}

func normalizeNewlines(markup string) string {
	return strings.ReplaceAll(markup, "\r\n", "\n")
}

type line struct {
	text  string
	start int
}

func splitLines(src string) []line {
	var lines []line
	start := 0
	for start <= len(src) {
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			if start < len(src) {
				lines = append(lines, line{text: src[start:], start: start})
			}
			break
		}
		lines = append(lines, line{text: src[start : start+end], start: start})
		start += end + 1
	}
	return lines
}

type parser struct {
	src  string
	opts Options
	out  *builder
	para []line
}

func (p *parser) blocks() error {
	lines := splitLines(p.src)
	for i := 0; i < len(lines); {
		ln := lines[i]
		switch {
		case strings.TrimSpace(ln.text) == "":
			if err := p.flushParagraph(); err != nil {
				return err
			}
			i++
		case isRule(ln.text):
			if err := p.flushParagraph(); err != nil {
				return err
			}
			p.out.add(element(ast.KindRule, nil))
			i++
		case strings.HasPrefix(ln.text, "!"):
			if err := p.flushParagraph(); err != nil {
				return err
			}
			if err := p.heading(ln); err != nil {
				return err
			}
			i++
		case listMarkers(ln.text) > 0:
			if err := p.flushParagraph(); err != nil {
				return err
			}
			next, err := p.list(lines, i)
			if err != nil {
				return err
			}
			i = next
		case strings.HasPrefix(ln.text, "|"):
			if err := p.flushParagraph(); err != nil {
				return err
			}
			next, err := p.table(lines, i)
			if err != nil {
				return err
			}
			i = next
		case strings.HasPrefix(ln.text, " "):
			if err := p.flushParagraph(); err != nil {
				return err
			}
			i = p.preformatted(lines, i)
		default:
			p.para = append(p.para, ln)
			i++
		}
	}
	return p.flushParagraph()
}

func isRule(text string) bool {
	text = strings.TrimRight(text, " \t")
	return len(text) >= 4 && strings.Trim(text, "-") == ""
}

// listMarkers returns the nesting depth of a list item line, or zero when the
// line is not a list item. Markers must be followed by whitespace.
func listMarkers(text string) int {
	n := 0
	for n < len(text) && (text[n] == '*' || text[n] == '#') {
		n++
	}
	if n == 0 || n >= len(text) || (text[n] != ' ' && text[n] != '\t') {
		return 0
	}
	return n
}

func (p *parser) flushParagraph() error {
	if len(p.para) == 0 {
		return nil
	}
	first, last := p.para[0], p.para[len(p.para)-1]
	p.para = p.para[:0]

	text := p.src[first.start : last.start+len(last.text)]
	children, err := p.inline(text, first.start, 0)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		p.out.add(element(ast.KindParagraph, nil, children...))
	}
	return nil
}

// heading maps `!` to h4 up to `!!!!` to h1. Extra markers are ignored.
func (p *parser) heading(ln line) error {
	count := 0
	for count < len(ln.text) && ln.text[count] == '!' {
		count++
	}
	body := ln.text[count:]
	if count > 4 {
		count = 4
	}
	trimmed := strings.TrimLeft(body, " \t")
	offset := ln.start + len(ln.text) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, " \t")

	children, err := p.inline(trimmed, offset, 0)
	if err != nil {
		return err
	}
	attrs := map[string]string{"level": strconv.Itoa(5 - count)}
	if id := anchorID(ast.PlainText(element(ast.KindBlock, nil, children...))); id != "" {
		attrs["id"] = id
	}
	p.out.add(element(ast.KindHeading, attrs, children...))
	return nil
}

func anchorID(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	id, err := slug.Normalize(text)
	if err != nil {
		return ""
	}
	return id
}

type listLevel struct {
	marker byte
	list   *builder
	items  []*builder
}

func (l *listLevel) lastItem() *builder {
	if len(l.items) == 0 {
		l.items = append(l.items, newBuilder(ast.KindListItem, nil))
	}
	return l.items[len(l.items)-1]
}

func (l *listLevel) build() *ast.Element {
	for _, item := range l.items {
		l.list.add(item.build())
	}
	return l.list.build()
}

func newListLevel(marker byte) *listLevel {
	var attrs map[string]string
	if marker == '#' {
		attrs = map[string]string{"type": "1"}
	}
	return &listLevel{marker: marker, list: newBuilder(ast.KindList, attrs)}
}

// list consumes consecutive list item lines starting at lines[i] and returns
// the index of the first line after the list.
func (p *parser) list(lines []line, i int) (int, error) {
	var stack []*listLevel
	pop := func() {
		done := stack[len(stack)-1].build()
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].lastItem().add(done)
		} else {
			p.out.add(done)
		}
	}

	for ; i < len(lines); i++ {
		ln := lines[i]
		depth := listMarkers(ln.text)
		if depth == 0 {
			break
		}
		if depth > p.opts.MaxDepth {
			return 0, syntaxError(ln.start, "list nesting exceeds %d levels", p.opts.MaxDepth)
		}
		markers := ln.text[:depth]
		for len(stack) > depth {
			pop()
		}
		if len(stack) == depth && stack[depth-1].marker != markers[depth-1] {
			pop()
		}
		for len(stack) < depth {
			stack = append(stack, newListLevel(markers[len(stack)]))
		}

		body := strings.TrimLeft(ln.text[depth:], " \t")
		offset := ln.start + len(ln.text) - len(body)
		children, err := p.inline(strings.TrimRight(body, " \t"), offset, depth)
		if err != nil {
			return 0, err
		}
		item := newBuilder(ast.KindListItem, nil)
		item.add(children...)
		top := stack[len(stack)-1]
		top.items = append(top.items, item)
	}
	for len(stack) > 0 {
		pop()
	}
	return i, nil
}

// table consumes consecutive `|` lines. A row starting with `||` holds
// header cells separated by `||`; other rows hold cells separated by `|`.
func (p *parser) table(lines []line, i int) (int, error) {
	table := newBuilder(ast.KindTable, nil)
	for ; i < len(lines) && strings.HasPrefix(lines[i].text, "|"); i++ {
		ln := lines[i]
		sep, kind := "|", ast.KindCell
		if strings.HasPrefix(ln.text, "||") {
			sep, kind = "||", ast.KindHeaderCell
		}

		row := newBuilder(ast.KindRow, nil)
		text := strings.TrimRight(ln.text, " \t")
		pos := len(sep)
		for pos < len(text) {
			end := strings.Index(text[pos:], sep)
			if end < 0 {
				end = len(text) - pos
			}
			cell := text[pos : pos+end]
			trimmed := strings.TrimLeft(cell, " \t")
			offset := ln.start + pos + len(cell) - len(trimmed)
			children, err := p.inline(strings.TrimRight(trimmed, " \t"), offset, 2)
			if err != nil {
				return 0, err
			}
			row.add(element(kind, nil, children...))
			pos += end + len(sep)
		}
		table.add(row.build())
	}
	p.out.add(table.build())
	return i, nil
}

// preformatted consumes consecutive lines starting with a space. One leading
// space is stripped; the rest is kept verbatim.
func (p *parser) preformatted(lines []line, i int) int {
	var b strings.Builder
	for start := i; i < len(lines) && strings.HasPrefix(lines[i].text, " "); i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(lines[i].text[1:])
	}
	p.out.add(element(ast.KindPreformatted, nil, ast.NewText(b.String())))
	return i
}

type toggle struct {
	marker string
	kind   ast.Kind
}

var toggles = []toggle{
	{marker: "'''", kind: ast.KindBold},
	{marker: "''", kind: ast.KindItalic},
	{marker: "__", kind: ast.KindUnderline},
}

type inlineFrame struct {
	marker string
	b      *builder
}

// inline parses text whose first byte sits at base in the source. depth is
// the nesting already used by the enclosing block.
func (p *parser) inline(text string, base, depth int) ([]ast.Node, error) {
	stack := []*inlineFrame{{b: newBuilder(ast.KindInline, nil)}}
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			stack[len(stack)-1].b.add(ast.NewText(buf.String()))
			buf.Reset()
		}
	}

	for i := 0; i < len(text); {
		rest := text[i:]
		if t, ok := matchToggle(rest); ok {
			flush()
			open := -1
			for j := len(stack) - 1; j > 0; j-- {
				if stack[j].marker == t.marker {
					open = j
					break
				}
			}
			switch {
			case open < 0:
				if depth+len(stack) > p.opts.MaxDepth {
					return nil, syntaxError(base+i, "nesting exceeds %d levels", p.opts.MaxDepth)
				}
				stack = append(stack, &inlineFrame{marker: t.marker, b: newBuilder(t.kind, nil)})
			case open == len(stack)-1:
				done := stack[open].b.build()
				stack = stack[:open]
				stack[len(stack)-1].b.add(done)
			default:
				return nil, syntaxError(base+i, "invalid nesting: %s closed while %s is open",
					t.marker, stack[len(stack)-1].marker)
			}
			i += len(t.marker)
			continue
		}

		switch {
		case strings.HasPrefix(rest, "%%%"):
			flush()
			stack[len(stack)-1].b.add(element(ast.KindLineBreak, nil))
			i += 3
		case strings.HasPrefix(rest, "[["):
			buf.WriteByte('[')
			i += 2
		case rest[0] == '[':
			end := strings.IndexAny(rest[1:], "]\n")
			if end < 0 || rest[1+end] == '\n' {
				if isModule(rest[1:]) {
					return nil, syntaxError(base+i, "unterminated module")
				}
				return nil, syntaxError(base+i, "unterminated link")
			}
			node, err := p.bracket(rest[1:1+end], base+i)
			if err != nil {
				return nil, err
			}
			flush()
			stack[len(stack)-1].b.add(node)
			i += end + 2
		default:
			buf.WriteByte(rest[0])
			i++
		}
	}
	flush()

	// toggles left open close at the end of the block
	for len(stack) > 1 {
		done := stack[len(stack)-1].b.build()
		stack = stack[:len(stack)-1]
		stack[len(stack)-1].b.add(done)
	}
	return stack[0].b.children, nil
}

func matchToggle(s string) (toggle, bool) {
	for _, t := range toggles {
		if strings.HasPrefix(s, t.marker) {
			return t, true
		}
	}
	return toggle{}, false
}

const modulePrefix = "module:"

func isModule(body string) bool {
	return len(body) >= len(modulePrefix) && strings.EqualFold(body[:len(modulePrefix)], modulePrefix)
}

// bracket interprets the body of a `[...]` construct found at offset.
func (p *parser) bracket(body string, offset int) (ast.Node, error) {
	if isModule(body) {
		name, prm := params.ParseDirective(body[len(modulePrefix):])
		if name == "" {
			return nil, syntaxError(offset, "empty module name")
		}
		return ast.NewModule(strings.ToLower(name), prm), nil
	}

	target, label, _ := strings.Cut(body, "|")
	target = strings.TrimSpace(target)
	label = strings.TrimSpace(label)
	literal := ast.NewText("[" + body + "]")
	if target == "" {
		return literal, nil
	}

	switch {
	case strings.HasPrefix(target, "#"):
		name := strings.TrimSpace(target[1:])
		id := anchorID(name)
		if id == "" {
			return literal, nil
		}
		if label == "" {
			label = name
		}
		return element(ast.KindAnchorLink, map[string]string{"href": "#" + id}, ast.NewText(label)), nil
	case isExternal(target):
		if label == "" {
			label = target
		}
		if !sanitize.SafeURL(target) {
			return ast.NewText(label), nil
		}
		return element(ast.KindURL, map[string]string{"href": target}, ast.NewText(label)), nil
	}

	page := p.opts.Normalizer.Normalize(target)
	if page == "" {
		return literal, nil
	}
	if label == "" {
		label = target
	}
	return element(ast.KindWikiLink, map[string]string{
		"href": render.WikiPath(page),
		"page": page,
	}, ast.NewText(label)), nil
}

func isExternal(target string) bool {
	lower := strings.ToLower(target)
	return strings.Contains(lower, "://") || strings.HasPrefix(lower, "mailto:")
}
