package wiki

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/params"
	"github.com/goliatone/go-markup/internal/sanitize"
)

// ModuleFunc lowers one module invocation into renderable nodes.
type ModuleFunc func(p params.Params) ([]ast.Node, error)

// Registry is the thread-safe name to ModuleFunc table used by Lower.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]ModuleFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]ModuleFunc)}
}

// NewDefaultRegistry returns a registry holding the built-in modules.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for name, fn := range builtInModules() {
		_ = r.Register(name, fn)
	}
	return r
}

// Register stores fn under name. Names are case-insensitive.
func (r *Registry) Register(name string, fn ModuleFunc) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || fn == nil {
		return ErrInvalidModule
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}
	r.modules[name] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (ModuleFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.modules[strings.ToLower(name)]
	return fn, ok
}

// Names lists the registered module names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lower replaces every Module node in nodes with the output of its registered
// function. Unknown modules and module failures become a module-error span so
// one bad invocation never fails the page.
func (r *Registry) Lower(nodes []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch node := n.(type) {
		case *ast.Module:
			out = append(out, r.lowerModule(node)...)
		case *ast.Element:
			children := r.Lower(node.Children())
			if node.Kind() == ast.KindParagraph {
				out = append(out, splitParagraph(node, children)...)
				continue
			}
			out = append(out, ast.NewElement(node.Kind(), node.Name(), node.Attrs(), children...))
		default:
			out = append(out, n)
		}
	}
	return out
}

// splitParagraph rebuilds a paragraph around block-level module output so a
// list or video never ends up inside a <p>. Runs between blocks that hold only
// whitespace are dropped.
func splitParagraph(p *ast.Element, children []ast.Node) []ast.Node {
	var (
		out []ast.Node
		run []ast.Node
	)
	flush := func() {
		if hasContent(run) {
			out = append(out, ast.NewElement(p.Kind(), p.Name(), p.Attrs(), run...))
		}
		run = nil
	}
	for _, child := range children {
		if breaksParagraph(child) {
			flush()
			out = append(out, child)
			continue
		}
		run = append(run, child)
	}
	if len(out) == 0 {
		return []ast.Node{ast.NewElement(p.Kind(), p.Name(), p.Attrs(), children...)}
	}
	flush()
	return out
}

func breaksParagraph(n ast.Node) bool {
	el, ok := n.(*ast.Element)
	return ok && el.Kind().IsBlock() && el.Kind() != ast.KindLineBreak
}

func hasContent(nodes []ast.Node) bool {
	for _, n := range nodes {
		if text, ok := n.(*ast.Text); !ok || strings.TrimSpace(text.Content()) != "" {
			return true
		}
	}
	return false
}

func (r *Registry) lowerModule(m *ast.Module) []ast.Node {
	fn, ok := r.Lookup(m.Name())
	if !ok {
		return []ast.Node{moduleError("Unknown module: " + m.Name())}
	}
	nodes, err := fn(m.Params())
	if err != nil {
		return []ast.Node{moduleError(fmt.Sprintf("Module %s: %v", m.Name(), err))}
	}
	return nodes
}

func moduleError(message string) ast.Node {
	return element(ast.KindInline, map[string]string{"class": "module-error"}, ast.NewText(message))
}

func builtInModules() map[string]ModuleFunc {
	return map[string]ModuleFunc{
		"frames":     framesModule,
		"movie":      entityModule(ast.KindMovie),
		"submission": entityModule(ast.KindSubmission),
		"game":       entityModule(ast.KindGame),
		"gamegroup":  entityModule(ast.KindGameGroup),
		"movielist":  movieListModule,
		"video":      videoModule,
		"year":       yearModule,
		"br":         lineBreakModule,
	}
}

func missing(key string) error {
	return fmt.Errorf("%w: %s is required", ErrModuleParameter, key)
}

// framesModule reads amount and an optional fps (default 60).
func framesModule(p params.Params) ([]ast.Node, error) {
	amount, ok := p.Int("amount")
	if !ok || amount < 0 {
		return nil, missing("amount")
	}
	fps := 60
	if value, ok := p.Int("fps"); ok {
		if value <= 0 {
			return nil, fmt.Errorf("%w: fps must be positive", ErrModuleParameter)
		}
		fps = value
	}
	return []ast.Node{element(ast.KindFrames, map[string]string{
		"amount": strconv.Itoa(amount),
		"fps":    strconv.Itoa(fps),
	})}, nil
}

func entityModule(kind ast.Kind) ModuleFunc {
	return func(p params.Params) ([]ast.Node, error) {
		id, ok := p.Int("id")
		if !ok || id <= 0 {
			return nil, missing("id")
		}
		return []ast.Node{element(kind, map[string]string{"id": strconv.Itoa(id)})}, nil
	}
}

// movieListModule renders ids=1,2,3 as a list of movie links.
func movieListModule(p params.Params) ([]ast.Node, error) {
	ids := p.Ints("ids")
	if len(ids) == 0 {
		return nil, missing("ids")
	}
	items := make([]ast.Node, 0, len(ids))
	for _, id := range ids {
		movie := element(ast.KindMovie, map[string]string{"id": strconv.Itoa(id)})
		items = append(items, element(ast.KindListItem, nil, movie))
	}
	return []ast.Node{element(ast.KindList, nil, items...)}, nil
}

// videoModule reads url plus optional w and h.
func videoModule(p params.Params) ([]ast.Node, error) {
	href, _ := p.String("url")
	if href == "" {
		return nil, missing("url")
	}
	if !sanitize.SafeURL(href) {
		return nil, fmt.Errorf("%w: url scheme not permitted", ErrModuleParameter)
	}
	attrs := map[string]string{"href": href}
	if w, ok := p.Int("w"); ok && w > 0 {
		attrs["width"] = strconv.Itoa(w)
	}
	if h, ok := p.Int("h"); ok && h > 0 {
		attrs["height"] = strconv.Itoa(h)
	}
	return []ast.Node{element(ast.KindVideo, attrs)}, nil
}

// yearModule renders num=Y2014 as a time element.
func yearModule(p params.Params) ([]ast.Node, error) {
	when, ok := p.Year("num")
	if !ok {
		return nil, missing("num")
	}
	year := strconv.Itoa(when.Year())
	return []ast.Node{element(ast.KindTime, map[string]string{"datetime": year}, ast.NewText(year))}, nil
}

func lineBreakModule(params.Params) ([]ast.Node, error) {
	return []ast.Node{element(ast.KindLineBreak, nil)}, nil
}
