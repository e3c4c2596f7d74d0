package wiki

import (
	"github.com/goliatone/go-markup/internal/ast"
)

// builder collects children for an element whose contents are still being
// parsed. ast.Element is immutable, so the tree is assembled bottom-up.
type builder struct {
	kind     ast.Kind
	attrs    map[string]string
	children []ast.Node
}

func newBuilder(kind ast.Kind, attrs map[string]string) *builder {
	return &builder{kind: kind, attrs: attrs}
}

// add appends n, merging adjacent text nodes.
func (b *builder) add(nodes ...ast.Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if text, ok := n.(*ast.Text); ok && text.Content() == "" {
			continue
		}
		if text, ok := n.(*ast.Text); ok && len(b.children) > 0 {
			if prev, ok := b.children[len(b.children)-1].(*ast.Text); ok {
				b.children[len(b.children)-1] = ast.NewText(prev.Content() + text.Content())
				continue
			}
		}
		b.children = append(b.children, n)
	}
}

func (b *builder) build() *ast.Element {
	return element(b.kind, b.attrs, b.children...)
}

func element(kind ast.Kind, attrs map[string]string, children ...ast.Node) *ast.Element {
	return ast.NewElement(kind, kind.String(), attrs, children...)
}
