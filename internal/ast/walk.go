package ast

import (
	"strings"
)

// Visitor is called for every node in document order. Returning false skips
// the node's children.
type Visitor func(n Node, depth int) bool

// Walk traverses nodes depth-first in document order.
func Walk(nodes []Node, fn Visitor) {
	for _, n := range nodes {
		walk(n, 0, fn)
	}
}

func walk(n Node, depth int, fn Visitor) {
	if n == nil || !fn(n, depth) {
		return
	}
	if el, ok := n.(*Element); ok {
		for _, child := range el.children {
			walk(child, depth+1, fn)
		}
	}
}

// PlainText concatenates the text content below n.
func PlainText(n Node) string {
	var b strings.Builder
	Walk([]Node{n}, func(node Node, _ int) bool {
		if text, ok := node.(*Text); ok {
			b.WriteString(text.content)
		}
		return true
	})
	return b.String()
}

// Dump returns an indented debug representation of the tree.
func Dump(nodes ...Node) string {
	var b strings.Builder
	Walk(nodes, func(n Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		switch node := n.(type) {
		case *Text:
			b.WriteString("text ")
			b.WriteString(quote(node.content))
		case *Module:
			b.WriteString("module ")
			b.WriteString(node.name)
			if encoded := node.params.Encode(); encoded != "" {
				b.WriteString(" ")
				b.WriteString(quote(encoded))
			}
		case *Element:
			b.WriteString(node.kind.String())
			if node.name != node.kind.String() {
				b.WriteString("<")
				b.WriteString(node.name)
				b.WriteString(">")
			}
			for _, key := range node.AttrKeys() {
				b.WriteString(" ")
				b.WriteString(key)
				b.WriteString("=")
				b.WriteString(quote(node.attributes[key]))
			}
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

func quote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + replacer.Replace(s) + `"`
}
